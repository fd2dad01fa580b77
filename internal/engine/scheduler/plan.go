package scheduler

import (
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/zerr"
)

const allTargets = "all"

// plan is the closure of the requested targets over their prerequisites,
// kept in graph walk order so equal runs start tasks in the same order.
type plan struct {
	graph *domain.Graph
	order []domain.InternedString
	tasks map[domain.InternedString]*domain.Task
}

func newPlan(graph *domain.Graph, targetNames []string) (*plan, error) {
	selected := make(map[domain.InternedString]bool)

	var include func(name domain.InternedString)
	include = func(name domain.InternedString) {
		if selected[name] {
			return
		}
		selected[name] = true
		task, _ := graph.GetTask(name)
		for _, dep := range task.Dependencies {
			include(dep)
		}
	}

	for _, target := range targetNames {
		name := domain.NewInternedString(target)
		if _, ok := graph.GetTask(name); ok {
			include(name)
			continue
		}
		if target != allTargets {
			return nil, zerr.With(domain.ErrTaskNotFound, "task", target)
		}
		for task := range graph.Walk() {
			selected[task.Name] = true
		}
	}

	p := &plan{
		graph: graph,
		tasks: make(map[domain.InternedString]*domain.Task, len(selected)),
	}
	for task := range graph.Walk() {
		if selected[task.Name] {
			p.order = append(p.order, task.Name)
			p.tasks[task.Name] = &task
		}
	}
	return p, nil
}

// waiting counts the planned prerequisites of every planned task.
func (p *plan) waiting() map[domain.InternedString]int {
	counts := make(map[domain.InternedString]int, len(p.order))
	for _, name := range p.order {
		n := 0
		for _, dep := range p.tasks[name].Dependencies {
			if _, ok := p.tasks[dep]; ok {
				n++
			}
		}
		counts[name] = n
	}
	return counts
}

func (p *plan) dependencies() map[string][]string {
	deps := make(map[string][]string, len(p.order))
	for _, name := range p.order {
		deps[name.String()] = domain.Strings(p.tasks[name].Dependencies)
	}
	return deps
}
