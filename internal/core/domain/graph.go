// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Graph represents a dependency graph of tasks.
// Once validated it is read-only and may be shared by concurrent runs.
type Graph struct {
	root           string
	tasks          map[InternedString]Task
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString

	mu        sync.Mutex
	validated bool
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks:      make(map[InternedString]Task),
		dependents: make(map[InternedString][]InternedString),
	}
}

// SetRoot sets the project root all task paths are relative to.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the project root.
func (g *Graph) Root() string {
	return g.root
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	g.mu.Lock()
	g.validated = false
	g.mu.Unlock()
	return nil
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Dependents returns the tasks that declare name as a prerequisite.
// It is populated by Validate.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order and the reverse dependency index if successful.
// Validating an already validated graph is a no-op.
func (g *Graph) Validate() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.validated {
		return nil
	}
	if err := g.validate(); err != nil {
		return err
	}
	g.validated = true
	return nil
}

func (g *Graph) validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.tasks))
	g.dependents = make(map[InternedString][]InternedString, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task := g.tasks[u]
		for _, dep := range task.Dependencies {
			if _, exists := g.tasks[dep]; !exists {
				return zerr.With(zerr.With(ErrMissingDependency, "dependency", dep.String()), "task", u.String())
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Sorted iteration keeps Walk stable between runs.
	for _, name := range g.sortedNames() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	for _, name := range g.executionOrder {
		for _, dep := range g.tasks[name].Dependencies {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}

	return nil
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	var cyclePath strings.Builder
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath.WriteString(path[i].String())
		cyclePath.WriteString(" -> ")
	}
	cyclePath.WriteString(dep.String())
	return zerr.With(ErrCycleDetected, "cycle", cyclePath.String())
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}
