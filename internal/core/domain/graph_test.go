package domain_test

import (
	"slices"
	"testing"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/zerr"
)

func names(ss ...string) []domain.InternedString {
	return domain.NewInternedStrings(ss)
}

// assetGraph mirrors the default task file: serve -> critical -> {css, css_op, optimise}, optimise -> {images, css}.
func assetGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	tasks := []domain.Task{
		{Name: domain.NewInternedString("images")},
		{Name: domain.NewInternedString("css")},
		{Name: domain.NewInternedString("css_op")},
		{Name: domain.NewInternedString("optimise"), Dependencies: names("images", "css")},
		{Name: domain.NewInternedString("critical"), Dependencies: names("css", "css_op", "optimise")},
		{Name: domain.NewInternedString("serve"), Dependencies: names("critical")},
		{Name: domain.NewInternedString("lint")},
		{Name: domain.NewInternedString("scripts")},
		{Name: domain.NewInternedString("watch")},
		{Name: domain.NewInternedString("default"), Dependencies: names("lint", "scripts", "watch", "serve")},
	}
	for i := range tasks {
		if err := g.AddTask(&tasks[i]); err != nil {
			t.Fatalf("failed to add task %s: %v", tasks[i].Name, err)
		}
	}
	return g
}

func TestGraph_AddTask(t *testing.T) {
	g := domain.NewGraph()
	task := domain.Task{Name: domain.NewInternedString("task1")}

	if err := g.AddTask(&task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := g.AddTask(&task); err == nil {
		t.Error("expected error when adding duplicate task, got nil")
	} else {
		zErr, ok := err.(*zerr.Error)
		if !ok {
			t.Fatalf("expected *zerr.Error, got %T", err)
		}
		meta := zErr.Metadata()
		if taskName, ok := meta["task_name"].(string); !ok || taskName != "task1" {
			t.Errorf("expected metadata task_name=task1, got %v", meta["task_name"])
		}
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	taskA := domain.Task{Name: domain.NewInternedString("A"), Dependencies: names("B")}
	taskB := domain.Task{Name: domain.NewInternedString("B"), Dependencies: names("A")}

	if err := g.AddTask(&taskA); err != nil {
		t.Fatalf("failed to add task A: %v", err)
	}
	if err := g.AddTask(&taskB); err != nil {
		t.Fatalf("failed to add task B: %v", err)
	}

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if cycle, _ := zErr.Metadata()["cycle"].(string); cycle != "A -> B -> A" {
		t.Errorf("expected cycle A -> B -> A, got %q", cycle)
	}
}

func TestGraph_Validate_MissingDependency(t *testing.T) {
	g := domain.NewGraph()
	task := domain.Task{Name: domain.NewInternedString("critical"), Dependencies: names("css")}
	if err := g.AddTask(&task); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}

	err := g.Validate()
	if err == nil {
		t.Fatal("expected missing dependency error, got nil")
	}
	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if dep, _ := zErr.Metadata()["dependency"].(string); dep != "css" {
		t.Errorf("expected metadata dependency=css, got %v", zErr.Metadata()["dependency"])
	}
}

func TestGraph_Walk(t *testing.T) {
	g := assetGraph(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	var order []string
	for task := range g.Walk() {
		order = append(order, task.Name.String())
	}
	if len(order) != g.TaskCount() {
		t.Fatalf("expected %d tasks, got %d", g.TaskCount(), len(order))
	}

	pos := func(name string) int { return slices.Index(order, name) }
	for task := range g.Walk() {
		for _, dep := range task.Dependencies {
			if pos(dep.String()) > pos(task.Name.String()) {
				t.Errorf("%s walked before its prerequisite %s: %v", task.Name, dep, order)
			}
		}
	}

	// A second validation yields the same order.
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	var again []string
	for task := range g.Walk() {
		again = append(again, task.Name.String())
	}
	if !slices.Equal(order, again) {
		t.Errorf("walk order is not stable: %v vs %v", order, again)
	}
}

func TestGraph_Dependents(t *testing.T) {
	g := assetGraph(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	var got []string
	for _, d := range g.Dependents(domain.NewInternedString("css")) {
		got = append(got, d.String())
	}
	if !slices.Equal(got, []string{"critical"}) {
		t.Errorf("expected css dependents [critical], got %v", got)
	}

	if deps := g.Dependents(domain.NewInternedString("default")); len(deps) != 0 {
		t.Errorf("expected no dependents of default, got %v", deps)
	}
}
