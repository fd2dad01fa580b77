// Package scheduler runs a task graph with bounded parallelism.
package scheduler

import (
	"context"
	"sync"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// TaskStatus is the last observed state of a planned task.
type TaskStatus string

const (
	// StatusPending means the task is planned and waits for its prerequisites.
	StatusPending TaskStatus = "Pending"
	// StatusRunning means the task action is in progress.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted means the action finished without error.
	StatusCompleted TaskStatus = "Completed"
	// StatusCached means the inputs and outputs matched the stored build info.
	StatusCached TaskStatus = "Cached"
	// StatusFailed means the action returned an error or panicked.
	StatusFailed TaskStatus = "Failed"
	// StatusSkipped means a prerequisite failed or the run was interrupted first.
	StatusSkipped TaskStatus = "Skipped"
)

// Scheduler executes planned tasks once their prerequisites have succeeded.
// One Scheduler may serve several overlapping runs of the same graph.
type Scheduler struct {
	executor ports.Executor
	store    ports.BuildInfoStore
	hasher   ports.Hasher
	resolver ports.InputResolver
	tracer   ports.Tracer

	mu       sync.RWMutex
	statuses map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	executor ports.Executor,
	store ports.BuildInfoStore,
	hasher ports.Hasher,
	resolver ports.InputResolver,
	tracer ports.Tracer,
) *Scheduler {
	return &Scheduler{
		executor: executor,
		store:    store,
		hasher:   hasher,
		resolver: resolver,
		tracer:   tracer,
		statuses: make(map[domain.InternedString]TaskStatus),
	}
}

func (s *Scheduler) setStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[name] = status
}

// Run executes the target tasks and their prerequisites.
//
// Independent tasks run concurrently, at most parallelism finite tasks at a time.
// Long-running tasks (watch, serve) do not count against the limit.
// When a task fails its dependents never start while unrelated branches carry on.
// The target "all" selects every task.
// With noCache the stored build info is ignored but still refreshed.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	targetNames []string,
	parallelism int,
	noCache bool,
) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	p, err := newPlan(graph, targetNames)
	if err != nil {
		return err
	}
	s.tracer.EmitPlan(ctx, domain.Strings(p.order), p.dependencies(), targetNames)

	s.mu.Lock()
	for _, name := range p.order {
		s.statuses[name] = StatusPending
	}
	s.mu.Unlock()

	r := newRun(ctx, s, p, max(parallelism, 1), noCache)
	err = r.drive()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range p.order {
		if s.statuses[name] == StatusPending {
			s.statuses[name] = StatusSkipped
		}
	}
	return err
}
