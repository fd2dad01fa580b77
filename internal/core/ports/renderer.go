package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation logic.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called when the scheduler has planned the task graph.
	// tasks: list of all task names in execution order
	// deps: dependency map (task -> list of dependencies)
	// targets: the user-requested target tasks
	OnPlanEmit(tasks []string, deps map[string][]string, targets []string)

	// OnTaskStart is called when a task begins execution.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a task emits output.
	// data may contain partial lines.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a task finishes execution.
	// err is nil if successful. cached reports that the task was skipped on a cache hit.
	OnTaskComplete(spanID string, endTime time.Time, err error, cached bool)
}
