// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/pour/internal/core/domain"
)

// Executor defines the interface for running a task's action.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the action of the given task: its command, its streams and,
	// for long-running tasks, its watch bindings and live-reload server.
	//
	// Long-running actions return nil once ctx is cancelled.
	Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error
}

// CommandRunner runs the external command declared on a task.
type CommandRunner interface {
	// RunCommand runs task.Command with the task environment and working directory.
	// A task without a command is a no-op.
	RunCommand(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error
}

// Filter pipes content through an external program.
type Filter interface {
	// Filter runs argv in dir with stdin as standard input and returns standard output.
	Filter(ctx context.Context, argv []string, dir string, stdin []byte) ([]byte, error)
}
