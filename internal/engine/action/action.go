// Package action turns a task into the work it declares.
package action

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor. A task runs its command first, then each of its
// streams in declaration order. Long-running tasks then serve and watch until the
// context is cancelled.
type Executor struct {
	commands ports.CommandRunner
	streams  *pipeline.Runner
	server   ports.ProxyServer
	watch    ports.WatchService
}

// NewExecutor creates a new Executor.
func NewExecutor(
	commands ports.CommandRunner,
	streams *pipeline.Runner,
	server ports.ProxyServer,
	watch ports.WatchService,
) *Executor {
	return &Executor{
		commands: commands,
		streams:  streams,
		server:   server,
		watch:    watch,
	}
}

// Check rejects graphs whose streams name unknown steps, before anything runs.
func (e *Executor) Check(graph *domain.Graph) error {
	for task := range graph.Walk() {
		if err := e.streams.Check(task.Streams); err != nil {
			return zerr.With(err, "task", task.Name.String())
		}
	}
	return nil
}

// Execute runs the action of task. Relative paths resolve against the root carried
// by ctx, or the task's working directory when there is none.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error {
	root, ok := ports.RootFromContext(ctx)
	if !ok {
		root = task.WorkingDir.String()
	}

	if err := e.commands.RunCommand(ctx, task, stdout, stderr); err != nil {
		return err
	}

	for i, stream := range task.Streams {
		files, err := e.streams.Run(ctx, stream, root)
		if err != nil {
			return zerr.With(err, "stream", i)
		}
		_, _ = fmt.Fprintf(stdout, "%s: %d file(s)\n", strings.Join(stream.Src, ", "), len(files))
	}

	if !task.LongRunning() {
		return nil
	}
	return e.serve(ctx, task, root)
}

// serve blocks until ctx is cancelled or the proxy or the watcher fails.
func (e *Executor) serve(ctx context.Context, task *domain.Task, root string) error {
	g, gctx := errgroup.WithContext(ctx)

	bindings := slices.Clone(task.Watch)
	if task.Serve != nil {
		cfg := task.Serve
		bindings = append(bindings, cfg.Watch...)
		g.Go(func() error {
			return e.server.Serve(gctx, cfg, root)
		})
	}

	if len(bindings) > 0 {
		g.Go(func() error {
			return e.watch.Watch(gctx, root, bindings)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// Both sides only return nil once ctx is done.
	return nil
}
