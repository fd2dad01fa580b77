// Package app implements the application layer for pour.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/pour/internal/adapters/config"    //nolint:depguard // Default task file
	"go.trai.ch/pour/internal/adapters/linear"    //nolint:depguard // Renderer is built per run
	"go.trai.ch/pour/internal/adapters/telemetry" //nolint:depguard // Tracer is built per run
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// GraphChecker rejects a loaded graph before any of its tasks run.
type GraphChecker interface {
	Check(graph *domain.Graph) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	checker      GraphChecker
	logger       ports.Logger
	store        ports.BuildInfoStore
	hasher       ports.Hasher
	resolver     ports.InputResolver
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	checker GraphChecker,
	log ports.Logger,
	store ports.BuildInfoStore,
	hasher ports.Hasher,
	resolver ports.InputResolver,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		checker:      checker,
		logger:       log,
		store:        store,
		hasher:       hasher,
		resolver:     resolver,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects task output and progress lines.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	NoCache bool
	// Jobs bounds the number of finite tasks running at once. Zero means NumCPU.
	Jobs int
}

// Run executes the named tasks with their prerequisites. Without names the default
// task runs. Interrupting a run is not an error.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	// 1. Load and check the graph
	graph, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if err := graph.Validate(); err != nil {
		return err
	}
	if err := a.checker.Check(graph); err != nil {
		return err
	}

	if len(targetNames) == 0 {
		targetNames = []string{domain.DefaultTaskName}
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	// 2. Initialize Renderer and Telemetry
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	bridge := telemetry.NewBridge(renderer)
	provider := telemetry.NewProvider(bridge)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracerFromProvider(provider, telemetry.InstrumentationName).WithRenderer(renderer)

	// 3. Initialize Scheduler
	sched := scheduler.NewScheduler(a.executor, a.store, a.hasher, a.resolver, tracer)
	runner := &graphRunner{
		sched:   sched,
		graph:   graph,
		jobs:    jobs,
		noCache: opts.NoCache,
	}

	// 4. Run Renderer and Scheduler concurrently
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()
		return runner.RunTasks(gctx, targetNames)
	})

	err = g.Wait()
	if ctx.Err() != nil && !errors.Is(err, domain.ErrBuildExecutionFailed) {
		// Interrupted by the operator with every task healthy.
		return nil
	}
	return err
}

// graphRunner binds the scheduler to the loaded graph. It is handed to watch
// bindings through the context so re-runs include prerequisites.
type graphRunner struct {
	sched   *scheduler.Scheduler
	graph   *domain.Graph
	jobs    int
	noCache bool
}

var _ ports.TaskRunner = (*graphRunner)(nil)

func (r *graphRunner) RunTasks(ctx context.Context, names []string) error {
	ctx = ports.ContextWithRoot(ctx, r.graph.Root())
	ctx = ports.ContextWithTaskRunner(ctx, r)
	return r.sched.Run(ctx, r.graph, names, r.jobs, r.noCache)
}

// TaskSummary describes one declared task.
type TaskSummary struct {
	Name         string
	Description  string
	Dependencies []string
}

// Tasks lists the declared tasks in execution order.
func (a *App) Tasks(_ context.Context) ([]TaskSummary, error) {
	graph, err := a.configLoader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	summaries := make([]TaskSummary, 0, graph.TaskCount())
	for task := range graph.Walk() {
		summaries = append(summaries, TaskSummary{
			Name:         task.Name.String(),
			Description:  task.Description,
			Dependencies: domain.Strings(task.Dependencies),
		})
	}
	return summaries, nil
}

// InitOptions configuration for the Init method.
type InitOptions struct {
	Force bool
}

// Init writes the default task file into the working directory.
func (a *App) Init(_ context.Context, options InitOptions) error {
	path := domain.ConfigFileName
	if !options.Force {
		if _, err := os.Stat(path); err == nil {
			return zerr.With(domain.ErrConfigExists, "file", path)
		}
	}

	if err := os.WriteFile(path, config.DefaultPourfile, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "file", path)
	}
	a.logger.Info(fmt.Sprintf("wrote %s", path))
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct{}

// Clean removes the build info store of the current project. Without a readable
// task file the store below the working directory is removed.
func (a *App) Clean(_ context.Context, _ CleanOptions) error {
	root, err := a.configLoader.DiscoverRoot(".")
	if err != nil {
		root = "."
	}

	path := filepath.Join(root, domain.DefaultStorePath())
	a.logger.Info("removing build info store...")
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove build info store"), "path", path)
	}
	a.logger.Info("removed build info store")
	return nil
}
