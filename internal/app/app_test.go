package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pour/internal/adapters/config"
	"go.trai.ch/pour/internal/app"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type checkFunc func(*domain.Graph) error

func (f checkFunc) Check(g *domain.Graph) error { return f(g) }

func acceptAll(*domain.Graph) error { return nil }

type fixture struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	store    *mocks.MockBuildInfoStore
	hasher   *mocks.MockHasher
	resolver *mocks.MockInputResolver
	logger   *mocks.MockLogger
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	root     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	t.Chdir(root)
	return &fixture{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		store:    mocks.NewMockBuildInfoStore(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		resolver: mocks.NewMockInputResolver(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		root:     root,
	}
}

func (f *fixture) app(check checkFunc) *app.App {
	return app.New(f.loader, f.executor, check, f.logger, f.store, f.hasher, f.resolver).
		WithOutput(&f.stdout, &f.stderr)
}

func (f *fixture) graph(t *testing.T, tasks ...*domain.Task) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot(f.root)
	for _, task := range tasks {
		require.NoError(t, g.AddTask(task))
	}
	return g
}

func TestApp_Run(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		task := &domain.Task{Name: domain.NewInternedString("lint"), Command: []string{"eslint"}}
		f.loader.EXPECT().Load(".").Return(f.graph(t, task), nil)

		f.executor.EXPECT().Execute(gomock.Any(), task, gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ *domain.Task, stdout, _ io.Writer) error {
				root, ok := ports.RootFromContext(ctx)
				assert.True(t, ok)
				assert.Equal(t, f.root, root)
				_, ok = ports.TaskRunnerFromContext(ctx)
				assert.True(t, ok)
				_, err := io.WriteString(stdout, "clean\n")
				return err
			})

		err := f.app(acceptAll).Run(context.Background(), []string{"lint"}, app.RunOptions{Jobs: 2})
		require.NoError(t, err)
		assert.Contains(t, f.stderr.String(), "Planning 1 task(s) for lint")
		assert.Contains(t, f.stdout.String(), "[lint] clean")
	})
}

func TestApp_Run_DefaultTarget(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		css := &domain.Task{Name: domain.NewInternedString("css"), Command: []string{"sass"}}
		def := &domain.Task{
			Name:         domain.NewInternedString(domain.DefaultTaskName),
			Dependencies: domain.NewInternedStrings([]string{"css"}),
		}
		f.loader.EXPECT().Load(".").Return(f.graph(t, css, def), nil)

		first := f.executor.EXPECT().Execute(gomock.Any(), css, gomock.Any(), gomock.Any()).Return(nil)
		f.executor.EXPECT().Execute(gomock.Any(), def, gomock.Any(), gomock.Any()).Return(nil).After(first)

		require.NoError(t, f.app(acceptAll).Run(context.Background(), nil, app.RunOptions{}))
		assert.Contains(t, f.stderr.String(), "Planning 2 task(s) for default")
	})
}

func TestApp_Run_CachedTaskIsSkipped(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		task := &domain.Task{
			Name:    domain.NewInternedString("css"),
			Streams: []domain.Stream{{Src: []string{"src/*.scss"}}},
			Outputs: domain.NewInternedStrings([]string{"public/library/css"}),
		}
		f.loader.EXPECT().Load(".").Return(f.graph(t, task), nil)

		inputs := []string{filepath.Join(f.root, "src", "style.scss")}
		f.resolver.EXPECT().ResolveInputs([]string{"src/*.scss"}, f.root).Return(inputs, nil)
		f.hasher.EXPECT().ComputeInputHash(task, nil, inputs).Return("in", nil)
		f.store.EXPECT().Get(f.root, "css").Return(&domain.BuildInfo{TaskName: "css", InputHash: "in", OutputHash: "out"}, nil)
		f.hasher.EXPECT().ComputeOutputHash([]string{"public/library/css"}, f.root).Return("out", nil)

		require.NoError(t, f.app(acceptAll).Run(context.Background(), []string{"css"}, app.RunOptions{}))
	})
}

func TestApp_Run_NoCache(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		task := &domain.Task{
			Name:    domain.NewInternedString("css"),
			Streams: []domain.Stream{{Src: []string{"src/*.scss"}}},
			Outputs: domain.NewInternedStrings([]string{"public/library/css"}),
		}
		f.loader.EXPECT().Load(".").Return(f.graph(t, task), nil)

		f.resolver.EXPECT().ResolveInputs([]string{"src/*.scss"}, f.root).Return(nil, nil)
		f.hasher.EXPECT().ComputeInputHash(task, nil, nil).Return("in", nil)
		f.executor.EXPECT().Execute(gomock.Any(), task, gomock.Any(), gomock.Any()).Return(nil)
		f.hasher.EXPECT().ComputeOutputHash([]string{"public/library/css"}, f.root).Return("out", nil)
		f.store.EXPECT().Put(f.root, gomock.Any()).Return(nil)

		require.NoError(t, f.app(acceptAll).Run(context.Background(), []string{"css"}, app.RunOptions{NoCache: true}))
	})
}

func TestApp_Run_ConfigLoaderError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, errors.New("config load error"))

	err := f.app(acceptAll).Run(context.Background(), []string{"css"}, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestApp_Run_CheckFailsBeforeAnyTask(t *testing.T) {
	f := newFixture(t)
	task := &domain.Task{Name: domain.NewInternedString("css"), Command: []string{"sass"}}
	f.loader.EXPECT().Load(".").Return(f.graph(t, task), nil)

	err := f.app(func(*domain.Graph) error { return domain.ErrUnknownStep }).
		Run(context.Background(), []string{"css"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrUnknownStep)
}

func TestApp_Run_BuildExecutionFailed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		task := &domain.Task{Name: domain.NewInternedString("lint"), Command: []string{"eslint"}}
		f.loader.EXPECT().Load(".").Return(f.graph(t, task), nil)
		f.executor.EXPECT().Execute(gomock.Any(), task, gomock.Any(), gomock.Any()).
			Return(errors.New("command failed"))

		err := f.app(acceptAll).Run(context.Background(), []string{"lint"}, app.RunOptions{})
		require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	})
}

func TestApp_Run_InterruptIsNotAnError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		task := &domain.Task{
			Name:  domain.NewInternedString("watch"),
			Watch: []domain.WatchBinding{{Paths: []string{"**/*.php"}, Reload: true}},
		}
		f.loader.EXPECT().Load(".").Return(f.graph(t, task), nil)
		f.executor.EXPECT().Execute(gomock.Any(), task, gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ *domain.Task, _, _ io.Writer) error {
				<-ctx.Done()
				return ctx.Err()
			})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- f.app(acceptAll).Run(ctx, []string{"watch"}, app.RunOptions{})
		}()

		synctest.Wait()
		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Run_InterruptKeepsTaskFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		css := &domain.Task{Name: domain.NewInternedString("css"), Command: []string{"sass"}}
		watch := &domain.Task{
			Name:  domain.NewInternedString("watch"),
			Watch: []domain.WatchBinding{{Paths: []string{"**/*.php"}, Reload: true}},
		}
		f.loader.EXPECT().Load(".").Return(f.graph(t, css, watch), nil)
		f.executor.EXPECT().Execute(gomock.Any(), css, gomock.Any(), gomock.Any()).
			Return(errors.New("sass exited with status 65"))
		f.executor.EXPECT().Execute(gomock.Any(), watch, gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ *domain.Task, _, _ io.Writer) error {
				<-ctx.Done()
				return ctx.Err()
			})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- f.app(acceptAll).Run(ctx, []string{"css", "watch"}, app.RunOptions{})
		}()

		synctest.Wait()
		cancel()
		err := <-done
		require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
		assert.ErrorContains(t, err, "sass exited with status 65")
	})
}

func TestApp_Run_WatchRerunsThroughContextRunner(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		lint := &domain.Task{Name: domain.NewInternedString("lint"), Command: []string{"eslint"}}
		watch := &domain.Task{
			Name: domain.NewInternedString("watch"),
			Watch: []domain.WatchBinding{{
				Paths: []string{"src/**/*.js"},
				Run:   domain.NewInternedStrings([]string{"lint"}),
			}},
		}
		f.loader.EXPECT().Load(".").Return(f.graph(t, lint, watch), nil)

		f.executor.EXPECT().Execute(gomock.Any(), lint, gomock.Any(), gomock.Any()).Return(nil).Times(1)
		f.executor.EXPECT().Execute(gomock.Any(), watch, gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ *domain.Task, _, _ io.Writer) error {
				runner, ok := ports.TaskRunnerFromContext(ctx)
				if assert.True(t, ok) {
					assert.NoError(t, runner.RunTasks(ctx, []string{"lint"}))
				}
				<-ctx.Done()
				return nil
			})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- f.app(acceptAll).Run(ctx, []string{"watch"}, app.RunOptions{})
		}()

		synctest.Wait()
		cancel()
		require.NoError(t, <-done)
		assert.Contains(t, f.stderr.String(), "Planning 1 task(s) for lint")
	})
}

func TestApp_Tasks(t *testing.T) {
	f := newFixture(t)
	css := &domain.Task{Name: domain.NewInternedString("css"), Description: "Compile Sass"}
	def := &domain.Task{
		Name:         domain.NewInternedString(domain.DefaultTaskName),
		Dependencies: domain.NewInternedStrings([]string{"css"}),
	}
	f.loader.EXPECT().Load(".").Return(f.graph(t, def, css), nil)

	tasks, err := f.app(acceptAll).Tasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []app.TaskSummary{
		{Name: "css", Description: "Compile Sass", Dependencies: []string{}},
		{Name: "default", Dependencies: []string{"css"}},
	}, tasks)
}

func TestApp_Tasks_Cycle(t *testing.T) {
	f := newFixture(t)
	a := &domain.Task{Name: domain.NewInternedString("a"), Dependencies: domain.NewInternedStrings([]string{"b"})}
	b := &domain.Task{Name: domain.NewInternedString("b"), Dependencies: domain.NewInternedStrings([]string{"a"})}
	f.loader.EXPECT().Load(".").Return(f.graph(t, a, b), nil)

	_, err := f.app(acceptAll).Tasks(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCycleDetected.Error())
}

func TestApp_Init(t *testing.T) {
	f := newFixture(t)
	f.logger.EXPECT().Info("wrote pour.yaml").Times(2)
	a := f.app(acceptAll)

	require.NoError(t, a.Init(context.Background(), app.InitOptions{}))
	written, err := os.ReadFile(filepath.Join(f.root, domain.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPourfile, written)

	err = a.Init(context.Background(), app.InitOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigExists.Error())

	require.NoError(t, os.WriteFile(domain.ConfigFileName, []byte("version: \"1\"\n"), domain.FilePerm))
	require.NoError(t, a.Init(context.Background(), app.InitOptions{Force: true}))
	written, err = os.ReadFile(domain.ConfigFileName)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPourfile, written)
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	project := filepath.Join(f.root, "theme")
	store := filepath.Join(project, domain.DefaultStorePath())
	require.NoError(t, os.MkdirAll(store, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(store, "css.json"), []byte("{}"), domain.FilePerm))

	f.loader.EXPECT().DiscoverRoot(".").Return(project, nil)
	f.logger.EXPECT().Info(gomock.Any()).Times(2)

	require.NoError(t, f.app(acceptAll).Clean(context.Background(), app.CleanOptions{}))
	assert.NoDirExists(t, store)
	assert.DirExists(t, filepath.Join(project, domain.PourDirName))
}

func TestApp_Clean_OutsideProject(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(domain.DefaultStorePath(), domain.DirPerm))

	f.loader.EXPECT().DiscoverRoot(".").Return("", domain.ErrConfigNotFound)
	f.logger.EXPECT().Info(gomock.Any()).Times(2)

	require.NoError(t, f.app(acceptAll).Clean(context.Background(), app.CleanOptions{}))
	assert.NoDirExists(t, filepath.Join(f.root, domain.DefaultStorePath()))
}
