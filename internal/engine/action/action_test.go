package action_test

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
	"go.trai.ch/pour/internal/adapters/fs"
	"go.trai.ch/pour/internal/adapters/transform"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/core/ports/mocks"
	"go.trai.ch/pour/internal/engine/action"
	"go.trai.ch/pour/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	executor *action.Executor
	commands *mocks.MockCommandRunner
	server   *mocks.MockProxyServer
	watch    *mocks.MockWatchService
	root     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		commands: mocks.NewMockCommandRunner(ctrl),
		server:   mocks.NewMockProxyServer(ctrl),
		watch:    mocks.NewMockWatchService(ctrl),
		root:     t.TempDir(),
	}
	logger := mocks.NewMockLogger(ctrl)
	catalog := transform.NewCatalog(mocks.NewMockFilter(ctrl), logger, mocks.NewMockNotifier(ctrl), f.server)
	streams := pipeline.NewRunner(catalog, fs.NewResolver(fs.NewWalker()), logger)
	f.executor = action.NewExecutor(f.commands, streams, f.server, f.watch)
	return f
}

func (f *fixture) write(t *testing.T, rel, contents string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(contents), domain.FilePerm))
}

func copyStream(src, dir string) domain.Stream {
	return domain.Stream{
		Src:   []string{src},
		Steps: []domain.StepSpec{{Use: "dest", With: map[string]any{"dir": dir}}},
	}
}

func TestExecute_CommandThenStreams(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/app.js", "var a = 1;\n")

	task := &domain.Task{
		Name:    domain.NewInternedString("build"),
		Command: []string{"echo", "hi"},
		Streams: []domain.Stream{
			copyStream("src/*.js", "dist"),
			copyStream("dist/*.js", "public"),
		},
	}

	f.commands.EXPECT().RunCommand(gomock.Any(), task, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Task, stdout, _ io.Writer) error {
			_, err := io.WriteString(stdout, "hi\n")
			return err
		})

	var stdout bytes.Buffer
	ctx := ports.ContextWithRoot(context.Background(), f.root)
	require.NoError(t, f.executor.Execute(ctx, task, &stdout, io.Discard))

	// The second stream sees what the first one wrote.
	assert.FileExists(t, filepath.Join(f.root, "public", "app.js"))
	assert.Equal(t, "hi\nsrc/*.js: 1 file(s)\ndist/*.js: 1 file(s)\n", stdout.String())
}

func TestExecute_RootFallsBackToWorkingDir(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.css", "a{}")

	task := &domain.Task{
		Name:       domain.NewInternedString("copy"),
		WorkingDir: domain.NewInternedString(f.root),
		Streams:    []domain.Stream{copyStream("a.css", "out")},
	}
	f.commands.EXPECT().RunCommand(gomock.Any(), task, gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.executor.Execute(context.Background(), task, io.Discard, io.Discard))
	assert.FileExists(t, filepath.Join(f.root, "out", "a.css"))
}

func TestExecute_CommandErrorSkipsStreams(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/app.js", "var a = 1;\n")

	errCommand := errors.New("exit status 1")
	task := &domain.Task{
		Name:    domain.NewInternedString("build"),
		Command: []string{"false"},
		Streams: []domain.Stream{copyStream("src/*.js", "dist")},
	}
	f.commands.EXPECT().RunCommand(gomock.Any(), task, gomock.Any(), gomock.Any()).Return(errCommand)

	ctx := ports.ContextWithRoot(context.Background(), f.root)
	err := f.executor.Execute(ctx, task, io.Discard, io.Discard)
	require.ErrorIs(t, err, errCommand)
	assert.NoDirExists(t, filepath.Join(f.root, "dist"))
}

func TestExecute_StreamError(t *testing.T) {
	f := newFixture(t)

	task := &domain.Task{
		Name: domain.NewInternedString("bad"),
		Streams: []domain.Stream{{
			Src:   []string{"*.js"},
			Steps: []domain.StepSpec{{Use: "concat"}},
		}},
	}
	f.commands.EXPECT().RunCommand(gomock.Any(), task, gomock.Any(), gomock.Any()).Return(nil)

	ctx := ports.ContextWithRoot(context.Background(), f.root)
	err := f.executor.Execute(ctx, task, io.Discard, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidStepOptions.Error())
}

func TestExecute_ServeAndWatchUntilCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		lintOnChange := domain.WatchBinding{
			Paths: []string{"src/**/*.js"},
			Run:   domain.NewInternedStrings([]string{"lint"}),
		}
		reloadOnPHP := domain.WatchBinding{Paths: []string{"**/*.php"}, Reload: true}
		cfg := &domain.ServeConfig{
			Proxy: "http://theme.test",
			Watch: []domain.WatchBinding{reloadOnPHP},
		}
		task := &domain.Task{
			Name:  domain.NewInternedString("serve"),
			Watch: []domain.WatchBinding{lintOnChange},
			Serve: cfg,
		}

		f.commands.EXPECT().RunCommand(gomock.Any(), task, gomock.Any(), gomock.Any()).Return(nil)
		f.server.EXPECT().Serve(gomock.Any(), cfg, f.root).
			DoAndReturn(func(ctx context.Context, _ *domain.ServeConfig, _ string) error {
				<-ctx.Done()
				return nil
			})
		f.watch.EXPECT().Watch(gomock.Any(), f.root, []domain.WatchBinding{lintOnChange, reloadOnPHP}).
			DoAndReturn(func(ctx context.Context, _ string, _ []domain.WatchBinding) error {
				<-ctx.Done()
				return nil
			})

		ctx, cancel := context.WithCancel(ports.ContextWithRoot(t.Context(), f.root))
		done := make(chan error, 1)
		go func() {
			done <- f.executor.Execute(ctx, task, io.Discard, io.Discard)
		}()

		synctest.Wait()
		select {
		case err := <-done:
			t.Fatalf("long-running task returned early: %v", err)
		default:
		}

		cancel()
		require.NoError(t, <-done)
	})
}

func TestExecute_ServeFailureStopsWatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		cfg := &domain.ServeConfig{Proxy: "http://theme.test"}
		task := &domain.Task{
			Name:  domain.NewInternedString("serve"),
			Watch: []domain.WatchBinding{{Paths: []string{"**/*.php"}, Reload: true}},
			Serve: cfg,
		}

		f.commands.EXPECT().RunCommand(gomock.Any(), task, gomock.Any(), gomock.Any()).Return(nil)
		f.server.EXPECT().Serve(gomock.Any(), cfg, f.root).Return(domain.ErrServerStartFailed)
		f.watch.EXPECT().Watch(gomock.Any(), f.root, gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, _ []domain.WatchBinding) error {
				<-ctx.Done()
				return nil
			})

		ctx := ports.ContextWithRoot(t.Context(), f.root)
		err := f.executor.Execute(ctx, task, io.Discard, io.Discard)
		require.ErrorIs(t, err, domain.ErrServerStartFailed)
	})
}

func TestCheck(t *testing.T) {
	f := newFixture(t)

	good := domain.NewGraph()
	require.NoError(t, good.AddTask(&domain.Task{
		Name:    domain.NewInternedString("scripts"),
		Streams: []domain.Stream{copyStream("*.js", "out")},
	}))
	require.NoError(t, good.Validate())
	require.NoError(t, f.executor.Check(good))

	bad := domain.NewGraph()
	require.NoError(t, bad.AddTask(&domain.Task{
		Name: domain.NewInternedString("scripts"),
		Streams: []domain.Stream{{
			Src:   []string{"*.js"},
			Steps: []domain.StepSpec{{Use: "uglify"}},
		}},
	}))
	require.NoError(t, bad.Validate())
	err := f.executor.Check(bad)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownStep.Error())
}
