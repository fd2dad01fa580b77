package ports

import "context"

// TaskRunner runs tasks of the loaded graph together with their prerequisites.
//
//go:generate mockgen -source=task_runner.go -destination=mocks/mock_task_runner.go -package=mocks
type TaskRunner interface {
	RunTasks(ctx context.Context, names []string) error
}

type taskRunnerKey struct{}

// ContextWithTaskRunner returns a context carrying the runner used by watch bindings.
func ContextWithTaskRunner(ctx context.Context, r TaskRunner) context.Context {
	return context.WithValue(ctx, taskRunnerKey{}, r)
}

// TaskRunnerFromContext returns the runner stored by ContextWithTaskRunner, if any.
func TaskRunnerFromContext(ctx context.Context) (TaskRunner, bool) {
	r, ok := ctx.Value(taskRunnerKey{}).(TaskRunner)
	return r, ok
}

type rootKey struct{}

// ContextWithRoot returns a context carrying the project root task actions resolve
// relative paths against.
func ContextWithRoot(ctx context.Context, root string) context.Context {
	return context.WithValue(ctx, rootKey{}, root)
}

// RootFromContext returns the root stored by ContextWithRoot, if any.
func RootFromContext(ctx context.Context) (string, bool) {
	root, ok := ctx.Value(rootKey{}).(string)
	return root, ok && root != ""
}
