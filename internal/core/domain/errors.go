package domain

import "go.trai.ch/zerr"

// Task file and graph errors.
var (
	// ErrConfigNotFound means no pour.yaml exists in cwd or any parent.
	ErrConfigNotFound = zerr.New("could not find pour.yaml")
	// ErrConfigExists stops init from overwriting a task file.
	ErrConfigExists = zerr.New("pour.yaml already exists")
	// ErrConfigReadFailed wraps I/O errors on the task file.
	ErrConfigReadFailed = zerr.New("failed to read config file")
	// ErrConfigParseFailed wraps YAML errors in the task file.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrTaskAlreadyExists rejects a second task under the same name.
	ErrTaskAlreadyExists = zerr.New("task already exists")
	// ErrReservedTaskName rejects a task called "all", the run-everything target.
	ErrReservedTaskName = zerr.New("task name 'all' is reserved")
	// ErrInvalidTaskName rejects names outside [A-Za-z0-9_-].
	ErrInvalidTaskName = zerr.New("invalid task name")
	// ErrMissingDependency names a prerequisite that is not declared.
	ErrMissingDependency = zerr.New("missing dependency")
	// ErrCycleDetected carries the offending path as metadata.
	ErrCycleDetected = zerr.New("cycle detected")
	// ErrTaskNotFound names a requested target that is not declared.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrInvalidWatchBinding rejects bindings without paths or with both or neither action.
	ErrInvalidWatchBinding = zerr.New("watch binding needs paths and exactly one of 'run' or 'reload'")
	// ErrMissingProxyTarget rejects a serve block without an upstream.
	ErrMissingProxyTarget = zerr.New("serve requires a proxy target")
	// ErrInvalidProxyTarget rejects upstreams that are not absolute http(s) URLs.
	ErrInvalidProxyTarget = zerr.New("proxy target must be an absolute http or https URL")
)

// Pipeline errors.
var (
	// ErrEmptyStreamSource rejects a stream without src globs.
	ErrEmptyStreamSource = zerr.New("stream has no src patterns")
	// ErrUnknownStep names a step that no transform is registered for.
	ErrUnknownStep = zerr.New("unknown pipeline step")
	// ErrInvalidStepOptions covers undecodable or incomplete "with" blocks.
	ErrInvalidStepOptions = zerr.New("invalid step options")
	// ErrStepFailed wraps the error a transform returned for a file.
	ErrStepFailed = zerr.New("pipeline step failed")
	// ErrInvalidGlob wraps glob compilation errors.
	ErrInvalidGlob = zerr.New("invalid glob pattern")
	// ErrFileWriteFailed means a dest step could not write its output.
	ErrFileWriteFailed = zerr.New("failed to write file")
)

// Build info store and hashing errors.
var (
	ErrStoreCreateFailed    = zerr.New("failed to create build info store directory")
	ErrStoreReadFailed      = zerr.New("failed to read build info")
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")
	ErrStoreMarshalFailed   = zerr.New("failed to marshal build info")
	ErrStoreWriteFailed     = zerr.New("failed to write build info")

	ErrInputResolutionFailed      = zerr.New("failed to resolve inputs")
	ErrInputHashComputationFailed = zerr.New("failed to compute input hash")
	ErrFileOpenFailed             = zerr.New("failed to open file")
	ErrFileHashFailed             = zerr.New("failed to hash file content")
	ErrPathStatFailed             = zerr.New("failed to stat path")
	ErrWriteHashFailed            = zerr.New("failed to write hash to digest")
)

// Run errors.
var (
	// ErrBuildExecutionFailed heads the joined error of a run in which a task failed.
	// The CLI exits non-zero on it without logging again.
	ErrBuildExecutionFailed = zerr.New("build execution failed")
	// ErrTaskExecutionFailed wraps the error of a single task.
	ErrTaskExecutionFailed = zerr.New("task execution failed")
	// ErrTaskPanicked reports a recovered panic in a task action.
	ErrTaskPanicked = zerr.New("task panicked")
	// ErrWatcherStartFailed means the project root could not be watched.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")
	// ErrServerStartFailed means the live-reload proxy could not bind its address.
	ErrServerStartFailed = zerr.New("failed to start live-reload server")
)
