package domain

// Task represents a unit of work in the build graph.
// It uses InternedString for fields that are frequently repeated to save memory.
type Task struct {
	Name         InternedString
	Description  string
	Dependencies []InternedString

	// Command is run through the shell executor before any stream.
	Command     []string
	Environment map[string]string
	WorkingDir  InternedString

	// Streams are file pipelines, run one after another in declaration order.
	Streams []Stream

	// Watch bindings keep the task alive until the run is cancelled.
	Watch []WatchBinding
	// Serve starts the live-reload proxy and keeps the task alive.
	Serve *ServeConfig

	// Inputs and Outputs feed the build cache. A task without outputs is never cached.
	Inputs  []InternedString
	Outputs []InternedString
}

// LongRunning reports whether the task blocks until its context is cancelled.
func (t *Task) LongRunning() bool {
	return len(t.Watch) > 0 || t.Serve != nil
}

// Cacheable reports whether the task can be skipped when its inputs are unchanged.
func (t *Task) Cacheable() bool {
	return len(t.Outputs) > 0 && !t.LongRunning()
}

// HasAction reports whether the task does anything beyond grouping its prerequisites.
func (t *Task) HasAction() bool {
	return len(t.Command) > 0 || len(t.Streams) > 0 || t.LongRunning()
}

// SourcePatterns returns every glob that contributes files to the task, stream sources first.
func (t *Task) SourcePatterns() []string {
	var patterns []string
	for _, s := range t.Streams {
		patterns = append(patterns, s.Src...)
	}
	for _, in := range t.Inputs {
		patterns = append(patterns, in.String())
	}
	return patterns
}
