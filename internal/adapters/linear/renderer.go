// Package linear provides a synchronous, line-buffered renderer for terminals and CI logs.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/muesli/termenv"
	"go.trai.ch/pour/internal/ui/output"
	"go.trai.ch/pour/internal/ui/style"
)

// palette colors task name prefixes. A name always maps to the same entry.
var palette = []string{
	string(style.Amber),
	string(style.Blue),
	string(style.Green),
	string(style.Yellow),
	"#A855F7",
	"#06B6D4",
}

// Renderer implements ports.Renderer by printing chronological, prefixed lines.
// Task output goes to stdout; lifecycle lines go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu      sync.Mutex
	tasks   map[string]*taskState
	buffers map[string]*bytes.Buffer
}

type taskState struct {
	name      string
	prefix    string
	startTime time.Time
}

// NewRenderer creates a Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		out:     output.New(stderr, output.Basic),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all partial lines.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// Wait is a no-op; the renderer writes synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the planned tasks.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning %d task(s) for %s\n", len(tasks), strings.Join(targets, ", "))
}

// OnTaskStart prints a start line.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &taskState{
		name:      name,
		prefix:    r.prefix(name),
		startTime: startTime,
	}
	r.tasks[spanID] = state
	r.buffers[spanID] = new(bytes.Buffer)

	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", state.prefix)
}

// OnTaskLog buffers data and prints every complete line with the task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		idx := bytes.IndexByte(buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := buf.Next(idx + 1)
		r.printLineLocked(task, line)
	}
}

// OnTaskComplete flushes the partial line and prints the outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	switch {
	case err != nil:
		symbol := r.out.String(style.Cross).Foreground(r.out.Color(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", task.prefix, symbol, duration, err)
	case cached:
		symbol := r.out.String(style.Cached).Foreground(r.out.Color(string(style.Slate))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Cached\n", task.prefix, symbol)
	default:
		symbol := r.out.String(style.Check).Foreground(r.out.Color(string(style.Green))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Finished in %v\n", task.prefix, symbol, duration)
	}

	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
}

func (r *Renderer) prefix(name string) string {
	color := palette[xxhash.Sum64String(name)%uint64(len(palette))]
	return r.out.String("[" + name + "]").Foreground(r.out.Color(color)).String()
}

// flushBufferLocked must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(task *taskState, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", task.name, line)
}
