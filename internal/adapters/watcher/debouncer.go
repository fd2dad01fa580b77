package watcher

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// DefaultDebounceWindow is how long the watcher waits for a burst of events to settle.
const DefaultDebounceWindow = 50 * time.Millisecond

// Debouncer collects changed paths and hands them over as one batch once no
// new path arrived for a full window.
type Debouncer struct {
	window time.Duration
	emit   func(paths []string)

	mu     sync.Mutex
	batch  map[string]struct{}
	timer  *time.Timer
	closed bool
}

// NewDebouncer creates a Debouncer. emit receives each batch sorted and without duplicates.
func NewDebouncer(window time.Duration, emit func(paths []string)) *Debouncer {
	return &Debouncer{window: window, emit: emit}
}

// Add records path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if d.batch == nil {
		d.batch = make(map[string]struct{})
	}
	d.batch[path] = struct{}{}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.deliver)
		return
	}
	d.timer.Reset(d.window)
}

// Stop drops the current batch and ignores every later Add.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.batch = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}

// deliver runs on the timer goroutine. A timer that fires after the batch was
// taken finds it empty.
func (d *Debouncer) deliver() {
	d.mu.Lock()
	paths := slices.Sorted(maps.Keys(d.batch))
	d.batch = nil
	closed := d.closed
	d.mu.Unlock()

	if closed || len(paths) == 0 || d.emit == nil {
		return
	}
	d.emit(paths)
}
