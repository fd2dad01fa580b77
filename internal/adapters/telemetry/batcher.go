// Package telemetry adapts OpenTelemetry spans to the renderer.
package telemetry

import (
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultBatchSize is the number of buffered bytes that forces a flush.
	DefaultBatchSize = 4096
	// DefaultBatchInterval is the longest time output stays buffered.
	DefaultBatchInterval = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("batcher is closed")

// Batcher collects task output and hands it to onFlush in chunks, either when
// size bytes are buffered or interval has passed since the first buffered write.
// It is safe for concurrent use.
type Batcher struct {
	size     int
	interval time.Duration
	onFlush  func([]byte)

	mu     sync.Mutex
	buf    []byte
	timer  *time.Timer
	closed bool
}

// NewBatcher returns a Batcher. Non-positive limits select the defaults.
func NewBatcher(size int, interval time.Duration, onFlush func([]byte)) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if interval <= 0 {
		interval = DefaultBatchInterval
	}
	return &Batcher{
		size:     size,
		interval: interval,
		onFlush:  onFlush,
	}
}

// Write buffers p.
func (b *Batcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	b.buf = append(b.buf, p...)
	if len(b.buf) >= b.size {
		b.flushLocked()
		return len(p), nil
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval, b.Flush)
	}
	return len(p), nil
}

// Flush hands any buffered output to the callback.
func (b *Batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
}

// Close flushes the remaining output. Writes after Close fail.
func (b *Batcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.flushLocked()
	b.closed = true
	return nil
}

// flushLocked must be called with mu held. The callback runs under the lock
// so chunks reach it in write order.
func (b *Batcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.buf) == 0 {
		return
	}
	data := b.buf
	b.buf = nil
	if b.onFlush != nil {
		b.onFlush(data)
	}
}
