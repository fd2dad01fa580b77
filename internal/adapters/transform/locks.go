package transform

import "sync"

// PathLocks serializes writes to the same output path across concurrently running tasks.
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPathLocks creates an empty lock table.
func NewPathLocks() *PathLocks {
	return &PathLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for path and returns its release function.
func (p *PathLocks) Lock(path string) func() {
	p.mu.Lock()
	l, ok := p.locks[path]
	if !ok {
		l = new(sync.Mutex)
		p.locks[path] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
