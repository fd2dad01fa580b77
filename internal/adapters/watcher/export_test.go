package watcher

// Flush hands over the current batch without waiting for the window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.deliver()
}
