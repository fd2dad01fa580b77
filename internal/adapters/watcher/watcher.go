// Package watcher observes the project tree and dispatches watch bindings.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Watcher        = (*Watcher)(nil)
	_ ports.WatcherFactory = (*Factory)(nil)
)

// skippedDirs are never watched.
var skippedDirs = map[string]bool{
	".git":             true,
	".jj":              true,
	domain.PourDirName: true,
	"node_modules":     true,
}

const eventChannelBuffer = 100

// Watcher implements recursive file system watching using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent
}

// NewWatcher creates a new file system watcher. Watch errors are reported to logger.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherStartFailed.Error())
	}
	return &Watcher{
		fsWatcher: w,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start adds root and every directory below it, then begins delivering events.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range walkDirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherStartFailed.Error()), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// walkDirs yields root and all directories below it that are not skipped.
func walkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable directories are left out.
				return nil //nolint:nilerr // skip problematic directories
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skippedDirs[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

			if watchEvent.Operation == ports.OpCreate {
				w.addCreated(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error(zerr.Wrap(err, "file watcher error"))
		}
	}
}

// addCreated starts watching a directory created after Start, with its subdirectories.
func (w *Watcher) addCreated(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skippedDirs[info.Name()] {
		return
	}
	for dir := range walkDirs(path) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Error(zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir))
		}
	}
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}

// Factory creates independent watchers sharing one logger.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewWatcher creates a new, not yet started, watcher.
func (f *Factory) NewWatcher() (ports.Watcher, error) {
	return NewWatcher(f.logger)
}
