package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/pour/internal/adapters/fs" //nolint:depguard // shared glob semantics
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// errNoTaskRunner is returned when a binding runs tasks but nothing can run them.
var errNoTaskRunner = zerr.New("watch binding runs tasks but no task runner is available")

// Dispatcher maps debounced path batches to watch bindings.
//
// A binding never overlaps itself: a trigger that arrives while its previous dispatch
// is still running is kept as one pending run, and any further trigger is dropped.
type Dispatcher struct {
	root     string
	bindings []*binding
	runner   ports.TaskRunner
	reloader ports.Reloader
	logger   ports.Logger
	wg       sync.WaitGroup
}

type binding struct {
	label    string
	includes []fs.Pattern
	excludes []fs.Pattern
	run      []string
	reload   bool

	mu      sync.Mutex
	running bool
	pending bool
}

// NewDispatcher compiles bindings whose paths are relative to root.
// runner may be nil when no binding runs tasks.
func NewDispatcher(
	root string,
	bindings []domain.WatchBinding,
	runner ports.TaskRunner,
	reloader ports.Reloader,
	logger ports.Logger,
) (*Dispatcher, error) {
	d := &Dispatcher{
		root:     root,
		runner:   runner,
		reloader: reloader,
		logger:   logger,
	}

	for _, wb := range bindings {
		b := &binding{
			label:  strings.Join(wb.Paths, ", "),
			reload: wb.Reload,
		}
		for _, name := range wb.Run {
			b.run = append(b.run, name.String())
		}
		if len(b.run) > 0 && runner == nil {
			return nil, zerr.With(errNoTaskRunner, "paths", b.label)
		}
		for _, raw := range wb.Paths {
			p, err := fs.CompilePattern(raw)
			if err != nil {
				return nil, err
			}
			if p.Exclude() {
				b.excludes = append(b.excludes, p)
			} else {
				b.includes = append(b.includes, p)
			}
		}
		d.bindings = append(d.bindings, b)
	}

	return d, nil
}

// Patterns returns every include pattern of every binding.
func (d *Dispatcher) Patterns() []string {
	var out []string
	for _, b := range d.bindings {
		for _, p := range b.includes {
			out = append(out, p.String())
		}
	}
	return out
}

// Dispatch triggers each binding matched by at least one of paths, once.
// paths are absolute. It returns the number of bindings triggered.
func (d *Dispatcher) Dispatch(ctx context.Context, paths []string) int {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(d.root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rels = append(rels, filepath.ToSlash(rel))
	}

	triggered := 0
	for _, b := range d.bindings {
		idx := slices.IndexFunc(rels, b.match)
		if idx < 0 {
			continue
		}
		triggered++
		d.trigger(ctx, b, rels[idx])
	}
	return triggered
}

// Wait blocks until every running dispatch has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (b *binding) match(rel string) bool {
	if slices.ContainsFunc(b.excludes, func(p fs.Pattern) bool { return p.Match(rel) }) {
		return false
	}
	return slices.ContainsFunc(b.includes, func(p fs.Pattern) bool { return p.Match(rel) })
}

func (d *Dispatcher) trigger(ctx context.Context, b *binding, changed string) {
	b.mu.Lock()
	if b.running {
		b.pending = true
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	d.wg.Go(func() {
		for {
			d.execute(ctx, b, changed)

			b.mu.Lock()
			if !b.pending || ctx.Err() != nil {
				b.running = false
				b.pending = false
				b.mu.Unlock()
				return
			}
			b.pending = false
			b.mu.Unlock()
		}
	})
}

func (d *Dispatcher) execute(ctx context.Context, b *binding, changed string) {
	if b.reload {
		d.logger.Info("Changed " + changed + ", reloading browsers")
		d.reloader.Reload()
		return
	}

	d.logger.Info("Changed " + changed + ", running " + strings.Join(b.run, ", "))
	err := d.runner.RunTasks(ctx, b.run)
	if err == nil || (ctx.Err() != nil && errors.Is(err, context.Canceled)) {
		return
	}
	d.logger.Error(zerr.With(zerr.Wrap(err, "watch run failed"), "paths", b.label))
}
