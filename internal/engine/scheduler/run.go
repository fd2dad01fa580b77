package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

type outcome struct {
	name        domain.InternedString
	longRunning bool
	cached      bool
	inputHash   string
	err         error
}

// run is the state of one Scheduler.Run. Only drive's goroutine touches it;
// task goroutines report back through done.
type run struct {
	ctx     context.Context
	s       *Scheduler
	plan    *plan
	limit   int
	noCache bool

	waiting  map[domain.InternedString]int
	queue    []domain.InternedString
	running  int // every started task
	finite   int // started tasks that count against limit
	done     chan outcome
	failures error
}

func newRun(ctx context.Context, s *Scheduler, p *plan, limit int, noCache bool) *run {
	r := &run{
		ctx:     ctx,
		s:       s,
		plan:    p,
		limit:   limit,
		noCache: noCache,
		waiting: p.waiting(),
		done:    make(chan outcome, len(p.order)),
	}
	for _, name := range p.order {
		if r.waiting[name] == 0 {
			r.queue = append(r.queue, name)
		}
	}
	return r
}

// drive starts tasks as slots and prerequisites allow and returns once
// nothing is running and nothing more can start.
func (r *run) drive() error {
	for {
		r.launch()
		if r.running == 0 {
			break
		}
		r.settle(<-r.done)
	}

	if r.failures != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, r.failures, r.ctx.Err())
	}
	return r.ctx.Err()
}

func (r *run) launch() {
	var held []domain.InternedString
	for len(r.queue) > 0 && r.ctx.Err() == nil {
		name := r.queue[0]
		r.queue = r.queue[1:]

		task := r.plan.tasks[name]
		long := task.LongRunning()
		if !long && r.finite >= r.limit {
			held = append(held, name)
			continue
		}

		r.running++
		if !long {
			r.finite++
		}
		r.s.setStatus(name, StatusRunning)
		go func() {
			r.done <- r.execute(task)
		}()
	}
	r.queue = append(held, r.queue...)
}

// execute runs one task under its own span. The span ends before the outcome
// is reported, so renderers see every completion before Run returns.
func (r *run) execute(task *domain.Task) (o outcome) {
	var opts []ports.SpanOption
	if task.LongRunning() {
		opts = append(opts, ports.WithLongRunning())
	}
	ctx, span := r.s.tracer.Start(r.ctx, task.Name.String(), opts...)
	defer span.End()

	o = outcome{name: task.Name, longRunning: task.LongRunning()}
	defer func() {
		if p := recover(); p != nil {
			o.err = zerr.With(domain.ErrTaskPanicked, "panic", fmt.Sprint(p))
			span.RecordError(o.err)
		}
	}()

	if task.Cacheable() {
		fresh, hash, err := r.s.lookup(task, r.plan.graph.Root(), r.noCache)
		if err != nil {
			span.RecordError(err)
			o.err = err
			return o
		}
		o.inputHash = hash
		if fresh {
			span.SetAttribute(ports.AttrCached, true)
			o.cached = true
			return o
		}
	}

	if err := r.s.executor.Execute(ctx, task, span, span); err != nil {
		span.RecordError(err)
		o.err = err
	}
	return o
}

func (r *run) settle(o outcome) {
	r.running--
	if !o.longRunning {
		r.finite--
	}

	switch {
	case o.err == nil:
		r.succeed(o)
	case o.longRunning && r.ctx.Err() != nil && errors.Is(o.err, context.Canceled):
		// Stopped by the operator, not failed.
		r.s.setStatus(o.name, StatusCompleted)
	default:
		failed := zerr.With(zerr.Wrap(o.err, domain.ErrTaskExecutionFailed.Error()), "task", o.name.String())
		r.failures = errors.Join(r.failures, failed)
		r.s.setStatus(o.name, StatusFailed)
	}
}

func (r *run) succeed(o outcome) {
	if o.cached {
		r.s.setStatus(o.name, StatusCached)
	} else {
		r.s.setStatus(o.name, StatusCompleted)
		r.record(o)
	}

	for _, next := range r.plan.graph.Dependents(o.name) {
		if _, ok := r.waiting[next]; !ok {
			continue
		}
		r.waiting[next]--
		if r.waiting[next] == 0 {
			r.queue = append(r.queue, next)
		}
	}
}

// record stores the hashes of a freshly built cacheable task. A failed write
// only costs a cache miss next time.
func (r *run) record(o outcome) {
	task := r.plan.tasks[o.name]
	if !task.Cacheable() || o.inputHash == "" {
		return
	}

	root := r.plan.graph.Root()
	outputHash, err := r.s.hasher.ComputeOutputHash(domain.Strings(task.Outputs), root)
	if err != nil {
		return
	}
	_ = r.s.store.Put(root, domain.BuildInfo{
		TaskName:   o.name.String(),
		InputHash:  o.inputHash,
		OutputHash: outputHash,
		Timestamp:  time.Now(),
	})
}
