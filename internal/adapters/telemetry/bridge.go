package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/pour/internal/core/ports"
)

// errTaskFailed stands in for failures recorded without a description.
var errTaskFailed = errors.New("task failed")

// Bridge is a span processor that turns task spans into renderer events.
// Spans are identified by their hex span ID.
type Bridge struct {
	renderer ports.Renderer
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a Bridge feeding renderer. A nil renderer drops every event.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports the start of a task and the span it was started under.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := b.id(s.SpanContext())
	if !ok {
		return
	}
	parentID, _ := b.id(trace.SpanContextFromContext(parent))
	b.renderer.OnTaskStart(id, parentID, s.Name(), s.StartTime())
}

// OnEnd reports how a task finished.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	id, ok := b.id(s.SpanContext())
	if !ok {
		return
	}
	b.renderer.OnTaskComplete(id, s.EndTime(), failure(s.Status()), cached(s))
}

// ForceFlush has nothing to flush; events are forwarded as they happen.
func (b *Bridge) ForceFlush(context.Context) error { return nil }

// Shutdown leaves the renderer running; its owner stops it.
func (b *Bridge) Shutdown(context.Context) error { return nil }

func (b *Bridge) id(sc trace.SpanContext) (string, bool) {
	if b.renderer == nil || !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

func failure(status sdktrace.Status) error {
	if status.Code != codes.Error {
		return nil
	}
	if status.Description == "" {
		return errTaskFailed
	}
	return errors.New(status.Description)
}

func cached(s sdktrace.ReadOnlySpan) bool {
	for _, kv := range s.Attributes() {
		if kv.Key == ports.AttrCached {
			return kv.Value.AsBool()
		}
	}
	return false
}
