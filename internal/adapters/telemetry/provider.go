package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/pour/internal/core/ports"
)

// InstrumentationName is the tracer name used for task spans.
const InstrumentationName = "pour"

// OTelTracer implements ports.Tracer on top of OpenTelemetry.
type OTelTracer struct {
	tracer   trace.Tracer
	renderer ports.Renderer
}

// NewProvider returns a TracerProvider that reports every span to bridge.
func NewProvider(bridge *Bridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
}

// NewOTelTracerFromProvider creates a tracer bound to tp.
func NewOTelTracerFromProvider(tp trace.TracerProvider, name string) *OTelTracer {
	return &OTelTracer{tracer: tp.Tracer(name)}
}

// WithRenderer streams span output and plans to r.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.renderer = r
	return t
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Bool("pour.long_running", cfg.LongRunning),
	))

	s := &OTelSpan{span: span}
	if t.renderer != nil {
		spanID := span.SpanContext().SpanID().String()
		renderer := t.renderer
		s.batcher = NewBatcher(0, 0, func(data []byte) {
			renderer.OnTaskLog(spanID, data)
		})
	}
	return ctx, s
}

// EmitPlan records the plan on the current span and forwards it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, taskNames []string, deps map[string][]string, targets []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("tasks", taskNames),
			attribute.StringSlice("targets", targets),
		))
	}

	if t.renderer != nil {
		t.renderer.OnPlanEmit(taskNames, deps, targets)
	}
}

// OTelSpan implements ports.Span on top of an OpenTelemetry span.
type OTelSpan struct {
	span    trace.Span
	batcher *Batcher
}

// End flushes buffered output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span as failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write forwards task output to the renderer, or records it as a span event
// when no renderer is attached.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
