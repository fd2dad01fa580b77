package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/pour/internal/adapters/telemetry"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, tp
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	sr, tp := setupRecorder()
	tracer := telemetry.NewOTelTracerFromProvider(tp, "test").WithRenderer(renderer)

	deps := map[string][]string{"default": {"styles", "scripts"}}
	renderer.EXPECT().OnPlanEmit([]string{"styles", "scripts", "default"}, deps, []string{"default"})

	ctx, root := tp.Tracer("test").Start(context.Background(), "run")
	tracer.EmitPlan(ctx, []string{"styles", "scripts", "default"}, deps, []string{"default"})
	root.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "plan_emitted", spans[0].Events()[0].Name)
}

func TestOTelTracer_EmitPlanWithoutSpan(t *testing.T) {
	sr, tp := setupRecorder()
	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	tracer.EmitPlan(context.Background(), []string{"styles"}, nil, []string{"styles"})
	assert.Empty(t, sr.Ended())
}

func TestOTelTracer_StartLongRunning(t *testing.T) {
	sr, tp := setupRecorder()
	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	_, span := tracer.Start(context.Background(), "serve", ports.WithLongRunning())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("pour.long_running", true))
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	sr, tp := setupRecorder()
	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	_, span := tracer.Start(context.Background(), "attr-test")
	span.SetAttribute("str", "val")
	span.SetAttribute("int", 123)
	span.SetAttribute("int64", int64(456))
	span.SetAttribute("float", 3.14)
	span.SetAttribute("bool", true)
	span.SetAttribute("slice", []string{"a", "b"})
	span.SetAttribute("unknown", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	attrs := make(map[string]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value
	}
	assert.Equal(t, "val", attrs["str"].AsString())
	assert.Equal(t, int64(123), attrs["int"].AsInt64())
	assert.Equal(t, int64(456), attrs["int64"].AsInt64())
	assert.InEpsilon(t, 3.14, attrs["float"].AsFloat64(), 0.001)
	assert.True(t, attrs["bool"].AsBool())
	assert.Equal(t, []string{"a", "b"}, attrs["slice"].AsStringSlice())
	assert.Equal(t, "{}", attrs["unknown"].AsString())
}

func TestOTelSpan_RecordError(t *testing.T) {
	sr, tp := setupRecorder()
	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	_, span := tracer.Start(context.Background(), "fail")
	span.RecordError(errors.New("boom"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	sr, tp := setupRecorder()
	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	_, span := tracer.Start(context.Background(), "log")
	n, err := span.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
	assert.Equal(t, "hello", events[0].Attributes[0].Value.AsString())
}

func TestOTelSpan_WriteStreamsToRenderer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		renderer := mocks.NewMockRenderer(ctrl)
		_, tp := setupRecorder()
		tracer := telemetry.NewOTelTracerFromProvider(tp, "test").WithRenderer(renderer)

		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("line one\nline two\n"))
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("tail"))

		_, span := tracer.Start(context.Background(), "log")
		_, err := span.Write([]byte("line one\n"))
		require.NoError(t, err)
		_, err = span.Write([]byte("line two\n"))
		require.NoError(t, err)

		time.Sleep(telemetry.DefaultBatchInterval)
		synctest.Wait()

		_, err = span.Write([]byte("tail"))
		require.NoError(t, err)
		span.End()
	})
}
