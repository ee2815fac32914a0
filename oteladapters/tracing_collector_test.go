package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/oteladapters"
	"github.com/TomasJani/bookshelf/services"
)

func givenTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return provider.Tracer("bookshelf-test"), exporter
}

func Test_TracingCollector_FinishSpan_Success(t *testing.T) {
	// arrange
	tracer, exporter := givenTracer(t)
	collector := oteladapters.NewTracingCollector(tracer)

	// act
	_, span := collector.StartSpan(context.Background(), "messagebus.command", map[string]string{"message.name": "CreateAuthor"})
	collector.FinishSpan(span, "success", map[string]string{"events.collected": "0"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "messagebus.command", spans[0].Name)
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "message.name", "CreateAuthor")
	assertSpanHasAttribute(t, spans[0], "events.collected", "0")
}

func Test_TracingCollector_FinishSpan_ErrorUsesErrorMessage(t *testing.T) {
	// arrange
	tracer, exporter := givenTracer(t)
	collector := oteladapters.NewTracingCollector(tracer)

	// act
	_, span := collector.StartSpan(context.Background(), "messagebus.command", nil)
	collector.FinishSpan(span, "error", map[string]string{"error.message": "already exists"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "already exists", spans[0].Status.Description)
}

func Test_TracingCollector_FinishSpan_UnknownStatusBecomesAttribute(t *testing.T) {
	// arrange
	tracer, exporter := givenTracer(t)
	collector := oteladapters.NewTracingCollector(tracer)

	// act
	_, span := collector.StartSpan(context.Background(), "messagebus.event", nil)
	collector.FinishSpan(span, "skipped", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "status", "skipped")
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContext(t *testing.T) {
	// arrange
	tracer, exporter := givenTracer(t)
	collector := oteladapters.NewTracingCollector(tracer)

	// act + assert
	assert.NotPanics(t, func() { collector.FinishSpan(foreignSpan{}, "success", nil) })
	assert.Empty(t, exporter.GetSpans())
}

func Test_TracingCollector_NestsEventSpansUnderTheCaller(t *testing.T) {
	// arrange
	tracer, exporter := givenTracer(t)
	parentCtx, parent := tracer.Start(context.Background(), "request")

	registry, err := messagebus.NewRegistry(nil, messagebus.EventHandlers{
		domain.NotifyNewAccountEventType: {
			func(context.Context, domain.Event, *services.Container) error { return nil },
		},
	})
	require.NoError(t, err)

	bus, err := messagebus.NewMessageBus(registry, services.NewRegistry(),
		messagebus.WithTracing(oteladapters.NewTracingCollector(tracer)))
	require.NoError(t, err)

	// act
	err = bus.Handle(parentCtx, domain.BuildNotifyNewAccount("reader@example.com"))
	parent.End()

	// assert
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "messagebus.event", spans[0].Name)
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
	assertSpanHasAttribute(t, spans[0], "message.name", "NotifyNewAccount")
}

func Test_SpanContext_SetStatusAndAddAttribute(t *testing.T) {
	// arrange
	tracer, exporter := givenTracer(t)
	collector := oteladapters.NewTracingCollector(tracer)
	_, span := collector.StartSpan(context.Background(), "messagebus.command", nil)

	// act
	span.AddAttribute("correlation.id", "abc")
	span.SetStatus("error")
	collector.FinishSpan(span, "error", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "handler failed", spans[0].Status.Description)
	assertSpanHasAttribute(t, spans[0], "correlation.id", "abc")
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assert.Equal(t, expected, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("span %s has no attribute %s", span.Name, key)
}
