package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/TomasJani/bookshelf/messagebus"
)

const errorMessageAttribute = "error.message"

// TracingCollector starts one OpenTelemetry span per dispatched message.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a TracingCollector on tracer, usually taken from a TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan implements messagebus.TracingCollector.
func (c *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, messagebus.SpanContext) {
	ctx, span := c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(toAttributes(attrs)...),
	)

	return ctx, &SpanContext{span: span}
}

// FinishSpan implements messagebus.TracingCollector. Span contexts from other collectors are ignored.
func (c *TracingCollector) FinishSpan(spanCtx messagebus.SpanContext, status string, attrs map[string]string) {
	s, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	s.span.SetAttributes(toAttributes(attrs)...)
	s.setStatus(status, attrs[errorMessageAttribute])
	s.span.End()
}

var _ messagebus.TracingCollector = (*TracingCollector)(nil)

// SpanContext wraps an OpenTelemetry span.
type SpanContext struct {
	span trace.Span
}

// SetStatus implements messagebus.SpanContext.
func (s *SpanContext) SetStatus(status string) {
	s.setStatus(status, "")
}

// AddAttribute implements messagebus.SpanContext.
func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *SpanContext) setStatus(status, description string) {
	switch status {
	case "success":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		if description == "" {
			description = "handler failed"
		}

		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

var _ messagebus.SpanContext = (*SpanContext)(nil)

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}
