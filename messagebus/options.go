package messagebus

import (
	"context"
	"time"
)

// Logger interface for message dispatch logging: payloads at debug level, handled messages at info level,
// failed event handlers at error level.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for dispatch durations and counters.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
// The bus uses them when the configured collector implements this interface.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for one span per handled command and per event handler invocation.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// Option defines a functional option for configuring MessageBus.
type Option func(*MessageBus) error

// WithLogger sets the logger for the MessageBus.
func WithLogger(logger Logger) Option {
	return func(b *MessageBus) error {
		b.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the MessageBus. It is preferred over the Logger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(b *MessageBus) error {
		b.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the MessageBus.
func WithMetrics(collector MetricsCollector) Option {
	return func(b *MessageBus) error {
		b.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the MessageBus.
func WithTracing(collector TracingCollector) Option {
	return func(b *MessageBus) error {
		b.tracingCollector = collector
		return nil
	}
}
