package oteladapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine"
)

// SlogBridgeLogger logs through the otelslog bridge, which adds trace correlation to every record.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a SlogBridgeLogger for the instrumentation scope name.
// Without options the global LoggerProvider is used.
func NewSlogBridgeLogger(name string, options ...otelslog.Option) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name, options...)}
}

// NewTeeLogger creates a SlogBridgeLogger that also writes every record to handler.
func NewTeeLogger(name string, handler slog.Handler, options ...otelslog.Option) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(teeHandler{otelslog.NewHandler(name, options...), handler})}
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// teeHandler hands each record to every handler that is enabled for its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}

		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make(teeHandler, len(t))
	for i, h := range t {
		handlers[i] = h.WithAttrs(attrs)
	}

	return handlers
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	handlers := make(teeHandler, len(t))
	for i, h := range t {
		handlers[i] = h.WithGroup(name)
	}

	return handlers
}

// RecordLogger emits records directly to an OpenTelemetry log.Logger.
// Arguments are slog-style key/value pairs; a trailing key without a value is dropped.
type RecordLogger struct {
	logger log.Logger
}

// NewRecordLogger creates a RecordLogger on logger.
func NewRecordLogger(logger log.Logger) *RecordLogger {
	return &RecordLogger{logger: logger}
}

func (l *RecordLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args)
}

func (l *RecordLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args)
}

func (l *RecordLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args)
}

func (l *RecordLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args)
}

func (l *RecordLogger) emit(ctx context.Context, severity log.Severity, msg string, args []any) {
	var record log.Record

	record.SetTimestamp(time.Now())
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		record.AddAttributes(log.KeyValue{Key: key, Value: toLogValue(args[i+1])})
	}

	l.logger.Emit(ctx, record)
}

func toLogValue(v any) log.Value {
	switch value := v.(type) {
	case string:
		return log.StringValue(value)
	case int:
		return log.IntValue(value)
	case int64:
		return log.Int64Value(value)
	case float64:
		return log.Float64Value(value)
	case bool:
		return log.BoolValue(value)
	case error:
		return log.StringValue(value.Error())
	case fmt.Stringer:
		return log.StringValue(value.String())
	default:
		return log.StringValue(slog.AnyValue(value).String())
	}
}

var (
	_ messagebus.ContextualLogger = (*SlogBridgeLogger)(nil)
	_ sqlengine.ContextualLogger  = (*SlogBridgeLogger)(nil)
	_ messagebus.ContextualLogger = (*RecordLogger)(nil)
	_ sqlengine.ContextualLogger  = (*RecordLogger)(nil)
)
