package oteladapters_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/TomasJani/bookshelf/oteladapters"
)

type recordingLogger struct {
	noop.Logger
	records  []log.Record
	contexts []context.Context
}

func (l *recordingLogger) Emit(ctx context.Context, record log.Record) {
	l.records = append(l.records, record)
	l.contexts = append(l.contexts, ctx)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

type recordingProvider struct {
	noop.LoggerProvider
	logger *recordingLogger
}

func (p recordingProvider) Logger(string, ...log.LoggerOption) log.Logger {
	return p.logger
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_RecordLogger_EmitsTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewRecordLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "command handler returned an error",
		"message_name", "CreateUser",
		"events_collected", 2,
		"duration_ms", 1.5,
		"error", errors.New("already exists"),
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "command handler returned an error", record.Body().AsString())

	attrs := attributesOf(record)
	assert.Len(t, attrs, 4)
	assert.Equal(t, "CreateUser", attrs["message_name"].AsString())
	assert.Equal(t, int64(2), attrs["events_collected"].AsInt64())
	assert.InDelta(t, 1.5, attrs["duration_ms"].AsFloat64(), 0.0001)
	assert.Equal(t, "already exists", attrs["error"].AsString())
}

func Test_RecordLogger_MapsSeverities(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewRecordLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.ErrorContext(ctx, "e")

	// assert
	require.Len(t, recorder.records, 3)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[2].Severity())
}

func Test_SlogBridgeLogger_CorrelatesWithActiveSpan(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewSlogBridgeLogger("bookshelf-test",
		otelslog.WithLoggerProvider(recordingProvider{logger: recorder}))

	provider := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	ctx, span := provider.Tracer("bookshelf-test").Start(context.Background(), "messagebus.command")
	defer span.End()

	// act
	logger.InfoContext(ctx, "handled command", "message_name", "CreateAuthor")

	// assert
	require.Len(t, recorder.records, 1)
	assert.Equal(t, "handled command", recorder.records[0].Body().AsString())
	assert.Equal(t, "CreateAuthor", attributesOf(recorder.records[0])["message_name"].AsString())
	assert.Equal(t, span.SpanContext(), trace.SpanContextFromContext(recorder.contexts[0]))
}

func Test_TeeLogger_WritesToBridgeAndLocalHandler(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	var buf bytes.Buffer
	local := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := oteladapters.NewTeeLogger("bookshelf-test", local,
		otelslog.WithLoggerProvider(recordingProvider{logger: recorder}))

	// act
	logger.ErrorContext(context.Background(), "event handler failed", "message_name", "NotifyNewAccount")
	logger.DebugContext(context.Background(), "below the local level")

	// assert
	require.Len(t, recorder.records, 2)
	assert.Equal(t, "event handler failed", recorder.records[0].Body().AsString())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), "exactly one json line is written")
	assert.Equal(t, "event handler failed", line["msg"])
	assert.Equal(t, "NotifyNewAccount", line["message_name"])
}

func Test_TeeLogger_KeepsLocalOutputWithoutLoggerProvider(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewTeeLogger("bookshelf-test", slog.NewJSONHandler(&buf, nil),
		otelslog.WithLoggerProvider(noop.NewLoggerProvider()))

	// act
	logger.WarnContext(context.Background(), "container close failed")

	// assert
	assert.Contains(t, buf.String(), "container close failed")
}
