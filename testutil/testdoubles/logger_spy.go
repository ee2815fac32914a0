package testdoubles

import (
	"context"
	"sync"

	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/notification"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine"
)

// Log levels recorded by LoggerSpy.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value logged under key.
func (r LogRecord) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// LoggerSpy captures calls to both the plain and the contextual logger interfaces.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLoggerSpy creates an empty LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

func (s *LoggerSpy) Debug(msg string, args ...any) {
	s.record(context.Background(), LevelDebug, msg, args)
}

func (s *LoggerSpy) Info(msg string, args ...any) {
	s.record(context.Background(), LevelInfo, msg, args)
}

func (s *LoggerSpy) Warn(msg string, args ...any) {
	s.record(context.Background(), LevelWarn, msg, args)
}

func (s *LoggerSpy) Error(msg string, args ...any) {
	s.record(context.Background(), LevelError, msg, args)
}

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelDebug, msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelInfo, msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelWarn, msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelError, msg, args)
}

// Records returns a copy of the captured records at the given level, or of all records for an empty level.
func (s *LoggerSpy) Records(level string) []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []LogRecord

	for _, record := range s.records {
		if level == "" || record.Level == level {
			out = append(out, record)
		}
	}

	return out
}

// HasLog checks if a record with the level and message exists.
func (s *LoggerSpy) HasLog(level, message string) bool {
	for _, record := range s.Records(level) {
		if record.Message == message {
			return true
		}
	}

	return false
}

// Reset clears all captured records.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

var (
	_ messagebus.Logger           = (*LoggerSpy)(nil)
	_ messagebus.ContextualLogger = (*LoggerSpy)(nil)
	_ sqlengine.Logger            = (*LoggerSpy)(nil)
	_ sqlengine.ContextualLogger  = (*LoggerSpy)(nil)
	_ notification.Logger         = (*LoggerSpy)(nil)
)
