package sqlengine

import (
	"context"
	"math"
	"time"
)

const (
	logMsgSQLExecuted     = "executed sql for: "
	logMsgOperation       = "unit of work operation: "
	logMsgBeginFailed     = "failed to begin transaction"
	logMsgQueryFailed     = "database query failed"
	logMsgFlushFailed     = "failed to flush staged changes"
	logMsgCommitFailed    = "failed to commit transaction"
	logMsgRollbackFailed  = "failed to roll back transaction"
	logMsgSchemaFailed    = "failed to ensure schema"
	logAttrError          = "error"
	logAttrQuery          = "query"
	logAttrDurationMS     = "duration_ms"
	logAttrTable          = "table"
	logAttrEditionsSeen   = "editions_seen"
	logAttrUsersSeen      = "users_seen"
	logAttrAuthorsSeen    = "authors_seen"
	logAttrStatementCount = "statement_count"
	logActionLoad         = "load"
	logActionInsert       = "insert"
	logActionUpdate       = "update"
	logActionCommit       = "commit"
	logActionRollback     = "rollback"
	logActionSchema       = "schema"
)

func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
