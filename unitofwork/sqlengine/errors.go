package sqlengine

import "errors"

// ErrNilDatabaseConnection is returned when a Store is created without a connection pool.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrUnsupportedDialect is returned by WithDialect for dialects other than postgres and sqlite3.
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")

// ErrBeginFailed is joined with the driver error when a transaction cannot be started.
var ErrBeginFailed = errors.New("begin transaction failed")

// ErrQueryFailed is joined with the driver error when loading an aggregate fails.
var ErrQueryFailed = errors.New("query failed")

// ErrFlushFailed is joined with the driver error when writing staged changes fails.
var ErrFlushFailed = errors.New("flush failed")

// ErrCommitFailed is joined with the driver error when the transaction cannot be committed.
var ErrCommitFailed = errors.New("commit failed")

// ErrRollbackFailed is joined with the driver error when the transaction cannot be rolled back.
var ErrRollbackFailed = errors.New("rollback failed")

// ErrSchemaFailed is joined with the driver error when EnsureSchema cannot create the tables.
var ErrSchemaFailed = errors.New("ensure schema failed")

// ErrBuildQueryFailed is joined with the goqu error when a statement cannot be rendered.
var ErrBuildQueryFailed = errors.New("build query failed")
