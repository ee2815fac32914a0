package adapters

import (
	"context"
	"errors"
)

// ErrLastInsertIDUnsupported is returned by DBResult.LastInsertId for drivers that only report ids through
// RETURNING clauses.
var ErrLastInsertIDUnsupported = errors.New("last insert id is not supported by this driver")

// DBAdapter opens transactions on the underlying connection pool.
type DBAdapter interface {
	BeginTx(ctx context.Context) (DBTx, error)
}

// DBTx is one open transaction.
type DBTx interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows is a query result. It must be closed before the next statement runs on the same transaction.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult is the outcome of an exec statement.
type DBResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
