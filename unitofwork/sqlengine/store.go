package sqlengine

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/TomasJani/bookshelf/unitofwork/sqlengine/internal/adapters"
)

const (
	// DialectPostgres selects PostgreSQL SQL and RETURNING clauses for generated ids.
	DialectPostgres = "postgres"

	// DialectSQLite selects SQLite SQL and LastInsertId for generated ids.
	DialectSQLite = "sqlite3"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Store creates SQL-backed units of work on one connection pool.
type Store struct {
	db               adapters.DBAdapter
	dialect          string
	builder          goqu.DialectWrapper
	logger           Logger
	contextualLogger ContextualLogger
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:      db,
		dialect: DialectPostgres,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.builder = goqu.Dialect(s.dialect)

	return s, nil
}

// Dialect returns the configured SQL dialect.
func (s *Store) Dialect() string {
	return s.dialect
}

// UnitOfWork returns a new, unopened unit of work bound to this Store.
func (s *Store) UnitOfWork() *UnitOfWork {
	return newUnitOfWork(s)
}

// EnsureSchema creates the bookshelf tables and indexes if they do not exist yet. It runs in one transaction.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements, err := s.schemaStatements()
	if err != nil {
		return errors.Join(ErrSchemaFailed, err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError(ctx, logMsgBeginFailed, err)
		return errors.Join(ErrBeginFailed, err)
	}

	for _, statement := range statements {
		start := time.Now()

		if _, err = tx.Exec(ctx, statement); err != nil {
			s.logError(ctx, logMsgSchemaFailed, err, logAttrQuery, statement)
			return errors.Join(ErrSchemaFailed, err, tx.Rollback(ctx))
		}

		s.logQueryWithDuration(ctx, statement, logActionSchema, time.Since(start))
	}

	if err = tx.Commit(ctx); err != nil {
		s.logError(ctx, logMsgCommitFailed, err)
		return errors.Join(ErrSchemaFailed, ErrCommitFailed, err)
	}

	s.logOperation(ctx, logActionSchema, logAttrStatementCount, len(statements))

	return nil
}

func (s *Store) schemaStatements() ([]string, error) {
	file := "schema/postgres.sql"
	if s.dialect == DialectSQLite {
		file = "schema/sqlite.sql"
	}

	ddl, err := schemaFiles.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var statements []string

	for _, statement := range strings.Split(string(ddl), ";") {
		if statement = strings.TrimSpace(statement); statement != "" {
			statements = append(statements, statement)
		}
	}

	return statements, nil
}
