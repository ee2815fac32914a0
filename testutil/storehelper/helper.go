package storehelper

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/TomasJani/bookshelf/unitofwork/sqlengine"
)

// PostgresDSNEnv names the variable that enables tests against a real PostgreSQL server.
const PostgresDSNEnv = "BOOKSHELF_TEST_POSTGRES_DSN"

// GivenSQLiteDB opens a SQLite database in a temp dir that is removed after the test.
func GivenSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "bookshelf.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "error in arranging test data")

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// GivenSQLiteStore returns a Store with the schema created on a fresh SQLite database, plus the database for
// direct assertions.
func GivenSQLiteStore(t testing.TB, options ...sqlengine.Option) (*sqlengine.Store, *sql.DB) {
	t.Helper()

	db := GivenSQLiteDB(t)

	store, err := sqlengine.NewStoreFromSQLDB(db, append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)...)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, store.EnsureSchema(context.Background()), "error in arranging test data")

	return store, db
}

// GivenSQLiteStoreViaSQLX is GivenSQLiteStore going through the sqlx adapter.
func GivenSQLiteStoreViaSQLX(t testing.TB, options ...sqlengine.Option) (*sqlengine.Store, *sql.DB) {
	t.Helper()

	db := GivenSQLiteDB(t)

	store, err := sqlengine.NewStoreFromSQLX(sqlx.NewDb(db, "sqlite"), append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)...)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, store.EnsureSchema(context.Background()), "error in arranging test data")

	return store, db
}

// GivenPostgresStore returns a Store on the PostgreSQL server named by PostgresDSNEnv with all tables emptied.
// The test is skipped when the variable is not set.
func GivenPostgresStore(t testing.TB, options ...sqlengine.Option) *sqlengine.Store {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", PostgresDSNEnv)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(pool.Close)

	store, err := sqlengine.NewStoreFromPGXPool(pool, options...)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, store.EnsureSchema(ctx), "error in arranging test data")

	_, err = pool.Exec(ctx, "TRUNCATE map_book_to_author, books, authors, editions, users RESTART IDENTITY")
	require.NoError(t, err, "error in cleaning up the tables")

	return store
}

// CountRows returns the number of rows in table, optionally restricted by where expressions.
func CountRows(t testing.TB, db *sql.DB, table string, where ...goqu.Expression) int {
	t.Helper()

	query, _, err := goqu.Dialect(sqlengine.DialectSQLite).From(table).Select(goqu.COUNT("*")).Where(where...).ToSQL()
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(query).Scan(&count))

	return count
}
