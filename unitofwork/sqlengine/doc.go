// Package sqlengine provides the relational Unit of Work.
//
// A Store wraps a connection pool (pgxpool.Pool, sql.DB or sqlx.DB) and mints one UnitOfWork per handler
// invocation. Each scope runs in a single transaction. Aggregates loaded or added in a scope live in an
// identity map; new aggregates and changed fields are written when the scope commits, in this order:
// editions with their books, authors with their books and author-book links, users.
//
// SQL is built with goqu for either the postgres or the sqlite3 dialect. The postgres dialect works with all
// three pool types; the sqlite3 dialect expects a sql.DB or sqlx.DB opened with a SQLite driver.
//
// EnsureSchema creates the tables idempotently from the DDL embedded for the chosen dialect.
package sqlengine
