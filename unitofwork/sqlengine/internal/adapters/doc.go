// Package adapters lets the SQL unit of work run on pgxpool.Pool, sql.DB and sqlx.DB alike.
//
// Every unit-of-work scope runs in one transaction, so the adapters expose BeginTx and a DBTx that carries
// the query, exec, commit and rollback operations of that transaction.
package adapters
