// Package config loads the bookshelf configuration from the environment and builds
// the database connections and OpenTelemetry providers it describes.
//
// Postgres can be reached through a pgx pool, a database/sql pool on lib/pq or sqlx;
// SQLite goes through the pure-Go modernc driver.
package config
