// Package memoryengine is an in-memory storage engine for the Unit of Work.
//
// A Database keeps rows shaped like the SQL schema. Units of work load aggregates from those rows and write
// them back atomically on commit, so nothing a scope stages is visible to other scopes before it commits and
// nothing survives a rollback. It backs the "memory" driver and the handler tests.
package memoryengine
