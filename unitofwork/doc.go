// Package unitofwork defines the transactional boundary used by the service layer.
//
// A UnitOfWork owns one storage session and one repository per aggregate kind bound to that session.
// It is used as a scope: Begin, work through the repositories, Commit (or not), and always End.
// Run wraps that sequence around a function.
//
// After a committed scope the message bus drains CollectNewEvents, which yields the events raised by every
// aggregate the scope's repositories have seen.
//
// Engines live in subpackages: sqlengine for relational databases and memoryengine for tests and local runs.
package unitofwork
