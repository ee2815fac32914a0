// Package messagebus dispatches commands and events to their handlers.
//
// A command has exactly one handler and its error goes back to the caller. An event has any number of
// handlers; each runs even when a sibling fails, and failures are only logged and counted. After every
// successful handler the bus drains the events collected by the services the handler used (the unit of
// work) and queues them. Handle returns once the queue is empty.
//
// Observability follows the dependency-free pattern of Logger, ContextualLogger, MetricsCollector and
// TracingCollector; the oteladapters package implements them on OpenTelemetry.
package messagebus
