// Package oteladapters implements the message bus and store observability interfaces on OpenTelemetry.
//
// TracingCollector and MetricsCollector wrap a trace.Tracer and a metric.Meter. SlogBridgeLogger routes
// structured logs through the otelslog bridge so that records carry the active trace and span ids.
// RecordLogger writes log records straight to an OpenTelemetry log.Logger.
package oteladapters
