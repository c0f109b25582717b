// Package tracer configures OpenTelemetry tracing for the process.
//
// NewClient installs a global TracerProvider, so the spans opened by the
// postgres facade (postgres.execute_read, postgres.import_csv, ...) become
// children of the command span started with StartSpan. Export over OTLP/HTTP
// is enabled with TRACER_ENABLE_EXPORT; the collector endpoint follows the
// standard OTEL_EXPORTER_OTLP_ENDPOINT variable.
//
// A trace started by a parent process can be continued by passing its
// traceparent header through SetCarrierOnContext.
package tracer
