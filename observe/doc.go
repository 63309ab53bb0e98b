// Package observe provides telemetry for the cache layer: a structured
// JSON logger with optional file rotation, OpenTelemetry metrics for
// cache activity (hits, misses, evictions, persistence), and an
// Observer facade wiring tracing and metrics providers to configurable
// exporters.
package observe
