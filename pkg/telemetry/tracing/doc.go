// Package tracing provides OpenTelemetry tracing for the proxy.
//
// When enabled, New installs an SDK tracer provider exporting over OTLP gRPC
// as the global provider. Inbound sessions get a server span from this
// package's tracer; the fetch client starts its client spans from the global
// provider, so both end up in the same trace.
//
// # Sampling Strategies
//
//   - always: sample every trace
//   - never: sample nothing
//   - ratio: sample telemetry.tracing.sample_ratio of traces by trace ID
//
// All samplers respect the parent span's decision.
package tracing
