// Package telemetry groups the observability packages of the proxy.
//
// # Components
//
//   - logging: slog setup, context fields (session, fetch, target) and
//     redaction of credential-looking query parameters
//   - metrics: Prometheus collectors for connections, fetches, transforms
//     and the journal
//   - tracing: OpenTelemetry tracer exporting over OTLP gRPC
//   - health: liveness and readiness probes
//
// # Usage
//
// The run command wires them together:
//
//	logger, _ := logging.FromConfig(cfg.Telemetry.Logging)
//	slog.SetDefault(logger.Slog())
//
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("listener", srv.Health)
//
// Metrics and probes are served on their own listener
// (telemetry.metrics.listen_address); the proxy port only speaks the proxy
// protocol.
package telemetry
