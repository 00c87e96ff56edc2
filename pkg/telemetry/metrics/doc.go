// Package metrics provides Prometheus metrics for the proxy.
//
// # Metrics Categories
//
//   - Connection Metrics: accepted, active and dropped inbound sessions,
//     responses by status code
//   - Fetch Metrics: upstream fetches by host and outcome, duration, body size
//   - Feed Metrics: transformation results and fetch journal throughput
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// The collector is a fetch.Observer and a server.Observer.
//	opts := fetch.Options{Observers: []fetch.Observer{collector}}
//
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// # Cardinality Management
//
// Upstream hosts are user supplied, so the host label admits at most
// DefaultMaxHosts distinct values. Later hosts are counted as "other".
package metrics
