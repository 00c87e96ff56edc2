package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/telemetry/health"
	"humblerss/rssproxy/pkg/telemetry/metrics"
)

// newTelemetryServer serves metrics and health probes on their own
// listener; the proxy port only speaks the proxy protocol.
func newTelemetryServer(cfg *config.MetricsConfig, collector *metrics.Collector, checker *health.Checker) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           telemetryRouter(cfg, collector, checker),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func telemetryRouter(cfg *config.MetricsConfig, collector *metrics.Collector, checker *health.Checker) *mux.Router {
	router := mux.NewRouter()
	router.Handle(cfg.Path, collector.Handler()).Methods(http.MethodGet)
	router.HandleFunc(cfg.HealthPath, checker.LivenessHandler()).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(cfg.ReadyPath, checker.ReadinessHandler()).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/version", health.VersionHandler(config.Version)).Methods(http.MethodGet)
	return router
}
