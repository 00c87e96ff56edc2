package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"humblerss/rssproxy/pkg/config"
)

// ConnectionMetrics tracks inbound sessions.
//
// Metrics:
//   - rssproxy_connections_total: accepted connections
//   - rssproxy_connections_active: sessions currently open
//   - rssproxy_connections_dropped_total: sessions closed without a response, by reason
//   - rssproxy_connection_duration_seconds: session lifetime
//   - rssproxy_responses_total: responses written, by status code
//   - rssproxy_response_size_bytes: bytes written per response
type ConnectionMetrics struct {
	total    prometheus.Counter
	active   prometheus.Gauge
	dropped  *prometheus.CounterVec
	duration prometheus.Histogram

	responses    *prometheus.CounterVec
	responseSize prometheus.Histogram
}

// NewConnectionMetrics creates and registers connection metrics.
func NewConnectionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConnectionMetrics {
	cm := &ConnectionMetrics{
		total: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_total",
			Help:      "Total number of accepted inbound connections",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_active",
			Help:      "Number of inbound connections currently open",
		}),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connections_dropped_total",
				Help:      "Inbound connections closed without a response",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connection_duration_seconds",
			Help:      "Lifetime of inbound connections in seconds",
			Buckets:   cfg.FetchDurationBuckets,
		}),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "responses_total",
				Help:      "Responses written to clients by status code",
			},
			[]string{"code"},
		),
		responseSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "response_size_bytes",
			Help:      "Size of responses written to clients in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 9), // 256B to 16MB
		}),
	}

	registry.MustRegister(
		cm.total,
		cm.active,
		cm.dropped,
		cm.duration,
		cm.responses,
		cm.responseSize,
	)

	return cm
}

// Opened counts a new session.
func (cm *ConnectionMetrics) Opened() {
	cm.total.Inc()
	cm.active.Inc()
}

// Closed ends a session.
func (cm *ConnectionMetrics) Closed(d time.Duration) {
	cm.active.Dec()
	cm.duration.Observe(d.Seconds())
}

// Dropped counts a session that ended without a response.
func (cm *ConnectionMetrics) Dropped(reason string) {
	cm.dropped.WithLabelValues(reason).Inc()
}

// Response counts a written response.
func (cm *ConnectionMetrics) Response(status, bytes int) {
	cm.responses.WithLabelValues(strconv.Itoa(status)).Inc()
	cm.responseSize.Observe(float64(bytes))
}
