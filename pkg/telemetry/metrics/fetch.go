package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"humblerss/rssproxy/pkg/config"
)

// FetchMetrics tracks upstream exchanges.
//
// Metrics:
//   - rssproxy_fetches_total: fetches by upstream host, outcome and status
//   - rssproxy_fetch_duration_seconds: fetch duration by outcome
//   - rssproxy_fetch_body_bytes: upstream body size
type FetchMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	body     prometheus.Histogram
}

// NewFetchMetrics creates and registers fetch metrics.
func NewFetchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FetchMetrics {
	fm := &FetchMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetches_total",
				Help:      "Total number of upstream fetches",
			},
			[]string{"host", "outcome", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of upstream fetches in seconds",
				Buckets:   cfg.FetchDurationBuckets,
			},
			[]string{"outcome"},
		),
		body: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "fetch_body_bytes",
			Help:      "Size of upstream response bodies in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 9),
		}),
	}

	registry.MustRegister(fm.total, fm.duration, fm.body)

	return fm
}

// Record records one completed fetch.
func (fm *FetchMetrics) Record(host, outcome string, status int, d time.Duration, bodyBytes int) {
	fm.total.WithLabelValues(host, outcome, strconv.Itoa(status)).Inc()
	fm.duration.WithLabelValues(outcome).Observe(d.Seconds())
	if bodyBytes > 0 {
		fm.body.Observe(float64(bodyBytes))
	}
}
