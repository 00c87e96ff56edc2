package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"humblerss/rssproxy/pkg/config"
)

// FeedMetrics tracks work done on fetched feeds after the exchange: the
// body transformation and the fetch journal.
type FeedMetrics struct {
	transforms        *prometheus.CounterVec
	transformDuration prometheus.Histogram

	journalEntries *prometheus.CounterVec
}

// NewFeedMetrics creates and registers feed metrics.
func NewFeedMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FeedMetrics {
	fm := &FeedMetrics{
		transforms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "transforms_total",
				Help:      "Feed transformations by result",
			},
			[]string{"result"},
		),
		transformDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "transform_duration_seconds",
			Help:      "Duration of feed transformations in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		journalEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_entries_total",
				Help:      "Fetch journal entries by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(fm.transforms, fm.transformDuration, fm.journalEntries)

	return fm
}

// RecordTransform records one transformation.
func (fm *FeedMetrics) RecordTransform(ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "unsupported"
	}
	fm.transforms.WithLabelValues(result).Inc()
	fm.transformDuration.Observe(d.Seconds())
}

// JournalWritten counts persisted entries.
func (fm *FeedMetrics) JournalWritten(n int) {
	fm.journalEntries.WithLabelValues("written").Add(float64(n))
}

// JournalDropped counts a discarded entry.
func (fm *FeedMetrics) JournalDropped() {
	fm.journalEntries.WithLabelValues("dropped").Inc()
}

// JournalPruned counts entries removed by retention.
func (fm *FeedMetrics) JournalPruned(n int64) {
	fm.journalEntries.WithLabelValues("pruned").Add(float64(n))
}
