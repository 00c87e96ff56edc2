package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/fetch"
	"humblerss/rssproxy/pkg/uri"
)

// DefaultMaxHosts bounds the number of distinct upstream host label values.
const DefaultMaxHosts = 1000

// OtherHost is the host label used once the host limit is reached.
const OtherHost = "other"

// Collector owns every Prometheus metric the proxy exports.
//
// It satisfies fetch.Observer and server.Observer, so it can be handed
// directly to the fetch client and the listener. When the configuration
// disables metrics every Record method returns immediately.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	connectionMetrics *ConnectionMetrics
	fetchMetrics      *FetchMetrics
	feedMetrics       *FeedMetrics

	hostLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "rssproxy"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.FetchDurationBuckets) == 0 {
		cfg.FetchDurationBuckets = append([]float64(nil), config.DefaultFetchDurationBuckets...)
	}

	return &Collector{
		config:            cfg,
		registry:          registry,
		connectionMetrics: NewConnectionMetrics(cfg, registry),
		fetchMetrics:      NewFetchMetrics(cfg, registry),
		feedMetrics:       NewFeedMetrics(cfg, registry),
		hostLimiter:       NewCardinalityLimiter(DefaultMaxHosts),
	}
}

// ObserveFetch records a completed upstream fetch.
func (c *Collector) ObserveFetch(r fetch.Result) {
	if !c.config.Enabled {
		return
	}

	host := strings.ToLower(uri.Parse(r.Target).Host)
	if host == "" || !c.hostLimiter.Allow(host) {
		host = OtherHost
	}

	status := 0
	size := 0
	if r.Response != nil {
		status = r.Response.StatusCode
		size = len(r.Response.Body)
	}
	c.fetchMetrics.Record(host, r.Reason.Outcome(), status, r.Duration, size)
}

// ConnectionOpened records an accepted inbound connection.
func (c *Collector) ConnectionOpened() {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.Opened()
}

// ConnectionClosed records the end of an inbound connection.
func (c *Collector) ConnectionClosed(d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.Closed(d)
}

// ConnectionDropped records a connection closed without a response.
// reason is one of "read", "panic" or "shutdown".
func (c *Collector) ConnectionDropped(reason string) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.Dropped(reason)
}

// ResponseWritten records a response sent to a client.
func (c *Collector) ResponseWritten(status, bytes int) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.Response(status, bytes)
}

// RecordTransform records one body transformation.
func (c *Collector) RecordTransform(ok bool, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.feedMetrics.RecordTransform(ok, d)
}

// JournalWritten records entries persisted by the journal.
func (c *Collector) JournalWritten(n int) {
	if !c.config.Enabled {
		return
	}
	c.feedMetrics.JournalWritten(n)
}

// JournalDropped records an entry the journal had to discard.
func (c *Collector) JournalDropped() {
	if !c.config.Enabled {
		return
	}
	c.feedMetrics.JournalDropped()
}

// JournalPruned records entries removed by retention.
func (c *Collector) JournalPruned(n int64) {
	if !c.config.Enabled {
		return
	}
	c.feedMetrics.JournalPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of unique values admitted for a label.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already known or still fits under the cap.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
