package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration structure for the RSS proxy.
//
// The top-level Port, Threads and Timeout keys are the historical JSON
// configuration format and are still accepted as-is. Everything else is
// grouped in sections.
type Config struct {
	// Port is the TCP port the proxy listens on.
	// Default: 8080
	Port int `yaml:"port"`

	// Threads is the number of worker threads that run connection and
	// fetch goroutines (applied as GOMAXPROCS).
	// Default: 1
	Threads int `yaml:"threads"`

	// Timeout is the upstream fetch timeout in milliseconds.
	// Default: 1000
	Timeout int `yaml:"timeout"`

	// Server contains listener and connection settings.
	Server ServerConfig `yaml:"server"`

	// Fetch contains upstream client limits.
	Fetch FetchConfig `yaml:"fetch"`

	// Journal contains configuration for the fetch journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the proxy listener.
type ServerConfig struct {
	// ListenHost is the interface to bind. Empty binds all IPv4 interfaces.
	// Default: "0.0.0.0"
	ListenHost string `yaml:"listen_host"`

	// ReadTimeout bounds reading an inbound request head.
	// Zero means no deadline.
	// Default: 0
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// MaxHeaderBytes caps the size of an inbound request head.
	// Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout is how long shutdown waits for in-flight connections
	// before closing them.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Name is sent in the Server header of every response.
	// Default: "HumbleRssProxy"
	Name string `yaml:"name"`
}

// FetchConfig contains limits for the upstream client.
type FetchConfig struct {
	// MaxHeadBytes caps the upstream status line plus headers.
	// Default: 1MB
	MaxHeadBytes int `yaml:"max_head_bytes"`

	// MaxBodyBytes caps the upstream body. Larger bodies fail the fetch.
	// Default: 16MB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// UserAgent, when set, adds a User-Agent header to upstream requests.
	// Default: "" (the head carries only Host, Accept and Connection)
	UserAgent string `yaml:"user_agent"`
}

// JournalConfig contains configuration for recording fetch outcomes.
type JournalConfig struct {
	// Enabled controls whether fetches are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage implementation.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the capacity of the recorder queue. Entries are
	// dropped when it is full.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention contains pruning configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Driver selects the database/sql driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode enables write-ahead logging.
	// Default: false
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains journal pruning configuration.
type RetentionConfig struct {
	// Days is how long entries are kept. Zero keeps entries forever.
	// Default: 7
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for the pruning job.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxEntries caps the number of stored entries. Zero means no cap.
	// Default: 0
	MaxEntries int64 `yaml:"max_entries"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credential-looking query parameters (token, key,
	// password, ...) in logged target URLs.
	// Default: false
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the metrics HTTP endpoint listens. The proxy
	// port speaks only the proxy protocol, so metrics need their own.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// HealthPath is the liveness endpoint served next to metrics.
	// Default: "/health"
	HealthPath string `yaml:"health_path"`

	// ReadyPath is the readiness endpoint served next to metrics.
	// Default: "/ready"
	ReadyPath string `yaml:"ready_path"`

	// Namespace is the metric name prefix.
	// Default: "rssproxy"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// FetchDurationBuckets defines histogram buckets for fetch duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	FetchDurationBuckets []float64 `yaml:"fetch_duration_buckets"`
}

// Values of TracingConfig.Sampler. Each decides for session spans only;
// fetch spans inherit the decision of the session they run in.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "rssproxy"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// ListenAddress returns the host:port the proxy binds.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Server.ListenHost, strconv.Itoa(c.Port))
}

// FetchTimeout returns Timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}
