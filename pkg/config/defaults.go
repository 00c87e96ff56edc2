package config

import "time"

// Version is the release reported by the version command and the tracing
// resource. Overridden at build time with -ldflags.
var Version = "0.1.0"

// Default values for configuration fields.
const (
	// Original top-level defaults
	DefaultPort    = 8080
	DefaultThreads = 1
	DefaultTimeout = 1000 // milliseconds

	// Server defaults
	DefaultListenHost      = "0.0.0.0"
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultShutdownTimeout = 30 * time.Second
	DefaultServerName      = "HumbleRssProxy"

	// Fetch defaults
	DefaultFetchMaxHeadBytes = 1048576  // 1MB
	DefaultFetchMaxBodyBytes = 16 << 20 // 16MB

	// Journal defaults
	DefaultJournalBackend       = "sqlite"
	DefaultJournalSQLiteDriver  = "sqlite"
	DefaultJournalSQLitePath    = "data/journal.db"
	DefaultJournalMaxOpenConns  = 4
	DefaultJournalBusyTimeout   = 5 * time.Second
	DefaultJournalAsyncBuffer   = 1000
	DefaultJournalWriteTimeout  = 5 * time.Second
	DefaultJournalRetentionDays = 7
	DefaultJournalPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "console"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
	DefaultHealthPath           = "/health"
	DefaultReadyPath            = "/ready"
	DefaultMetricsNamespace     = "rssproxy"
	DefaultTracingSampler       = SamplerRatio
	DefaultTracingSampleRatio   = 0.1
	DefaultTracingExporter      = "otlp"
	DefaultTracingServiceName   = "rssproxy"
	DefaultTracingOTLPTimeout   = 10 * time.Second
)

// DefaultFetchDurationBuckets are the fetch duration histogram buckets in seconds.
var DefaultFetchDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Threads == 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Server defaults
	if cfg.Server.ListenHost == "" {
		cfg.Server.ListenHost = DefaultListenHost
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = DefaultServerName
	}

	// Fetch defaults
	if cfg.Fetch.MaxHeadBytes == 0 {
		cfg.Fetch.MaxHeadBytes = DefaultFetchMaxHeadBytes
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = DefaultFetchMaxBodyBytes
	}

	applyJournalDefaults(&cfg.Journal)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyJournalDefaults(cfg *JournalConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultJournalBackend
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultJournalSQLiteDriver
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.SQLite.MaxOpenConns == 0 {
		cfg.SQLite.MaxOpenConns = DefaultJournalMaxOpenConns
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.AsyncBuffer == 0 {
		cfg.AsyncBuffer = DefaultJournalAsyncBuffer
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultJournalWriteTimeout
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultJournalRetentionDays
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultJournalPruneSchedule
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.HealthPath == "" {
		cfg.Metrics.HealthPath = DefaultHealthPath
	}
	if cfg.Metrics.ReadyPath == "" {
		cfg.Metrics.ReadyPath = DefaultReadyPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.FetchDurationBuckets) == 0 {
		cfg.Metrics.FetchDurationBuckets = append([]float64(nil), DefaultFetchDurationBuckets...)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultTracingOTLPTimeout
	}
}
