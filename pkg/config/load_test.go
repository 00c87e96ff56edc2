package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_OriginalJSONFormat(t *testing.T) {
	path := writeConfig(t, `{"port": 8081, "threads": 4, "timeout": 250}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Port != 8081 || cfg.Threads != 4 || cfg.Timeout != 250 {
		t.Errorf("got port=%d threads=%d timeout=%d", cfg.Port, cfg.Threads, cfg.Timeout)
	}
	if cfg.FetchTimeout() != 250*time.Millisecond {
		t.Errorf("FetchTimeout() = %v", cfg.FetchTimeout())
	}
	if cfg.ListenAddress() != "0.0.0.0:8081" {
		t.Errorf("ListenAddress() = %q", cfg.ListenAddress())
	}
	if cfg.Server.Name != DefaultServerName {
		t.Errorf("expected default server name, got %q", cfg.Server.Name)
	}
	if cfg.Fetch.UserAgent != "" {
		t.Errorf("Fetch.UserAgent = %q, want empty by default", cfg.Fetch.UserAgent)
	}
}

func TestLoadConfig_Sections(t *testing.T) {
	path := writeConfig(t, `
port: 9000
threads: 2
timeout: 1500
server:
  listen_host: "127.0.0.1"
  read_timeout: "5s"
  name: "TestProxy"
fetch:
  max_body_bytes: 1024
journal:
  enabled: true
  backend: "memory"
telemetry:
  logging:
    level: "debug"
    format: "json"
  metrics:
    enabled: true
    listen_address: "127.0.0.1:9999"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.ListenAddress() != "127.0.0.1:9000" {
		t.Errorf("ListenAddress() = %q", cfg.ListenAddress())
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.Name != "TestProxy" {
		t.Errorf("Name = %q", cfg.Server.Name)
	}
	if cfg.Fetch.MaxBodyBytes != 1024 {
		t.Errorf("MaxBodyBytes = %d", cfg.Fetch.MaxBodyBytes)
	}
	if cfg.Fetch.MaxHeadBytes != DefaultFetchMaxHeadBytes {
		t.Errorf("MaxHeadBytes = %d, want default", cfg.Fetch.MaxHeadBytes)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Backend != "memory" {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("metrics path = %q", cfg.Telemetry.Metrics.Path)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := LoadConfig(writeConfig(t, "port: [1, 2")); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `{"port": 70000, "threads": -1}`))
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(verr.Errors) != 2 {
			t.Errorf("expected 2 field errors, got %v", verr.Errors)
		}
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"port": 8081, "threads": 4, "timeout": 250}`)

	t.Setenv("RSSPROXY_PORT", "9191")
	t.Setenv("RSSPROXY_TIMEOUT", "750")
	t.Setenv("RSSPROXY_SERVER_READ_TIMEOUT", "2s")
	t.Setenv("RSSPROXY_JOURNAL_ENABLED", "true")
	t.Setenv("RSSPROXY_JOURNAL_BACKEND", "memory")
	t.Setenv("RSSPROXY_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("RSSPROXY_THREADS", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want env override", cfg.Port)
	}
	if cfg.Timeout != 750 {
		t.Errorf("Timeout = %d, want env override", cfg.Timeout)
	}
	if cfg.Threads != 4 {
		t.Errorf("Threads = %d, unparsable env value must be ignored", cfg.Threads)
	}
	if cfg.Server.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Backend != "memory" {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("RSSPROXY_PORT", "8181")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Port != 8181 || cfg.Threads != DefaultThreads || cfg.Timeout != DefaultTimeout {
		t.Errorf("got port=%d threads=%d timeout=%d", cfg.Port, cfg.Threads, cfg.Timeout)
	}
}
