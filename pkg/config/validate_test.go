package config

import (
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("expected defaults to pass validation, got error: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		errorField string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too large", func(c *Config) { c.Port = 65536 }, "port"},
		{"threads zero", func(c *Config) { c.Threads = 0 }, "threads"},
		{"negative timeout", func(c *Config) { c.Timeout = -5 }, "timeout"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"huge header limit", func(c *Config) { c.Server.MaxHeaderBytes = 11 * 1024 * 1024 }, "server.max_header_bytes"},
		{"server name injection", func(c *Config) { c.Server.Name = "x\r\nSet-Cookie: a" }, "server.name"},
		{"zero head limit", func(c *Config) { c.Fetch.MaxHeadBytes = 0 }, "fetch.max_head_bytes"},
		{"negative body limit", func(c *Config) { c.Fetch.MaxBodyBytes = -1 }, "fetch.max_body_bytes"},
		{"user agent injection", func(c *Config) { c.Fetch.UserAgent = "a\nb" }, "fetch.user_agent"},
		{"journal backend", func(c *Config) { c.Journal.Enabled = true; c.Journal.Backend = "postgres" }, "journal.backend"},
		{"journal driver", func(c *Config) { c.Journal.Enabled = true; c.Journal.SQLite.Driver = "pgx" }, "journal.sqlite.driver"},
		{"journal schedule", func(c *Config) { c.Journal.Enabled = true; c.Journal.Retention.PruneSchedule = "every day" }, "journal.retention.prune_schedule"},
		{"logging level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }, "telemetry.logging.level"},
		{"logging format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Enabled = true; c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"tracing endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"tracing ratio", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"tracing sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errorField) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.errorField)
			}
		})
	}
}

func TestValidate_DisabledJournalIsNotChecked(t *testing.T) {
	cfg := Default()
	cfg.Journal.Backend = "postgres"

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled journal should not be validated: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(&Config{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}
