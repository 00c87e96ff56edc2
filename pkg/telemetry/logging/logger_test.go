package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"humblerss/rssproxy/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid JSON config", Config{Level: "info", Format: "json"}, false},
		{"valid text config", Config{Level: "debug", Format: "text"}, false},
		{"valid console config", Config{Level: "WARN", Format: "console"}, false},
		{"defaults", Config{}, false},
		{"invalid log level", Config{Level: "invalid", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "invalid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	logger, err := FromConfig(config.LoggingConfig{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if logger.Level() != slog.LevelError {
		t.Errorf("Level() = %v", logger.Level())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn were written: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warn and error messages: %s", out)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithFetchID(ctx, "fetch-1")
	ctx = WithTarget(ctx, "http://example.test/feed")
	logger.With("component", "test").InfoContext(ctx, "served", "status", 200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	want := map[string]any{
		"msg":        "served",
		"component":  "test",
		"session_id": "sess-1",
		"fetch_id":   "fetch-1",
		"target":     "http://example.test/feed",
		"status":     float64(200),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	if GetSessionID(ctx) != "" || GetFetchID(ctx) != "" || GetTarget(ctx) != "" || GetTraceID(ctx) != "" {
		t.Fatal("empty context must yield empty values")
	}

	ctx = WithTraceID(ctx, "abc")
	if GetTraceID(ctx) != "abc" {
		t.Errorf("GetTraceID() = %q", GetTraceID(ctx))
	}
	if fields := extractContextFields(ctx); len(fields) != 2 || fields[0] != "trace_id" {
		t.Errorf("extractContextFields() = %v", fields)
	}
}

func TestSlogDefaultIntegration(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().InfoContext(WithSessionID(context.Background(), "s-42"), "hello")
	if !strings.Contains(buf.String(), "session_id=s-42") {
		t.Errorf("session id missing from %q", buf.String())
	}
}
