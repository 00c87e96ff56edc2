package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
)

// captureLogs installs a JSON default logger for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
	}{
		{"ok", httpwire.StatusOK, `{"title":"x"}`, "INFO"},
		{"zero status logged as 200", 0, "", "INFO"},
		{"upstream unavailable", httpwire.StatusHostUnavailable, "", "WARN"},
		{"not implemented", httpwire.StatusNotImplemented, "", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			wrapped := LoggingMiddleware(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
				if GetStartTime(ctx).IsZero() {
					t.Error("start time missing from context")
				}
				res.StatusCode = tt.status
				res.Body = []byte(tt.body)
				respond(res)
				respond(res)
			}))

			calls := 0
			req := &httpwire.Request{Method: "GET", URL: "/?url=x", Version: "HTTP/1.1"}
			wrapped.Serve(context.Background(), req, &httpwire.Response{}, func(*httpwire.Response) { calls++ })

			if calls != 1 {
				t.Errorf("respond reached the server %d times, want 1", calls)
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != 1 {
				t.Fatalf("got %d log lines, want 1:\n%s", len(lines), buf.String())
			}

			var entry map[string]any
			if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
				t.Fatalf("invalid log line: %v", err)
			}

			wantStatus := tt.status
			if wantStatus == 0 {
				wantStatus = httpwire.StatusOK
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["status"] != float64(wantStatus) {
				t.Errorf("status = %v, want %d", entry["status"], wantStatus)
			}
			if entry["url"] != "/?url=x" {
				t.Errorf("url = %v", entry["url"])
			}
			if entry["bytes"] != float64(len(tt.body)) {
				t.Errorf("bytes = %v, want %d", entry["bytes"], len(tt.body))
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next server.Handler) server.Handler {
			return server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
				order = append(order, name)
				next.Serve(ctx, req, res, respond)
			})
		}
	}

	h := Chain(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.Serve(context.Background(), &httpwire.Request{}, &httpwire.Response{}, func(*httpwire.Response) {})

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("order = %s, want outer,inner,handler", got)
	}
}
