package middleware

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
	"humblerss/rssproxy/pkg/telemetry/logging"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen []string
	wrapped := RequestIDMiddleware(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
		seen = append(seen, GetRequestID(ctx))
		respond(res)
	}))

	serve := func(ctx context.Context) {
		wrapped.Serve(ctx, &httpwire.Request{}, &httpwire.Response{}, func(*httpwire.Response) {})
	}

	t.Run("generates request ID outside a session", func(t *testing.T) {
		seen = nil
		serve(context.Background())

		if len(seen) != 1 || len(seen[0]) != 36 {
			t.Errorf("request ID = %v, want a UUID", seen)
		}
	})

	t.Run("generates unique IDs for different requests", func(t *testing.T) {
		seen = nil
		serve(context.Background())
		serve(context.Background())

		if seen[0] == seen[1] {
			t.Errorf("request IDs should be unique, got %s twice", seen[0])
		}
	})

	t.Run("copies the trace ID", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		var got string
		RequestIDMiddleware(server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
			got = logging.GetTraceID(ctx)
		})).Serve(ctx, &httpwire.Request{}, &httpwire.Response{}, func(*httpwire.Response) {})

		if got != traceID.String() {
			t.Errorf("trace ID = %q, want %q", got, traceID.String())
		}
	})
}

func TestGetRequestID_Empty(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
