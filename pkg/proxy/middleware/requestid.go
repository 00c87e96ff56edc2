package middleware

import (
	"context"

	"github.com/google/uuid"

	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
	"humblerss/rssproxy/pkg/telemetry/logging"
	"humblerss/rssproxy/pkg/telemetry/tracing"
)

// RequestIDMiddleware puts the session id and the current trace id into the
// context so every log line of the exchange carries them. Outside a server
// session a fresh id is generated.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next server.Handler) server.Handler {
	return server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
		var requestID string
		if sess := server.SessionFromContext(ctx); sess != nil {
			requestID = sess.ID()
		} else {
			requestID = uuid.NewString()
		}

		ctx = logging.WithSessionID(ctx, requestID)
		if traceID := tracing.TraceID(ctx); traceID != "" {
			ctx = logging.WithTraceID(ctx, traceID)
		}

		next.Serve(ctx, req, res, respond)
	})
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetSessionID(ctx)
}
