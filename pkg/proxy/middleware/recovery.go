package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
)

// RecoveryMiddleware recovers from panics in the handler chain. The panic
// is logged with its stack trace and the connection is dropped without a
// response; a session that already responded is left alone.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next server.Handler) server.Handler {
	return server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(ctx, "Panic in handler",
					"error", err,
					"method", req.Method,
					"url", req.URL,
					"stack", string(debug.Stack()),
				)

				if sess := server.SessionFromContext(ctx); sess != nil {
					sess.Abort()
				}
			}
		}()

		next.Serve(ctx, req, res, respond)
	})
}
