package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"humblerss/rssproxy/pkg/httpwire"
	"humblerss/rssproxy/pkg/server"
)

// LoggingMiddleware logs every exchange once its response is sent: method,
// URL, status, body size and latency. 434 and other 4xx responses are
// logged at warn level, 5xx at error level.
//
// Log format (JSON):
//
//	{
//	  "time": "2026-03-01T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "Request completed",
//	  "method": "GET",
//	  "url": "/?url=http%3A%2F%2Fexample.com%2Frss",
//	  "status": 200,
//	  "bytes": 5120,
//	  "latency_ms": 143,
//	  "session_id": "0b6f..."
//	}
func LoggingMiddleware(next server.Handler) server.Handler {
	return server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
		startTime := time.Now()
		ctx = context.WithValue(ctx, StartTimeKey, startTime)

		slog.DebugContext(ctx, "Request started",
			"method", req.Method,
			"url", req.URL,
			"version", req.Version,
		)

		logged := func(r *httpwire.Response) {
			status := httpwire.StatusOK
			size := 0
			if r != nil {
				if r.StatusCode != 0 {
					status = r.StatusCode
				}
				size = len(r.Body)
			}

			logLevel := slog.LevelInfo
			if status >= 500 {
				logLevel = slog.LevelError
			} else if status >= 400 {
				logLevel = slog.LevelWarn
			}

			slog.Log(ctx, logLevel, "Request completed",
				"method", req.Method,
				"url", req.URL,
				"status", status,
				"bytes", size,
				"latency_ms", time.Since(startTime).Milliseconds(),
			)
			respond(r)
		}

		next.Serve(ctx, req, res, onceRespond(logged))
	})
}

// onceRespond lets only the first call through, so repeated responds do not
// produce repeated log lines.
func onceRespond(respond server.RespondFunc) server.RespondFunc {
	var once sync.Once
	return func(r *httpwire.Response) {
		once.Do(func() { respond(r) })
	}
}
