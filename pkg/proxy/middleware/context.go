package middleware

import (
	"context"
	"time"

	"humblerss/rssproxy/pkg/server"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// StartTimeKey stores the time the handler chain was entered.
const StartTimeKey contextKey = "start_time"

// Middleware wraps a server.Handler.
type Middleware func(server.Handler) server.Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h server.Handler, mws ...Middleware) server.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// GetStartTime extracts the request start time from the context.
// Returns zero time if not found.
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}
