package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// SessionIDKey is the context key for inbound connection ids.
	SessionIDKey contextKey = "session_id"

	// FetchIDKey is the context key for upstream fetch ids.
	FetchIDKey contextKey = "fetch_id"

	// TargetKey is the context key for the decoded upstream URL.
	TargetKey contextKey = "target"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

// WithSessionID adds a session ID to the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// GetSessionID retrieves the session ID from the context.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

// WithFetchID adds a fetch ID to the context.
func WithFetchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, FetchIDKey, id)
}

// GetFetchID retrieves the fetch ID from the context.
func GetFetchID(ctx context.Context) string {
	if id, ok := ctx.Value(FetchIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTarget adds the upstream target to the context.
func WithTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, TargetKey, target)
}

// GetTarget retrieves the upstream target from the context.
func GetTarget(ctx context.Context) string {
	if target, ok := ctx.Value(TargetKey).(string); ok {
		return target
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if id := GetSessionID(ctx); id != "" {
		fields = append(fields, string(SessionIDKey), id)
	}
	if id := GetFetchID(ctx); id != "" {
		fields = append(fields, string(FetchIDKey), id)
	}
	if target := GetTarget(ctx); target != "" {
		fields = append(fields, string(TargetKey), target)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, string(TraceIDKey), traceID)
	}

	return fields
}

// ContextHandler is a slog.Handler that adds the context fields above to
// every record logged with a *Context method.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if fields := extractContextFields(ctx); len(fields) > 0 {
			r.Add(fields...)
		}
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
