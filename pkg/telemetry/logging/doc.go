// Package logging provides structured logging on top of log/slog.
//
// # Overview
//
//   - JSON, text and console formats
//   - Context fields (session_id, fetch_id, target, trace_id) added to any
//     record logged with a *Context method
//   - Optional masking of secrets in logged target URLs
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithSessionID(ctx, id)
//	slog.InfoContext(ctx, "Request served", "status", 200) // includes session_id
package logging
