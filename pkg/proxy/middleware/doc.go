// Package middleware provides server.Handler wrappers for cross-cutting
// concerns of the proxy.
//
// # Middleware Chain
//
//	handler = middleware.Chain(feed,
//	    middleware.RecoveryMiddleware,
//	    middleware.RequestIDMiddleware,
//	    middleware.LoggingMiddleware,
//	)
//
// The first middleware is the outermost:
//  1. RecoveryMiddleware: recover from panics, log the stack, drop the connection
//  2. RequestIDMiddleware: put the session id and trace id into the context
//  3. LoggingMiddleware: log method, URL, status and latency once the
//     response is sent
//
// Logging uses the default slog logger, which the run command replaces with
// the configured one, so context fields added by RequestIDMiddleware appear
// on every line.
package middleware
