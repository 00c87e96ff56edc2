package server

import (
	"context"
	"time"

	"humblerss/rssproxy/pkg/httpwire"
)

// RespondFunc sends the response for a session and closes its connection.
// Only the first call has any effect. A zero StatusCode is sent as 200.
type RespondFunc func(res *httpwire.Response)

// Handler serves one inbound request. It may call respond before returning
// or later from any goroutine, but it must call it exactly once.
//
// ctx carries the Session (see SessionFromContext) and is cancelled when
// the server force-closes the connection during shutdown.
type Handler interface {
	Serve(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond RespondFunc)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond RespondFunc)

// Serve calls f.
func (f HandlerFunc) Serve(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond RespondFunc) {
	f(ctx, req, res, respond)
}

// Observer is told about the lifecycle of every session. The metrics
// collector implements it.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed(d time.Duration)
	ConnectionDropped(reason string)
	ResponseWritten(status, bytes int)
}

// Drop reasons passed to Observer.ConnectionDropped.
const (
	DropRead     = "read"
	DropPanic    = "panic"
	DropAborted  = "aborted"
	DropShutdown = "shutdown"
)

type nopObserver struct{}

func (nopObserver) ConnectionOpened() {}
func (nopObserver) ConnectionClosed(time.Duration) {}
func (nopObserver) ConnectionDropped(string) {}
func (nopObserver) ResponseWritten(int, int) {}
