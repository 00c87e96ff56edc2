// Package server implements the inbound side of the proxy: a raw TCP
// listener speaking just enough HTTP/1.1 to read one request line and write
// one response per connection.
//
// # Sessions
//
// Each accepted connection becomes a Session on its own goroutine. The
// session reads the request head (optionally under a read deadline), parses
// the request line, and invokes the Handler with an empty response and a
// RespondFunc. The first call to respond assembles the response, writes it
// and closes the connection; later calls are ignored. A connection whose
// head cannot be read is closed without a response.
//
//	h := server.HandlerFunc(func(ctx context.Context, req *httpwire.Request, res *httpwire.Response, respond server.RespondFunc) {
//	    res.StatusCode = httpwire.StatusNotImplemented
//	    respond(res)
//	})
//	srv := server.New(cfg, h, server.Options{Observer: collector})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Shutdown closes the listener, waits for open sessions up to the configured
// shutdown timeout, then cancels the remaining handler contexts and closes
// their connections. Serve shuts down on context cancellation, on Stop, or
// on any signal listed in Options.Signals.
package server
