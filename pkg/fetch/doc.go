// Package fetch is the upstream HTTP/1.1 client.
//
// A Client performs exactly one exchange:
//
//	idle → resolving → connecting → sending → awaiting_headers → reading_body → done
//
// Every failure (resolution, connect, write, read, a non HTTP/1.1 reply,
// missing or short framing, oversized body, timeout, cancellation) completes
// the fetch with the 434 sentinel response. The failure Reason is reported
// on the Result for logs, metrics and the journal, but is never put on the
// wire.
//
// A non-200 status completes the fetch as soon as the head is read; its body
// is not consumed.
//
// # Usage
//
//	res := fetch.Get(ctx, fetch.Options{UserAgent: "rssproxy/0.1.0"}, "http://example.com/feed.xml", time.Second)
//	if res.Response.StatusCode == 200 {
//	    process(res.Response.Body)
//	}
package fetch
