// Package httpwire is the HTTP/1.1 message codec shared by the fetch client
// and the proxy server.
//
// It covers exactly what a single-exchange proxy needs:
//
//   - serializing an outbound GET head (fixed Accept: */* and Connection: close)
//   - reading an inbound request head and splitting its request line
//   - reading a response status line and header block
//   - deciding body framing (Content-Length or chunked)
//   - de-chunking a chunked body
//   - assembling the proxy's own responses
//
// # Framing
//
// DecideFraming evaluates, in order:
//
//  1. Content-Length > 0: read exactly that many bytes
//  2. Content-Length == 0: empty body
//  3. Transfer-Encoding: chunked (no Content-Length): de-chunk until the last chunk
//  4. anything else: malformed, the caller fails the exchange
//
// # Headers
//
// Header keeps keys exactly as received, last write wins, and remembers
// insertion order so assembled responses are deterministic.
package httpwire
