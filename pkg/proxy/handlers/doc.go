// Package handlers provides the request handlers served by the proxy.
//
// FeedHandler is the proxy's only endpoint:
//
//	GET /?url=<percent-encoded target> HTTP/1.1
//
// Requests are checked in order: a method other than GET is answered with
// 501, a version other than HTTP/1.1 with 505 and a target without the
// "/?url=" prefix with 501. Otherwise the target is fetched with a fresh
// fetch.Client under the current timeout.
//
//   - An upstream status other than 200 is relayed as is. Every upstream
//     failure (DNS, connect, timeout, protocol) arrives as 434.
//   - A 200 body is passed through the transform. A body the transform
//     rejects is answered with 415 and no body.
//   - A transformed body is sent with Content-Type
//     "application/json; charset=utf-8" and its Content-Length.
//
// The timeout can be changed at runtime with SetTimeout; the config watcher
// does this when the configuration file changes.
package handlers
