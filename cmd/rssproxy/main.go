// rssproxy is an HTTP/1.1 proxy that fetches RSS feeds and returns them as
// JSON.
//
// A client asks for a feed with
//
//	GET /?url=http%3A%2F%2Fexample.com%2Frss HTTP/1.1
//
// and receives the channel and its items as a JSON document. Upstream
// failures and timeouts are answered with status 434.
//
// Usage:
//
//	# Start with defaults (port 8080, 1 thread, 1000ms timeout)
//	rssproxy
//
//	# Start from a config file and override the port
//	rssproxy --config config.json --port 9000
//
//	# Show the most recent journal entries
//	rssproxy journal tail --limit 20
//
//	# Show version information
//	rssproxy version
package main

func main() {
	Execute()
}
