// Package uri parses and percent-encodes the target URIs of outbound fetches.
//
// The parser is deliberately small: it understands protocol://host[:port]/path?query
// and nothing else (no user info, no fragments, no IPv6 literals). The whole
// input is percent-decoded before it is split, so a target passed as
// "http%3A%2F%2Fexample.test%2Ffeed.xml" parses the same as its decoded form.
//
// # Usage
//
//	u := uri.Parse("http://Example.test:8080/feed.xml?lang=en")
//	// u.Protocol == "http", u.Host == "example.test", u.Port == "8080"
//	// u.Path == "/feed.xml", u.Query == "lang=en"
//
//	if u.Port == "" {
//	    u.SetPort("80")
//	}
//
// Encode and Decode round-trip: Decode(Encode(s)) == s for every byte string.
package uri
