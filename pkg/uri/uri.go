package uri

import (
	"strings"
)

// URI is a decomposed absolute URI as used to target outbound fetches.
//
// Protocol and Host are always lowercase. Port is split off the host when the
// authority has the form host:port.
type URI struct {
	Protocol string
	Host     string
	Port     string
	Path     string
	Query    string
}

const protocolSeparator = "://"

// Parse percent-decodes raw and splits the result into its components.
//
// Parsing is permissive: input without "://" yields a URI whose Protocol holds
// the whole (lowercased) input and whose other fields are empty.
func Parse(raw string) URI {
	return parse(Decode(raw))
}

func parse(s string) URI {
	var u URI

	i := strings.Index(s, protocolSeparator)
	if i < 0 {
		u.Protocol = strings.ToLower(s)
		return u
	}
	u.Protocol = strings.ToLower(s[:i])
	rest := s[i+len(protocolSeparator):]

	hostEnd := strings.IndexByte(rest, '/')
	if hostEnd < 0 {
		hostEnd = len(rest)
	}
	u.Host = strings.ToLower(rest[:hostEnd])
	if p := strings.IndexByte(u.Host, ':'); p >= 0 {
		u.Port = u.Host[p+1:]
		u.Host = u.Host[:p]
	}

	rest = rest[hostEnd:]
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		u.Path = rest[:q]
		u.Query = rest[q+1:]
	} else {
		u.Path = rest
	}

	return u
}

// SetPort replaces the port component.
func (u *URI) SetPort(port string) {
	u.Port = port
}

// RequestTarget returns the origin-form target for a request line: the path,
// "/" when empty, followed by "?query" when a query is present. Unlike Path
// alone, this is what goes on the wire, so ?format=rss reaches the upstream.
func (u URI) RequestTarget() string {
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.Query == "" {
		return path
	}
	return path + "?" + u.Query
}

// String renders the URI back into its textual form without re-encoding.
func (u URI) String() string {
	if u.Host == "" && u.Path == "" && u.Query == "" {
		return u.Protocol
	}

	var sb strings.Builder
	sb.WriteString(u.Protocol)
	sb.WriteString(protocolSeparator)
	sb.WriteString(u.Host)
	if u.Port != "" {
		sb.WriteByte(':')
		sb.WriteString(u.Port)
	}
	sb.WriteString(u.Path)
	if u.Query != "" {
		sb.WriteByte('?')
		sb.WriteString(u.Query)
	}
	return sb.String()
}
