package httpwire

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Request is the start line of an inbound request. Header lines are read
// and discarded; the proxy never consults them.
type Request struct {
	Method  string
	URL     string
	Version string
}

// ParseRequestLine splits a request line on single spaces into method, URL
// and version. Missing tokens leave their fields empty; a line with more than
// three tokens leaves Version empty.
func ParseRequestLine(line string) Request {
	parts := strings.Split(line, " ")

	var req Request
	req.Method = parts[0]
	if len(parts) > 1 {
		req.URL = parts[1]
	}
	if len(parts) == 3 {
		req.Version = parts[2]
	}
	return req
}

// ReadRequestHead reads an inbound head through the terminating blank line
// and parses its request line. limit bounds the whole head; zero selects
// DefaultMaxHeadBytes.
func ReadRequestHead(br *bufio.Reader, limit int) (*Request, error) {
	hr := newHeadReader(br, limit)

	line, err := hr.readLine()
	if err != nil {
		return nil, err
	}

	var discard Header
	if err := hr.readHeaderLines(&discard); err != nil {
		return nil, err
	}

	req := ParseRequestLine(line)
	return &req, nil
}

// OutboundRequest is a request line plus the fixed header set sent upstream.
type OutboundRequest struct {
	Method string
	Host   string

	// Path is the request target; an empty path is sent as "/".
	Path string

	// UserAgent is sent when non-empty.
	UserAgent string
}

// Bytes serializes the request head.
func (r *OutboundRequest) Bytes() []byte {
	path := r.Path
	if path == "" {
		path = "/"
	}

	var b bytes.Buffer
	b.Grow(96 + len(path) + len(r.Host))
	b.WriteString(r.Method)
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteString(" " + ProtoHTTP11 + "\r\n")
	b.WriteString("Host: " + r.Host + "\r\n")
	if r.UserAgent != "" {
		b.WriteString("User-Agent: " + r.UserAgent + "\r\n")
	}
	b.WriteString("Accept: */*\r\n")
	b.WriteString("Connection: close\r\n\r\n")
	return b.Bytes()
}

// WriteTo writes the serialized request head to w.
func (r *OutboundRequest) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
