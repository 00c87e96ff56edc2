package httpwire

import (
	"bufio"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Response is the response shape shared by the fetch client and the server.
type Response struct {
	// Version is the full protocol token, e.g. "HTTP/1.1".
	Version string

	// StatusCode is 0 until set; the server renders 0 as 200.
	StatusCode int

	Header Header
	Body   []byte
}

// Unavailable returns the sentinel response that stands for every kind of
// upstream failure.
func Unavailable() *Response {
	return &Response{Version: ProtoHTTP11, StatusCode: StatusHostUnavailable}
}

// IsUnavailable reports whether r is the upstream failure sentinel.
func (r *Response) IsUnavailable() bool {
	return r.StatusCode == StatusHostUnavailable
}

// ReadResponseHead reads a status line and header block through the blank
// line. Only the first two tokens of the status line are kept. limit bounds
// the whole head; zero selects DefaultMaxHeadBytes.
func ReadResponseHead(br *bufio.Reader, limit int) (*Response, error) {
	hr := newHeadReader(br, limit)

	line, err := hr.readLine()
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, ErrMalformedStatus
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 0 {
		return nil, ErrMalformedStatus
	}
	res := &Response{Version: parts[0], StatusCode: code}

	if err := hr.readHeaderLines(&res.Header); err != nil {
		return nil, err
	}
	return res, nil
}

// Framing says how the extent of a response body is determined.
type Framing int

const (
	// FramingNone means the head carried no usable framing information.
	FramingNone Framing = iota

	// FramingEmpty means Content-Length: 0.
	FramingEmpty

	// FramingLength means a positive Content-Length.
	FramingLength

	// FramingChunked means Transfer-Encoding: chunked without Content-Length.
	FramingChunked
)

func (f Framing) String() string {
	switch f {
	case FramingEmpty:
		return "empty"
	case FramingLength:
		return "length"
	case FramingChunked:
		return "chunked"
	default:
		return "none"
	}
}

// DecideFraming inspects h in this order: a positive Content-Length, a zero
// Content-Length, chunked Transfer-Encoding. A Content-Length that is present
// but not a non-negative integer yields FramingNone. Header names match
// case-insensitively.
func DecideFraming(h *Header) (Framing, int64) {
	if v, ok := h.LookupFold("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		switch {
		case err != nil || n < 0:
			return FramingNone, 0
		case n == 0:
			return FramingEmpty, 0
		default:
			return FramingLength, n
		}
	}

	if v, ok := h.LookupFold("Transfer-Encoding"); ok {
		if httpguts.HeaderValuesContainsToken([]string{v}, "chunked") {
			return FramingChunked, -1
		}
	}

	return FramingNone, 0
}
