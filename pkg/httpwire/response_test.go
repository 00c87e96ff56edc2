package httpwire

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func readHead(raw string, limit int) (*Response, *bufio.Reader, error) {
	br := bufio.NewReader(strings.NewReader(raw))
	res, err := ReadResponseHead(br, limit)
	return res, br, err
}

func TestReadResponseHead(t *testing.T) {
	raw := "HTTP/1.1 200 OK Extra Words\r\n" +
		"Content-Type: application/rss+xml\r\n" +
		"Content-Length:   42  \r\n" +
		"this line has no colon\r\n" +
		"X-Dup: first\r\n" +
		"X-Dup: second\r\n" +
		"\r\n" +
		"body-bytes"

	res, br, err := readHead(raw, 0)
	if err != nil {
		t.Fatalf("ReadResponseHead() error = %v", err)
	}
	if res.Version != "HTTP/1.1" {
		t.Errorf("Version = %q", res.Version)
	}
	if res.StatusCode != 200 {
		t.Errorf("StatusCode = %d", res.StatusCode)
	}
	if got := res.Header.Get("Content-Length"); got != "42" {
		t.Errorf("Content-Length = %q, want trimmed %q", got, "42")
	}
	if got := res.Header.Get("X-Dup"); got != "second" {
		t.Errorf("X-Dup = %q, want last write %q", got, "second")
	}
	if res.Header.Len() != 3 {
		t.Errorf("Header.Len() = %d, want 3 (malformed line skipped)", res.Header.Len())
	}

	rest, _ := io.ReadAll(br)
	if string(rest) != "body-bytes" {
		t.Errorf("remaining = %q, head reader consumed body bytes", rest)
	}
}

func TestReadResponseHead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		limit   int
		wantErr error
	}{
		{"non numeric status", "HTTP/1.1 abc OK\r\n\r\n", 0, ErrMalformedStatus},
		{"missing status", "HTTP/1.1\r\n\r\n", 0, ErrMalformedStatus},
		{"truncated head", "HTTP/1.1 200 OK\r\nA: b\r\n", 0, io.EOF},
		{"empty stream", "", 0, io.EOF},
		{"too large", "HTTP/1.1 200 OK\r\nA: bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\r\n\r\n", 24, ErrHeadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readHead(tt.raw, tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadResponseHead_LFOnly(t *testing.T) {
	res, _, err := readHead("HTTP/1.0 404 Not Found\nServer: x\n\n", 0)
	if err != nil {
		t.Fatalf("ReadResponseHead() error = %v", err)
	}
	if res.Version != "HTTP/1.0" || res.StatusCode != 404 {
		t.Errorf("got %q %d", res.Version, res.StatusCode)
	}
	if res.Header.Get("Server") != "x" {
		t.Errorf("Server = %q", res.Header.Get("Server"))
	}
}

func TestDecideFraming(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		wantFrame  Framing
		wantLength int64
	}{
		{"positive length", map[string]string{"Content-Length": "42"}, FramingLength, 42},
		{"zero length", map[string]string{"Content-Length": "0"}, FramingEmpty, 0},
		{"length wins over chunked", map[string]string{"Content-Length": "5", "Transfer-Encoding": "chunked"}, FramingLength, 5},
		{"chunked", map[string]string{"Transfer-Encoding": "chunked"}, FramingChunked, -1},
		{"chunked after gzip", map[string]string{"Transfer-Encoding": "gzip, chunked"}, FramingChunked, -1},
		{"lowercase names", map[string]string{"content-length": "7"}, FramingLength, 7},
		{"non numeric length", map[string]string{"Content-Length": "abc"}, FramingNone, 0},
		{"negative length", map[string]string{"Content-Length": "-1"}, FramingNone, 0},
		{"identity encoding", map[string]string{"Transfer-Encoding": "identity"}, FramingNone, 0},
		{"nothing", map[string]string{"Content-Type": "text/xml"}, FramingNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Header
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			frame, n := DecideFraming(&h)
			if frame != tt.wantFrame || n != tt.wantLength {
				t.Errorf("DecideFraming() = (%v, %d), want (%v, %d)", frame, n, tt.wantFrame, tt.wantLength)
			}
		})
	}
}

func TestUnavailable(t *testing.T) {
	res := Unavailable()
	if res.Version != ProtoHTTP11 || res.StatusCode != 434 {
		t.Errorf("Unavailable() = %q %d", res.Version, res.StatusCode)
	}
	if !res.IsUnavailable() {
		t.Error("IsUnavailable() = false")
	}
	if len(res.Body) != 0 || res.Header.Len() != 0 {
		t.Error("sentinel must carry no headers or body")
	}
}

func TestChunkedReader(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"two chunks", "3\r\nhey\r\n2\r\n!!\r\n0\r\n\r\n", "hey!!", false},
		{"extension and trailer", "5;name=v\r\nhello\r\n0\r\nX-T: y\r\n\r\n", "hello", false},
		{"hex size", "a\r\n0123456789\r\n0\r\n\r\n", "0123456789", false},
		{"missing terminal chunk", "3\r\nhey\r\n", "", true},
		{"bad size", "zz\r\nhey\r\n0\r\n\r\n", "", true},
		{"missing crlf after data", "3\r\nheyX0\r\n\r\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewChunkedReader(bufio.NewReader(strings.NewReader(tt.raw)), 64)
			got, err := io.ReadAll(r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got body %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}
