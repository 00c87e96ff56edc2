package httpwire

import (
	"io"
	"strconv"

	"golang.org/x/net/http/httpguts"
)

// DefaultServerName is sent in the Server header when none is configured.
const DefaultServerName = "HumbleRssProxy"

// AppendResponse appends the wire form of res to dst.
//
// The head always carries Server and Connection: close followed by the
// entries of res.Header in insertion order. Entries whose name or value is
// not valid on the wire are dropped. Only a 200 response carries
// Access-Control-Allow-Origin: * and a body.
func AppendResponse(dst []byte, res *Response, serverName string) []byte {
	version := res.Version
	if version == "" {
		version = ProtoHTTP11
	}
	if serverName == "" {
		serverName = DefaultServerName
	}

	dst = append(dst, version...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(res.StatusCode), 10)
	dst = append(dst, ' ')
	dst = append(dst, StatusText(res.StatusCode)...)
	dst = append(dst, "\r\n"...)

	dst = appendHeaderLine(dst, "Server", serverName)
	dst = appendHeaderLine(dst, "Connection", "close")
	res.Header.Each(func(key, value string) {
		if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
			return
		}
		dst = appendHeaderLine(dst, key, value)
	})

	if res.StatusCode != StatusOK {
		return append(dst, "\r\n"...)
	}

	dst = appendHeaderLine(dst, "Access-Control-Allow-Origin", "*")
	dst = append(dst, "\r\n"...)
	return append(dst, res.Body...)
}

// WriteResponse writes the wire form of res to w in a single Write call.
func WriteResponse(w io.Writer, res *Response, serverName string) error {
	buf := AppendResponse(make([]byte, 0, 256+len(res.Body)), res, serverName)
	_, err := w.Write(buf)
	return err
}

func appendHeaderLine(dst []byte, key, value string) []byte {
	dst = append(dst, key...)
	dst = append(dst, ": "...)
	dst = append(dst, value...)
	return append(dst, "\r\n"...)
}
