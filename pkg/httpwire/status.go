package httpwire

// ProtoHTTP11 is the only protocol version either engine speaks.
const ProtoHTTP11 = "HTTP/1.1"

// Status codes produced by the proxy.
const (
	StatusOK                      = 200
	StatusUnsupportedMediaType    = 415
	StatusHostUnavailable         = 434
	StatusNotImplemented          = 501
	StatusHTTPVersionNotSupported = 505
)

var statusText = map[int]string{
	StatusOK:                      "OK",
	StatusUnsupportedMediaType:    "Unsupported Media Type",
	StatusHostUnavailable:         "Requested host unavailable",
	StatusNotImplemented:          "Not Implemented",
	StatusHTTPVersionNotSupported: "HTTP Version Not Supported",
}

// StatusText returns the reason phrase for code, or "" for codes the proxy
// does not produce itself.
func StatusText(code int) string {
	return statusText[code]
}
