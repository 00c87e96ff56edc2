package httpwire

import "errors"

var (
	// ErrHeadTooLarge is returned when a message head exceeds the read limit.
	ErrHeadTooLarge = errors.New("httpwire: message head too large")

	// ErrMalformedStatus is returned for a status line without a numeric code.
	ErrMalformedStatus = errors.New("httpwire: malformed status line")

	// ErrChunkFormat is returned for an invalid chunk size line or chunk boundary.
	ErrChunkFormat = errors.New("httpwire: invalid chunk format")
)
