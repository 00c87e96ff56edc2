package fetch

import (
	"errors"
	"fmt"
)

// Reason classifies how a fetch ended. Every reason other than ReasonNone
// produces the 434 sentinel response; the reason itself only reaches logs,
// metrics and the journal.
type Reason string

const (
	// ReasonNone means the upstream exchange completed, whatever its status.
	ReasonNone Reason = ""

	ReasonDNS      Reason = "dns"
	ReasonConnect  Reason = "connect"
	ReasonWrite    Reason = "write"
	ReasonRead     Reason = "read"
	ReasonTimeout  Reason = "timeout"
	ReasonCanceled Reason = "canceled"
	ReasonVersion  Reason = "version"
	ReasonProtocol Reason = "protocol"
	ReasonFraming  Reason = "framing"
	ReasonTooLarge Reason = "too_large"
	ReasonInternal Reason = "internal"
)

// Outcome returns a label for metrics: "ok" for ReasonNone, the reason otherwise.
func (r Reason) Outcome() string {
	if r == ReasonNone {
		return "ok"
	}
	return string(r)
}

var (
	// ErrAlreadySent is returned by a second SendRequest on the same Client.
	ErrAlreadySent = errors.New("fetch: request already sent")

	// ErrTimeout is the cause recorded when the fetch timer fires first.
	ErrTimeout = errors.New("fetch: timed out")

	// ErrNoAddresses is returned when resolution succeeds with no candidates.
	ErrNoAddresses = errors.New("fetch: host resolved to no addresses")

	// ErrBodyTooLarge is returned when the body exceeds the configured cap.
	ErrBodyTooLarge = errors.New("fetch: body exceeds limit")

	// errSuperseded marks work abandoned because another path already
	// completed the fetch. It never reaches a callback.
	errSuperseded = errors.New("fetch: superseded")
)

// Error is a failed fetch phase.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func phaseError(reason Reason, err error) error {
	return &Error{Reason: reason, Err: err}
}

// reasonOf extracts the Reason carried by err, defaulting to ReasonRead.
func reasonOf(err error) Reason {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonRead
}
