package fetch

// State is the phase a Client is in. A Client moves forward only.
type State int32

const (
	StateIdle State = iota
	StateResolving
	StateConnecting
	StateSending
	StateAwaitingHeaders
	StateReadingBody
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateConnecting:
		return "connecting"
	case StateSending:
		return "sending"
	case StateAwaitingHeaders:
		return "awaiting_headers"
	case StateReadingBody:
		return "reading_body"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
