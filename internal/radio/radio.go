// Package radio abstracts over a half-duplex transceiver. This is the only
// interface the session engine or protocol agent sees; all scheduling,
// framing, and retries sit above it. Implementations include a real SX1276
// binding (out of scope for this module; treated as an opaque external
// collaborator) and the test doubles in radiotest.
package radio

// Status is the result of a Transmit or Receive call.
type Status int

const (
	StatusSuccess Status = iota
	StatusTimeout
	StatusBadBufferSize
	StatusBadMessage
	StatusInitializationFailed
	StatusUnspecifiedError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusTimeout:
		return "Timeout"
	case StatusBadBufferSize:
		return "BadBufferSize"
	case StatusBadMessage:
		return "BadMessage"
	case StatusInitializationFailed:
		return "InitializationFailed"
	case StatusUnspecifiedError:
		return "UnspecifiedError"
	default:
		return "Unknown"
	}
}

// Interface is a half-duplex transceiver. Transmit and Receive are mutually
// exclusive per device; the interface does not itself arbitrate concurrent
// callers — the single-threaded per-agent scheduling model (one agent per
// radio) makes that unnecessary, and an implementation that must support
// concurrent callers is free to add its own locking.
type Interface interface {
	// Transmit sends buf. MAY block for the duration required to physically
	// transmit. Returns StatusBadBufferSize if buf is empty or exceeds
	// MaximumMessageLength.
	Transmit(buf []byte) Status
	// Receive blocks up to an implementation-defined timeout, copying at
	// most len(out) bytes into out. Returns StatusBadBufferSize without
	// receiving if len(out) is smaller than MaximumMessageLength.
	Receive(out []byte) Status
	// MaximumMessageLength is the largest buffer this radio can transmit or
	// receive in one call.
	MaximumMessageLength() int
}
