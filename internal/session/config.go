package session

import "time"

// Config holds the per-session timing and retry parameters that both
// agents in a session must agree on ahead of time.
type Config struct {
	TransmitDuration time.Duration
	GapDuration      time.Duration
	// TimeoutLimit is the highest consecutive-NACK count at which a
	// transmitter still sends another NACK: after TimeoutLimit+1 NACKs with
	// no good packet received, the next transmit slot terminates the session.
	TimeoutLimit int
	// SpinloopThreshold is the remaining-time cutoff below which sleepUntil
	// busy-waits instead of blocking on a timer, to avoid oversleeping on
	// platforms with coarse timer resolution.
	SpinloopThreshold time.Duration
}

// DefaultConfig returns the reference timing used by the rest of this
// module unless a caller overrides it.
func DefaultConfig() Config {
	return Config{
		TransmitDuration:  100 * time.Millisecond,
		GapDuration:       20 * time.Millisecond,
		TimeoutLimit:      4,
		SpinloopThreshold: 5 * time.Millisecond,
	}
}
