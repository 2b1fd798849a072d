// Package wiretime exchanges absolute timestamps with a peer whose
// monotonic clocks are not directly comparable. Both hosts must have
// sufficiently synchronized wall clocks that the delta is small relative to
// the handshake lead time; this is an NTP-style assumption, not a proper
// RTT-based sync (a known TODO carried over from the original protocol).
package wiretime

import (
	"encoding/binary"
	"time"
)

// Point is a wire-format absolute timestamp: a count of nanoseconds since
// the Unix epoch, always little-endian on the wire regardless of host
// byte order.
type Point uint64

// Future returns the current wall-clock time plus delay, ready to embed in
// a handshake packet.
func Future(delay time.Duration) Point {
	return Point(time.Now().Add(delay).UnixNano())
}

// Local decodes a wire time point into a local time.Time. The original
// protocol translates from a wall-clock reading into a separate monotonic
// clock domain by correlating both clocks at the moment of decode
// (`(wire_instant - local_system_now) + local_monotonic_now`); Go's
// time.Time already unifies both domains, so that correlation collapses to
// the wall-clock reading itself.
func Local(w Point) time.Time {
	return time.Unix(0, int64(w))
}

// Encode writes p to buf (which must be at least 8 bytes) in wire order
// (little-endian).
func Encode(buf []byte, p Point) {
	binary.LittleEndian.PutUint64(buf, uint64(p))
}

// Decode reads a wire time point from buf (which must be at least 8 bytes).
func Decode(buf []byte) Point {
	return Point(binary.LittleEndian.Uint64(buf))
}
