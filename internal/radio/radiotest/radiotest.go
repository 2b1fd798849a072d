// Package radiotest provides the radio.Interface test doubles used across
// the module's property tests: a counting radio that records how many
// times each operation fired, an in-process loopback radio pairing two
// agents without real hardware, and a fault-injecting wrapper that drops a
// periodic fraction of transmissions.
package radiotest

import (
	"sync"
	"time"

	"github.com/danmuck/bcp/internal/radio"
)

const defaultMaxMessageLength = 1 << 10

// CountingRadio never actually moves bytes; it is useful for tests that
// only care how many times Transmit/Receive were called. CanTransmit/
// CanReceive gate whether each call reports success or timeout.
type CountingRadio struct {
	mu          sync.Mutex
	CanTransmit bool
	CanReceive  bool
	ActionTime  time.Duration
	GetMessage  func(out []byte) radio.Status

	transmits int
	receives  int
}

// NewCountingRadio returns a CountingRadio that succeeds on every call.
func NewCountingRadio() *CountingRadio {
	return &CountingRadio{CanTransmit: true, CanReceive: true}
}

func (r *CountingRadio) Transmit(buf []byte) radio.Status {
	time.Sleep(r.ActionTime)
	r.mu.Lock()
	r.transmits++
	r.mu.Unlock()
	if !r.CanTransmit {
		return radio.StatusTimeout
	}
	return radio.StatusSuccess
}

func (r *CountingRadio) Receive(out []byte) radio.Status {
	time.Sleep(r.ActionTime)
	r.mu.Lock()
	r.receives++
	r.mu.Unlock()
	if !r.CanReceive {
		return radio.StatusTimeout
	}
	if r.GetMessage != nil {
		return r.GetMessage(out)
	}
	return radio.StatusSuccess
}

func (r *CountingRadio) MaximumMessageLength() int { return defaultMaxMessageLength }

// ObservedActions returns (transmits, receives) seen so far and clears the
// counters.
func (r *CountingRadio) ObservedActions() (transmits, receives int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	transmits, receives = r.transmits, r.receives
	r.transmits, r.receives = 0, 0
	return
}

// LocalRadio is an in-process loopback: a Transmit offers its buffer to a
// Receive call that is already waiting or that starts while the Transmit is
// in progress. Transmit always blocks for Timeout and then withdraws the
// buffer if no Receive took it; Receive blocks up to Timeout waiting for a
// buffer. It has no notion of which peer is which — two agents sharing one
// LocalRadio communicate by each calling Transmit/Receive against it at
// their own scheduled times, exactly as they would against a physical half-
// duplex channel.
type LocalRadio struct {
	Timeout time.Duration

	mu       sync.Mutex
	ready    chan struct{}
	inFlight []byte
}

func NewLocalRadio(timeout time.Duration) *LocalRadio {
	return &LocalRadio{
		Timeout: timeout,
		ready:   make(chan struct{}, 1),
	}
}

func (r *LocalRadio) Transmit(buf []byte) radio.Status {
	if len(buf) > r.MaximumMessageLength() {
		return radio.StatusBadBufferSize
	}
	r.mu.Lock()
	r.inFlight = append([]byte(nil), buf...)
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
	time.Sleep(r.Timeout)
	select {
	case <-r.ready:
	default:
	}
	return radio.StatusSuccess
}

func (r *LocalRadio) Receive(out []byte) radio.Status {
	select {
	case <-r.ready:
	case <-time.After(r.Timeout):
		return radio.StatusTimeout
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(out) < len(r.inFlight) {
		return radio.StatusBadBufferSize
	}
	copy(out, r.inFlight)
	return radio.StatusSuccess
}

func (r *LocalRadio) MaximumMessageLength() int { return defaultMaxMessageLength }

// FallibleLocalRadio wraps a LocalRadio and periodically fails every Nth
// Transmit/Receive — a modulo-based fault injector, not a random one, so
// tests that rely on it stay deterministic.
type FallibleLocalRadio struct {
	radio *LocalRadio

	transmitFailurePeriod int
	receiveFailurePeriod  int

	mu              sync.Mutex
	transmitCounter int
	receiveCounter  int
}

func NewFallibleLocalRadio(timeout time.Duration, transmitFailurePeriod, receiveFailurePeriod int) *FallibleLocalRadio {
	if transmitFailurePeriod < 0 || receiveFailurePeriod < 0 {
		panic("radiotest: failure period must be non-negative")
	}
	return &FallibleLocalRadio{
		radio:                 NewLocalRadio(timeout),
		transmitFailurePeriod: transmitFailurePeriod,
		receiveFailurePeriod:  receiveFailurePeriod,
	}
}

func (r *FallibleLocalRadio) Transmit(buf []byte) radio.Status {
	if r.transmitFailurePeriod != 0 {
		r.mu.Lock()
		r.transmitCounter = (r.transmitCounter + 1) % r.transmitFailurePeriod
		fail := r.transmitCounter == 0
		r.mu.Unlock()
		if fail {
			return radio.StatusTimeout
		}
	}
	return r.radio.Transmit(buf)
}

func (r *FallibleLocalRadio) Receive(out []byte) radio.Status {
	if r.receiveFailurePeriod != 0 {
		r.mu.Lock()
		r.receiveCounter = (r.receiveCounter + 1) % r.receiveFailurePeriod
		fail := r.receiveCounter == 0
		r.mu.Unlock()
		if fail {
			return radio.StatusTimeout
		}
	}
	return r.radio.Receive(out)
}

func (r *FallibleLocalRadio) MaximumMessageLength() int {
	return r.radio.MaximumMessageLength()
}
