package agent

import (
	"time"

	"github.com/danmuck/bcp/internal/session"
)

// Timing constants for the handshake/advertising cycle. These are not yet
// tied to an over-the-air time-on-air computation; they are fixed durations
// chosen to leave comfortable margin for the packet sizes in this module.
const (
	HandshakeLeadTime               = 100 * time.Millisecond
	BaseAdvertisingInterval         = 550 * time.Millisecond
	AdvertisingTransmissionDuration = 200 * time.Millisecond
	ConnectionRequestInterval       = BaseAdvertisingInterval - AdvertisingTransmissionDuration
	HandshakeReceiveDuration        = 400 * time.Millisecond
	PendSleepTime                   = 100 * time.Millisecond

	// HardcodedTransmissionTime and HardcodedSleepTime seed the session
	// clock a completed handshake hands off to. Tying these to an actual
	// time-on-air budget is future work.
	HardcodedTransmissionTime = 800 * time.Millisecond
	HardcodedSleepTime        = 200 * time.Millisecond
)

// SessionIDGenerator produces the session identifier an advertiser embeds
// in its ConnectionAccept packet. The default is to reuse the advertiser's
// own address; callers that need globally unique session IDs across many
// advertisers sharing one address space can inject their own.
type SessionIDGenerator func(advertiserAddress uint32) uint32

// DefaultSessionIDGenerator returns the advertiser's own address.
func DefaultSessionIDGenerator(advertiserAddress uint32) uint32 {
	return advertiserAddress
}

// Config bundles the pieces of agent behavior a caller might reasonably
// override.
type Config struct {
	HandshakeLeadTime               time.Duration
	BaseAdvertisingInterval         time.Duration
	AdvertisingTransmissionDuration time.Duration
	ConnectionRequestInterval       time.Duration
	HandshakeReceiveDuration        time.Duration
	PendSleepTime                   time.Duration
	HardcodedTransmissionTime       time.Duration
	HardcodedSleepTime              time.Duration
	GenerateSessionID               SessionIDGenerator

	SessionTimeoutLimit      int
	SessionSpinloopThreshold time.Duration
}

// DefaultConfig returns the reference timing and session ID generation.
func DefaultConfig() Config {
	sessionDefaults := session.DefaultConfig()
	return Config{
		HandshakeLeadTime:               HandshakeLeadTime,
		BaseAdvertisingInterval:         BaseAdvertisingInterval,
		AdvertisingTransmissionDuration: AdvertisingTransmissionDuration,
		ConnectionRequestInterval:       ConnectionRequestInterval,
		HandshakeReceiveDuration:        HandshakeReceiveDuration,
		PendSleepTime:                   PendSleepTime,
		HardcodedTransmissionTime:       HardcodedTransmissionTime,
		HardcodedSleepTime:              HardcodedSleepTime,
		GenerateSessionID:               DefaultSessionIDGenerator,
		SessionTimeoutLimit:             sessionDefaults.TimeoutLimit,
		SessionSpinloopThreshold:        sessionDefaults.SpinloopThreshold,
	}
}
