// Package agentmetrics exposes the prometheus counters and histograms the
// agent and session engine record against.
package agentmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/bcp/internal/protocol"
)

var (
	registerOnce sync.Once

	packetsTransmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bcp",
			Subsystem: "agent",
			Name:      "packets_transmitted_total",
			Help:      "Packets transmitted, by tag.",
		},
		[]string{"tag"},
	)
	packetsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bcp",
			Subsystem: "agent",
			Name:      "packets_received_total",
			Help:      "Packets received, by tag.",
		},
		[]string{"tag"},
	)
	nacksSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bcp",
			Subsystem: "session",
			Name:      "nacks_sent_total",
			Help:      "NACKs transmitted after a missed receive.",
		},
	)
	retransmits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bcp",
			Subsystem: "session",
			Name:      "retransmits_total",
			Help:      "Packets retransmitted after a NACK.",
		},
	)
	sessionsTerminatedOnTimeout = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bcp",
			Subsystem: "session",
			Name:      "terminated_on_timeout_total",
			Help:      "Sessions ended after exceeding the NACK timeout limit.",
		},
	)
	handshakesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bcp",
			Subsystem: "agent",
			Name:      "handshakes_completed_total",
			Help:      "Handshakes completed, by role (seeker/advertiser).",
		},
		[]string{"role"},
	)
	sessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bcp",
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of completed sessions.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register installs every collector with the default registry. Safe to
// call more than once; only the first call takes effect.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			packetsTransmitted, packetsReceived, nacksSent, retransmits,
			sessionsTerminatedOnTimeout, handshakesCompleted, sessionDuration,
		)
	})
}

// RecordTransmit increments the transmitted-packet counter for tag.
func RecordTransmit(tag protocol.Tag) {
	Register()
	packetsTransmitted.WithLabelValues(tag.String()).Inc()
}

// RecordReceive increments the received-packet counter for tag.
func RecordReceive(tag protocol.Tag) {
	Register()
	packetsReceived.WithLabelValues(tag.String()).Inc()
}

// RecordNack increments the NACKs-sent counter.
func RecordNack() {
	Register()
	nacksSent.Inc()
}

// RecordRetransmit increments the retransmits counter.
func RecordRetransmit() {
	Register()
	retransmits.Inc()
}

// RecordSessionTimeout increments the timeout-termination counter.
func RecordSessionTimeout() {
	Register()
	sessionsTerminatedOnTimeout.Inc()
}

// RecordHandshakeCompleted increments the handshakes-completed counter for
// role ("seeker" or "advertiser").
func RecordHandshakeCompleted(role string) {
	Register()
	handshakesCompleted.WithLabelValues(role).Inc()
}

// RecordSessionDuration observes d against the session-duration histogram.
func RecordSessionDuration(d time.Duration) {
	Register()
	sessionDuration.Observe(d.Seconds())
}
