package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/bcp/internal/agentmetrics"
	"github.com/danmuck/bcp/internal/clock"
	"github.com/danmuck/bcp/internal/pipe"
	"github.com/danmuck/bcp/internal/protocol"
	"github.com/danmuck/bcp/internal/radio"
	"github.com/danmuck/bcp/internal/sequence"
)

// Action is the specific thing an agent driving a Session should do right
// now.
type Action int

const (
	ActionSleepUntilNextAction Action = iota
	ActionReceive
	ActionTransmitNextMessage
	ActionRetransmitMessage
	ActionTransmitNack
	ActionTerminateSession
	ActionSessionComplete
)

func (a Action) String() string {
	switch a {
	case ActionSleepUntilNextAction:
		return "SleepUntilNextAction"
	case ActionReceive:
		return "Receive"
	case ActionTransmitNextMessage:
		return "TransmitNextMessage"
	case ActionRetransmitMessage:
		return "RetransmitMessage"
	case ActionTransmitNack:
		return "TransmitNack"
	case ActionTerminateSession:
		return "TerminateSession"
	case ActionSessionComplete:
		return "SessionComplete"
	default:
		return "Unknown"
	}
}

// Session is the stop-and-wait link state shared by exactly two agents:
// one initiator and one follower. Both sides run the same state machine
// against the same clock; LocalizeActionKind is what lets one SessionClock
// serve both roles.
type Session struct {
	id     uint32
	clock  *clock.SessionClock
	cfg    Config
	logger zerolog.Logger

	// lastRecvSN is not trustworthy as "final" until a packet with a
	// greater SN arrives: the counterparty may have missed our ack and
	// retransmitted, possibly with different contents.
	lastRecvSN      sequence.Number
	lastSentPacket  protocol.SessionPacket
	lastAckedSentSN sequence.Number

	receivedGoodPacketInLastReceiveSequence bool
	lastRecvMessage                         []byte

	timeoutCounter  int
	sessionComplete bool
	weInitiated     bool
}

// New constructs a Session. start is the instant at which the initiator's
// first transmit slot begins; weInitiated selects which side of the
// schedule this agent runs. logger may be the zero zerolog.Logger, in
// which case logging is disabled.
func New(id uint32, start time.Time, weInitiated bool, cfg Config, logger zerolog.Logger) *Session {
	return &Session{
		id:          id,
		clock:       clock.NewSessionClock(start, cfg.TransmitDuration, cfg.GapDuration),
		cfg:         cfg,
		logger:      logger,
		lastRecvSN:  sequence.Max,
		lastSentPacket: protocol.SessionPacket{
			SessionID: id,
			SN:        uint8(sequence.Max),
			NESN:      uint8(initFictitiousPrevSentNESN(weInitiated)),
		},
		lastAckedSentSN: initFictitiousLastAckedSentSN(weInitiated),
		receivedGoodPacketInLastReceiveSequence: true,
		weInitiated:                             weInitiated,
	}
}

// initFictitiousLastAckedSentSN and initFictitiousPrevSentNESN seed state
// that has no real predecessor: the very first thing either side transmits
// needs SN/NESN values, and those are computed relative to prior state
// that never existed. The initiator considers its own phantom SN to be
// the maximum value, as if it had "already sent" a message acked at
// max-1 (the follower) or max (the initiator) — the asymmetry is what
// makes the initiator's first real transmit carry SN 0.
func initFictitiousLastAckedSentSN(weInitiated bool) sequence.Number {
	if weInitiated {
		return sequence.Max
	}
	return sequence.Max.Sub(1)
}

func initFictitiousPrevSentNESN(weInitiated bool) sequence.Number {
	if weInitiated {
		return sequence.Max
	}
	return 0
}

// ID reports the session identifier this session was established with.
func (s *Session) ID() uint32 { return s.id }

// IsComplete reports whether the session has reached a terminal state.
func (s *Session) IsComplete() bool { return s.sessionComplete }

// WhatToDoRightNow reports the action this session expects of its agent
// at the current instant, without performing it.
func (s *Session) WhatToDoRightNow() Action {
	return s.whatToDoIgnoringCurrentTime(s.localizeActionKind(s.clock.ActionKindAt(time.Now())))
}

// ExecuteCurrentAction performs whatever WhatToDoRightNow calls for, then
// sleeps through the remainder of the current slot and the following gap,
// returning the action to take upon waking.
func (s *Session) ExecuteCurrentAction(r radio.Interface, p pipe.MessagePipe) Action {
	switch s.WhatToDoRightNow() {
	case ActionReceive:
		s.receiveMessage(r, p)
	case ActionTransmitNextMessage:
		s.transmitNextMessage(r, p)
	case ActionTransmitNack:
		s.transmitNack(r)
	case ActionRetransmitMessage:
		s.retransmitMessage(r)
	case ActionTerminateSession:
		s.terminateSession()
	case ActionSleepUntilNextAction, ActionSessionComplete:
	}
	return s.SleepThroughNextGapTime()
}

// SleepThroughNextGapTime sleeps until the next slot boundary that is not
// an inactive gap, and returns the action that will be due on waking.
func (s *Session) SleepThroughNextGapTime() Action {
	wakeTime := s.clock.TimeOfNextAction(time.Now())
	if s.localizeActionKind(s.clock.ActionKindAt(wakeTime)) == clock.Inactive {
		wakeTime = s.clock.TimeOfNextAction(wakeTime)
	}

	action := s.whatToDoIgnoringCurrentTime(s.localizeActionKind(s.clock.ActionKindAt(wakeTime)))
	if action == ActionSleepUntilNextAction {
		panic("session: computed wake action is itself sleep")
	}

	s.sleepUntil(wakeTime)
	return action
}

// SleepUntilStartTime blocks until the session's scheduled start time.
func (s *Session) SleepUntilStartTime() {
	s.sleepUntil(s.clock.StartTime())
}

func (s *Session) sleepUntil(t time.Time) {
	if time.Until(t) >= s.cfg.SpinloopThreshold {
		time.Sleep(time.Until(t))
		return
	}
	for time.Now().Before(t) {
	}
}

func (s *Session) transmitNack(r radio.Interface) {
	p := protocol.SessionPacket{
		SessionID: s.id,
		Subtype:   protocol.SubtypeNack,
		NESN:      uint8(s.lastRecvSN.Next()),
		SN:        s.lastSentPacket.SN,
	}
	s.logPacket(p, "transmitted NACK")
	r.Transmit(protocol.SerializeSession(p))
	agentmetrics.RecordNack()
	s.timeoutCounter++
}

func (s *Session) transmitNextMessage(r radio.Interface, p pipe.MessagePipe) {
	next := s.lastSentPacket
	next.Subtype = protocol.SubtypeData
	next.NESN = uint8(s.lastRecvSN.Next())
	next.SN = uint8(s.lastAckedSentSN.Next())

	payload := p.GetNextMessageToSend()
	next.Length = uint8(len(payload))
	next.Payload = protocol.Payload{}
	copy(next.Payload[:], payload)

	s.lastSentPacket = next
	s.logPacket(next, "transmitted")
	r.Transmit(protocol.SerializeSession(next))
}

func (s *Session) receiveMessage(r radio.Interface, p pipe.MessagePipe) {
	s.receivedGoodPacketInLastReceiveSequence = false

	var buf protocol.ReceiveBuffer
	if status := r.Receive(buf[:]); status != radio.StatusSuccess {
		return
	}
	s.receivedGoodPacketInLastReceiveSequence = true
	s.timeoutCounter = 0

	recv, err := protocol.DeserializeSession(buf[:])
	if err != nil {
		return
	}
	s.logPacket(recv, "received")

	recvSN := sequence.Number(recv.SN)
	recvNESN := sequence.Number(recv.NESN)

	switch {
	case recvNESN == sequence.Number(s.lastSentPacket.SN).Next():
		s.lastAckedSentSN = sequence.Number(s.lastSentPacket.SN)

		switch {
		case recvSN == s.lastRecvSN:
			// They retransmitted their last message even though we already
			// received it. We keep the newer bytes but don't hand the
			// application a duplicate.
			s.lastRecvMessage = append([]byte(nil), recv.Payload[:recv.Length]...)
		case recvSN == s.lastRecvSN.Next():
			p.DepositReceivedMessage(s.lastRecvMessage)
			s.lastRecvMessage = append([]byte(nil), recv.Payload[:recv.Length]...)
		}
		s.lastRecvSN = recvSN

	case recv.Subtype == protocol.SubtypeNack && recvNESN == sequence.Number(s.lastSentPacket.SN):
		// They want a retransmit; nothing to update.

	default:
		panic(ErrBadProtocolState)
	}
}

func (s *Session) retransmitMessage(r radio.Interface) {
	s.logPacket(s.lastSentPacket, "retransmitted")
	r.Transmit(protocol.SerializeSession(s.lastSentPacket))
	agentmetrics.RecordRetransmit()
}

func (s *Session) terminateSession() {
	s.sessionComplete = true
	agentmetrics.RecordSessionDuration(time.Since(s.clock.StartTime()))
}

func (s *Session) whatToDoIgnoringCurrentTime(supposed clock.ActionKind) Action {
	if s.sessionComplete {
		return ActionSessionComplete
	}

	switch supposed {
	case clock.Inactive:
		return ActionSleepUntilNextAction
	case clock.Receiving:
		return ActionReceive
	case clock.Transmitting:
	}

	if !s.receivedGoodPacketInLastReceiveSequence {
		if s.timeoutCounter <= s.cfg.TimeoutLimit {
			return ActionTransmitNack
		}
		return ActionTerminateSession
	}

	switch {
	case s.lastAckedSentSN == sequence.Number(s.lastSentPacket.SN):
		return ActionTransmitNextMessage
	case s.lastAckedSentSN.Next() == sequence.Number(s.lastSentPacket.SN):
		return ActionRetransmitMessage
	default:
		panic(ErrBadProtocolState)
	}
}

// localizeActionKind translates the initiator's view of the clock into
// this session's own view: a follower transmits when the initiator
// receives, and vice versa.
func (s *Session) localizeActionKind(initiatorKind clock.ActionKind) clock.ActionKind {
	if s.weInitiated {
		return initiatorKind
	}
	switch initiatorKind {
	case clock.Receiving:
		return clock.Transmitting
	case clock.Transmitting:
		return clock.Receiving
	default:
		return initiatorKind
	}
}

func (s *Session) logPacket(p protocol.SessionPacket, action string) {
	role := "Follower"
	if s.weInitiated {
		role = "Initiator"
	}
	s.logger.Debug().
		Str("role", role).
		Str("action", action).
		Uint32("session_id", s.id).
		Str("subtype", p.Subtype.String()).
		Uint8("sn", p.SN).
		Uint8("nesn", p.NESN).
		Uint8("last_recv_sn", uint8(s.lastRecvSN)).
		Uint8("last_acked_sent_sn", uint8(s.lastAckedSentSN)).
		Msg("session packet")
}
