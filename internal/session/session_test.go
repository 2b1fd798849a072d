package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/bcp/internal/clock"
	"github.com/danmuck/bcp/internal/pipe"
	"github.com/danmuck/bcp/internal/protocol"
	"github.com/danmuck/bcp/internal/radio"
	"github.com/danmuck/bcp/internal/radio/radiotest"
	"github.com/danmuck/bcp/internal/sequence"
	"github.com/danmuck/bcp/internal/testutil/testlog"
)

func testConfig() Config {
	return Config{
		TransmitDuration:  20 * time.Millisecond,
		GapDuration:       5 * time.Millisecond,
		TimeoutLimit:      4,
		SpinloopThreshold: time.Millisecond,
	}
}

func TestInitiatorFirstActionIsTransmit(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	if got := s.whatToDoIgnoringCurrentTime(clock.Transmitting); got != ActionTransmitNextMessage {
		t.Fatalf("initiator first action = %v, want %v", got, ActionTransmitNextMessage)
	}
}

func TestReceivingIsAlwaysReceive(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	if got := s.whatToDoIgnoringCurrentTime(clock.Receiving); got != ActionReceive {
		t.Fatalf("action = %v, want %v", got, ActionReceive)
	}
}

func TestInactiveSleeps(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	if got := s.whatToDoIgnoringCurrentTime(clock.Inactive); got != ActionSleepUntilNextAction {
		t.Fatalf("action = %v, want %v", got, ActionSleepUntilNextAction)
	}
}

func TestMissedReceiveNacksUntilTimeoutLimit(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	s.receivedGoodPacketInLastReceiveSequence = false

	for i := 0; i <= s.cfg.TimeoutLimit; i++ {
		s.timeoutCounter = i
		if got := s.whatToDoIgnoringCurrentTime(clock.Transmitting); got != ActionTransmitNack {
			t.Fatalf("timeoutCounter=%d: action = %v, want %v", i, got, ActionTransmitNack)
		}
	}

	s.timeoutCounter = s.cfg.TimeoutLimit + 1
	if got := s.whatToDoIgnoringCurrentTime(clock.Transmitting); got != ActionTerminateSession {
		t.Fatalf("action past timeout limit = %v, want %v", got, ActionTerminateSession)
	}
}

func TestLocalizeActionKindSwapsForFollower(t *testing.T) {
	testlog.Start(t)
	follower := New(1, time.Now(), false, testConfig(), zerolog.Nop())
	if got := follower.localizeActionKind(clock.Transmitting); got != clock.Receiving {
		t.Fatalf("follower localize(Transmitting) = %v, want Receiving", got)
	}
	if got := follower.localizeActionKind(clock.Receiving); got != clock.Transmitting {
		t.Fatalf("follower localize(Receiving) = %v, want Transmitting", got)
	}
	if got := follower.localizeActionKind(clock.Inactive); got != clock.Inactive {
		t.Fatalf("follower localize(Inactive) = %v, want Inactive", got)
	}

	initiator := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	if got := initiator.localizeActionKind(clock.Transmitting); got != clock.Transmitting {
		t.Fatalf("initiator localize(Transmitting) = %v, want Transmitting", got)
	}
}

func TestTerminateSessionReportsSessionComplete(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	s.terminateSession()
	if !s.IsComplete() {
		t.Fatalf("expected session to be complete")
	}
	if got := s.whatToDoIgnoringCurrentTime(clock.Transmitting); got != ActionSessionComplete {
		t.Fatalf("action after termination = %v, want %v", got, ActionSessionComplete)
	}
}

// TestFirstExchangeAdvancesSequenceNumbers drives one initiator and one
// follower Session against a shared loopback radio through a single
// transmit/receive pair each way, and checks that both land on the same
// non-fictitious sequence numbers afterward. Each receive runs concurrently
// with the matching transmit, since the loopback radio withdraws a buffer
// that no receiver took before the transmit returns.
func TestFirstExchangeAdvancesSequenceNumbers(t *testing.T) {
	testlog.Start(t)
	r := radiotest.NewLocalRadio(10 * time.Millisecond)
	now := time.Now()

	initiator := New(7, now, true, testConfig(), zerolog.Nop())
	follower := New(7, now, false, testConfig(), zerolog.Nop())

	sent := []byte("hello")
	initiatorPipe := pipe.New(func() []byte { return sent }, nil)

	var received []byte
	followerPipe := pipe.New(nil, func(payload []byte) { received = payload })

	followerDone := make(chan struct{})
	go func() {
		follower.receiveMessage(r, followerPipe)
		close(followerDone)
	}()
	initiator.transmitNextMessage(r, initiatorPipe)
	<-followerDone

	if follower.lastAckedSentSN != sequence.Number(follower.lastSentPacket.SN) {
		t.Fatalf("follower did not register the initiator's ack")
	}
	if follower.lastRecvSN != sequence.Number(initiator.lastSentPacket.SN) {
		t.Fatalf("follower last_recv_sn = %d, want %d", follower.lastRecvSN, initiator.lastSentPacket.SN)
	}

	initiatorDone := make(chan struct{})
	go func() {
		initiator.receiveMessage(r, initiatorPipe)
		close(initiatorDone)
	}()
	follower.transmitNextMessage(r, followerPipe)
	<-initiatorDone

	if initiator.lastAckedSentSN != sequence.Number(initiator.lastSentPacket.SN) {
		t.Fatalf("initiator did not register the follower's ack")
	}
	// The follower's first real payload is only handed to the application
	// once a subsequent message supersedes the buffered one; deposit is
	// therefore still empty after just one exchange.
	if received != nil {
		t.Fatalf("unexpected early delivery: %q", received)
	}
}

func TestRetransmitReusesLastSentPacket(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())
	s.lastSentPacket.Length = 3
	copy(s.lastSentPacket.Payload[:], []byte{1, 2, 3})

	counting := radiotest.NewCountingRadio()
	s.retransmitMessage(counting)
	tx, _ := counting.ObservedActions()
	if tx != 1 {
		t.Fatalf("expected exactly one transmit, got %d", tx)
	}
}

func TestSessionPacketFitsFIFO(t *testing.T) {
	testlog.Start(t)
	p := protocol.SessionPacket{SessionID: 1, Length: protocol.MaxPayloadLengthBytes}
	if len(protocol.SerializeSession(p)) > protocol.FIFOCapacity {
		t.Fatalf("serialized session packet exceeds FIFO capacity")
	}
}

func TestReceiveMessagePanicsOnBadProtocolState(t *testing.T) {
	testlog.Start(t)
	s := New(1, time.Now(), true, testConfig(), zerolog.Nop())

	bad := protocol.SessionPacket{
		SessionID: 1,
		Subtype:   protocol.SubtypeData,
		NESN:      5,
		SN:        0,
	}
	buf := protocol.SerializeSession(bad)

	counting := radiotest.NewCountingRadio()
	counting.GetMessage = func(out []byte) radio.Status {
		copy(out, buf)
		return radio.StatusSuccess
	}

	defer func() {
		if r := recover(); r != ErrBadProtocolState {
			t.Fatalf("expected panic %v, got %v", ErrBadProtocolState, r)
		}
	}()
	s.receiveMessage(counting, pipe.MessagePipe{})
}

// TestPingPongSteadyState drives one initiator and one follower Session
// against a shared loopback radio through several periods of real message
// exchange. With nothing dropped, every exchange acks cleanly and both
// sides return to TransmitNextMessage every period rather than ever
// falling back to a retransmit or nack.
func TestPingPongSteadyState(t *testing.T) {
	testlog.Start(t)
	r := radiotest.NewLocalRadio(8 * time.Millisecond)

	cfg := testConfig()
	cfg.TransmitDuration = 10 * time.Millisecond
	cfg.GapDuration = 5 * time.Millisecond

	start := time.Now().Add(40 * time.Millisecond)
	initiator := New(1, start, true, cfg, zerolog.Nop())
	follower := New(1, start, false, cfg, zerolog.Nop())

	pingPipe := pipe.New(func() []byte { return []byte("ping") }, nil)
	pongPipe := pipe.New(func() []byte { return []byte("pong") }, nil)

	const periods = 4
	time.Sleep(time.Until(start))

	followerActions := make(chan []Action, 1)
	go func() {
		actions := make([]Action, 0, 2*periods)
		for i := 0; i < periods; i++ {
			actions = append(actions, follower.ExecuteCurrentAction(r, pongPipe))
			actions = append(actions, follower.ExecuteCurrentAction(r, pongPipe))
		}
		followerActions <- actions
	}()

	initiatorActions := make([]Action, 0, 2*periods)
	for i := 0; i < periods; i++ {
		initiatorActions = append(initiatorActions, initiator.ExecuteCurrentAction(r, pingPipe))
		initiatorActions = append(initiatorActions, initiator.ExecuteCurrentAction(r, pingPipe))
	}
	gotFollower := <-followerActions

	for i := 0; i < periods; i++ {
		if got := initiatorActions[2*i]; got != ActionReceive {
			t.Fatalf("initiator period %d call 1 = %v, want %v", i, got, ActionReceive)
		}
		if got := initiatorActions[2*i+1]; got != ActionTransmitNextMessage {
			t.Fatalf("initiator period %d call 2 = %v, want %v", i, got, ActionTransmitNextMessage)
		}
		if got := gotFollower[2*i]; got != ActionTransmitNextMessage {
			t.Fatalf("follower period %d call 1 = %v, want %v", i, got, ActionTransmitNextMessage)
		}
		if got := gotFollower[2*i+1]; got != ActionReceive {
			t.Fatalf("follower period %d call 2 = %v, want %v", i, got, ActionReceive)
		}
	}
}

// TestPingPongWithOneSidedRadioFailures drives the same initiator/follower
// pair over a radio that drops every fourth transmission regardless of
// which side sent it. The follower always transmits second within a
// period, so its transmission is the one that lands on the failing
// multiple: only the follower ever falls back to a retransmit, and only
// the initiator — finding nothing where the follower's ack should have
// been — ever falls back to a nack.
func TestPingPongWithOneSidedRadioFailures(t *testing.T) {
	testlog.Start(t)
	r := radiotest.NewFallibleLocalRadio(8*time.Millisecond, 4, 0)

	cfg := testConfig()
	cfg.TransmitDuration = 10 * time.Millisecond
	cfg.GapDuration = 5 * time.Millisecond

	start := time.Now().Add(40 * time.Millisecond)
	initiator := New(1, start, true, cfg, zerolog.Nop())
	follower := New(1, start, false, cfg, zerolog.Nop())

	pingPipe := pipe.New(func() []byte { return []byte("ping") }, nil)
	pongPipe := pipe.New(func() []byte { return []byte("pong") }, nil)

	const periods = 8
	time.Sleep(time.Until(start))

	followerActions := make(chan []Action, 1)
	go func() {
		actions := make([]Action, 0, 2*periods)
		for i := 0; i < periods; i++ {
			actions = append(actions, follower.ExecuteCurrentAction(r, pongPipe))
			actions = append(actions, follower.ExecuteCurrentAction(r, pongPipe))
		}
		followerActions <- actions
	}()

	initiatorActions := make([]Action, 0, 2*periods)
	for i := 0; i < periods; i++ {
		initiatorActions = append(initiatorActions, initiator.ExecuteCurrentAction(r, pingPipe))
		initiatorActions = append(initiatorActions, initiator.ExecuteCurrentAction(r, pingPipe))
	}
	gotFollower := <-followerActions

	for i := 0; i < periods; i++ {
		wantInitiatorSecond := ActionTransmitNextMessage
		if i%2 != 0 {
			wantInitiatorSecond = ActionTransmitNack
		}
		if got := initiatorActions[2*i]; got != ActionReceive {
			t.Fatalf("initiator period %d call 1 = %v, want %v", i, got, ActionReceive)
		}
		if got := initiatorActions[2*i+1]; got != wantInitiatorSecond {
			t.Fatalf("initiator period %d call 2 = %v, want %v", i, got, wantInitiatorSecond)
		}

		wantFollowerFirst := ActionTransmitNextMessage
		if i > 1 && i%2 == 0 {
			wantFollowerFirst = ActionRetransmitMessage
		}
		if got := gotFollower[2*i]; got != wantFollowerFirst {
			t.Fatalf("follower period %d call 1 = %v, want %v", i, got, wantFollowerFirst)
		}
		if got := gotFollower[2*i+1]; got != ActionReceive {
			t.Fatalf("follower period %d call 2 = %v, want %v", i, got, ActionReceive)
		}
	}
}
