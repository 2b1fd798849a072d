package agent

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/bcp/internal/agentmetrics"
	"github.com/danmuck/bcp/internal/pipe"
	"github.com/danmuck/bcp/internal/protocol"
	"github.com/danmuck/bcp/internal/radio"
	"github.com/danmuck/bcp/internal/session"
	"github.com/danmuck/bcp/internal/wiretime"
)

// Agent runs the outer link-establishment state machine for one radio.
// ExecuteAgentAction is meant to be called in a tight loop from a single
// driving goroutine; SetGoal may be called concurrently from elsewhere,
// hence the atomic state/goal fields.
type Agent struct {
	address uint32
	radio   radio.Interface
	pipe    pipe.MessagePipe
	cfg     Config
	logger  zerolog.Logger

	session *session.Session

	priorState State
	state      atomic.Int32
	goal       atomic.Int32
	ready      atomic.Bool

	advertiserAddress *uint32
	requesterAddress  *uint32
}

// New constructs an Agent that starts in StateDispatch with GoalDisconnect.
func New(address uint32, r radio.Interface, p pipe.MessagePipe, cfg Config, logger zerolog.Logger) *Agent {
	a := &Agent{
		address:    address,
		radio:      r,
		pipe:       p,
		cfg:        cfg,
		logger:     logger,
		priorState: StatePend,
	}
	a.state.Store(int32(StateDispatch))
	a.goal.Store(int32(GoalDisconnect))
	return a
}

// Address reports the address this agent advertises/requests under.
func (a *Agent) Address() uint32 { return a.address }

// State reports the agent's current outer state.
func (a *Agent) State() State { return State(a.state.Load()) }

// Goal reports the agent's current connection goal.
func (a *Agent) Goal() Goal { return Goal(a.goal.Load()) }

// SetGoal changes what dispatchNextState will pursue the next time the
// agent reaches StateDispatch. Safe to call from another goroutine.
func (a *Agent) SetGoal(goal Goal) { a.goal.Store(int32(goal)) }

// InSession reports whether the agent is currently running a session.
func (a *Agent) InSession() bool { return a.State() == StateExecuteSession }

// Ready reports whether the agent has completed its first handshake or
// entered StatePend at least once. Unlike State, this is sticky: once set
// it never clears, so a caller polling readiness doesn't see it flap back
// to false every time the agent cycles back through Pend.
func (a *Agent) Ready() bool { return a.ready.Load() }

// ExecuteAgentAction advances the state machine by exactly one action.
// StateDispatch is folded into the same call as whatever it dispatches
// to: a call that begins in StateDispatch also runs the dispatched state's
// action. A call may still end in StateDispatch (for example after an
// unanswered seek or advertise), which the next call resolves.
func (a *Agent) ExecuteAgentAction() {
	if a.State() == StateDispatch {
		a.dispatchNextState()
	}

	switch a.State() {
	case StatePend:
		a.pend()
	case StateSeek:
		a.seek()
	case StateAdvertise:
		a.advertise()
	case StateExecuteSession:
		a.executeSession()
	case StateExecuteHandshakeFromSeek:
		a.requestConnection()
	case StateExecuteHandshakeFromAdvertise:
		a.acceptConnection()
	case StateDispatch:
		panic("agent: dispatch dispatched to the dispatch state")
	}
}

func (a *Agent) changeState(next State) {
	a.logger.Debug().Str("from", a.State().String()).Str("to", next.String()).Msg("agent state transition")
	a.priorState = a.State()
	a.state.Store(int32(next))
}

func (a *Agent) receivePacket() (radio.Status, protocol.ReceiveBuffer) {
	var buf protocol.ReceiveBuffer
	status := a.radio.Receive(buf[:])
	return status, buf
}

func (a *Agent) dispatchNextState() {
	var next State
	switch a.Goal() {
	case GoalDisconnect:
		next = StatePend
	case GoalSeekConnection:
		next = StateSeek
	case GoalAdvertiseConnection:
		next = StateAdvertise
	case GoalSeekAndAdvertiseConnection:
		if a.priorState == StateAdvertise {
			next = StateSeek
		} else {
			next = StateAdvertise
		}
	default:
		next = StatePend
	}
	a.changeState(next)
}

func (a *Agent) pend() {
	a.ready.Store(true)
	time.Sleep(a.cfg.PendSleepTime)
	a.changeState(StateDispatch)
}

func (a *Agent) seek() {
	status, buf := a.receivePacket()
	if status != radio.StatusSuccess {
		a.changeState(StateDispatch)
		return
	}
	ad, err := protocol.DeserializeAdvertising(buf[:])
	if err != nil {
		a.changeState(StateDispatch)
		return
	}
	agentmetrics.RecordReceive(protocol.TagAdvertising)
	a.logger.Debug().Uint32("source_address", ad.SourceAddress).Msg("received advertising packet")

	addr := ad.SourceAddress
	a.advertiserAddress = &addr
	a.changeState(StateExecuteHandshakeFromSeek)
}

func (a *Agent) requestConnection() {
	if a.advertiserAddress == nil {
		panic("agent: requestConnection with no advertiser address")
	}
	req := protocol.ConnectionRequestPacket{
		SourceAddress: a.address,
		TargetAddress: *a.advertiserAddress,
	}
	a.advertiserAddress = nil

	buf := protocol.SerializeConnectionRequest(req)
	a.radio.Transmit(buf)
	agentmetrics.RecordTransmit(protocol.TagConnectionRequest)
	a.logger.Debug().Uint32("target_address", req.TargetAddress).Msg("transmitted connection request")

	deadline := time.Now().Add(a.cfg.HandshakeReceiveDuration)
	for time.Now().Before(deadline) {
		status, recvBuf := a.receivePacket()
		if status != radio.StatusSuccess {
			continue
		}
		resp, err := protocol.DeserializeConnectionAccept(recvBuf[:])
		if err != nil {
			continue
		}
		agentmetrics.RecordReceive(protocol.TagConnectionAccept)
		if resp.TargetAddress != a.address {
			continue
		}

		startTime := wiretime.Local(resp.SessionStartTime)
		a.session = session.New(resp.SessionID, startTime, false, session.Config{
			TransmitDuration:  a.cfg.HardcodedTransmissionTime,
			GapDuration:       a.cfg.HardcodedSleepTime,
			TimeoutLimit:      a.cfg.SessionTimeoutLimit,
			SpinloopThreshold: a.cfg.SessionSpinloopThreshold,
		}, a.logger)
		agentmetrics.RecordHandshakeCompleted("seeker")
		a.ready.Store(true)
		a.changeState(StateExecuteSession)
		a.session.SleepUntilStartTime()
		return
	}

	a.logger.Debug().Msg("connection request timed out waiting for accept")
	a.changeState(StateDispatch)
}

func (a *Agent) advertise() {
	advert := protocol.AdvertisingPacket{SourceAddress: a.address}
	a.radio.Transmit(protocol.SerializeAdvertising(advert))
	agentmetrics.RecordTransmit(protocol.TagAdvertising)

	deadline := time.Now().Add(a.cfg.ConnectionRequestInterval)
	for time.Now().Before(deadline) {
		status, buf := a.receivePacket()
		if status != radio.StatusSuccess {
			continue
		}
		req, err := protocol.DeserializeConnectionRequest(buf[:])
		if err != nil {
			continue
		}
		agentmetrics.RecordReceive(protocol.TagConnectionRequest)
		if req.TargetAddress != a.address {
			continue
		}

		addr := req.SourceAddress
		a.requesterAddress = &addr
		a.changeState(StateExecuteHandshakeFromAdvertise)
		return
	}

	a.changeState(StateDispatch)
}

func (a *Agent) acceptConnection() {
	if a.requesterAddress == nil {
		panic("agent: acceptConnection with no requester address")
	}
	sessionID := a.cfg.GenerateSessionID(a.address)
	startAt := wiretime.Future(a.cfg.HandshakeLeadTime)
	accept := protocol.ConnectionAcceptPacket{
		SourceAddress:    a.address,
		TargetAddress:    *a.requesterAddress,
		SessionStartTime: startAt,
		SessionID:        sessionID,
	}
	a.requesterAddress = nil

	startTime := wiretime.Local(startAt)
	a.session = session.New(sessionID, startTime, true, session.Config{
		TransmitDuration:  a.cfg.HardcodedTransmissionTime,
		GapDuration:       a.cfg.HardcodedSleepTime,
		TimeoutLimit:      a.cfg.SessionTimeoutLimit,
		SpinloopThreshold: a.cfg.SessionSpinloopThreshold,
	}, a.logger)

	status := a.radio.Transmit(protocol.SerializeConnectionAccept(accept))
	agentmetrics.RecordTransmit(protocol.TagConnectionAccept)
	if status != radio.StatusSuccess {
		a.changeState(StatePend)
		return
	}

	agentmetrics.RecordHandshakeCompleted("advertiser")
	a.ready.Store(true)
	a.changeState(StateExecuteSession)
	a.session.SleepUntilStartTime()
}

func (a *Agent) executeSession() {
	if a.session == nil {
		panic("agent: executeSession with no session")
	}
	if a.session.ExecuteCurrentAction(a.radio, a.pipe) == session.ActionSessionComplete {
		agentmetrics.RecordSessionTimeout()
		a.changeState(StatePend)
	}
	if a.Goal() == GoalDisconnect {
		a.changeState(StatePend)
	}
}
