package agent

// State is a node in the agent's outer state machine.
type State int

const (
	StateDispatch State = iota
	StatePend
	StateAdvertise
	StateSeek
	StateExecuteHandshakeFromSeek
	StateExecuteHandshakeFromAdvertise
	StateExecuteSession
)

func (s State) String() string {
	switch s {
	case StateDispatch:
		return "Dispatch"
	case StatePend:
		return "Pend"
	case StateAdvertise:
		return "Advertise"
	case StateSeek:
		return "Seek"
	case StateExecuteHandshakeFromSeek:
		return "ExecuteHandshakeFromSeek"
	case StateExecuteHandshakeFromAdvertise:
		return "ExecuteHandshakeFromAdvertise"
	case StateExecuteSession:
		return "ExecuteSession"
	default:
		return "Unknown"
	}
}

// Goal is what an operator wants the agent to be doing. dispatchNextState
// reads this on every pass through StateDispatch.
type Goal int

const (
	GoalDisconnect Goal = iota
	GoalSeekConnection
	GoalAdvertiseConnection
	GoalSeekAndAdvertiseConnection
)

func (g Goal) String() string {
	switch g {
	case GoalDisconnect:
		return "Disconnect"
	case GoalSeekConnection:
		return "SeekConnection"
	case GoalAdvertiseConnection:
		return "AdvertiseConnection"
	case GoalSeekAndAdvertiseConnection:
		return "SeekAndAdvertiseConnection"
	default:
		return "Unknown"
	}
}
