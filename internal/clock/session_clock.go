package clock

import "time"

// SessionClock is the initiator's view of a session's slot schedule. Period
// Tp = 2*(TransmitDuration+GapDuration); within one period the schedule is
// [Transmit][Inactive gap][Receive][Inactive gap]. The follower's schedule
// is this one with Transmit and Receive swapped — that swap is the session
// engine's job (LocalizeActionKind), not the clock's, so one SessionClock
// serves both roles.
type SessionClock struct {
	startTime        time.Time
	transmitDuration time.Duration
	gapDuration      time.Duration
}

func NewSessionClock(start time.Time, transmitDuration, gapDuration time.Duration) *SessionClock {
	return &SessionClock{
		startTime:        start,
		transmitDuration: transmitDuration,
		gapDuration:      gapDuration,
	}
}

func (c *SessionClock) StartTime() time.Time { return c.startTime }

// Period returns Tp, the cycle of one initiator-transmit + one
// follower-transmit.
func (c *SessionClock) Period() time.Duration {
	return 2 * (c.transmitDuration + c.gapDuration)
}

func (c *SessionClock) elapsedInPeriod(t time.Time) time.Duration {
	return ElapsedSinceStart(c.startTime, t) % c.Period()
}

func (c *SessionClock) ActionKindAt(t time.Time) ActionKind {
	checkPrecondition(c.startTime, t)
	elapsed := c.elapsedInPeriod(t)
	switch {
	case elapsed < c.transmitDuration:
		return Transmitting
	case elapsed < c.transmitDuration+c.gapDuration:
		return Inactive
	case elapsed < 2*c.transmitDuration+c.gapDuration:
		return Receiving
	default:
		return Inactive
	}
}

func (c *SessionClock) TimeOfNextAction(t time.Time) time.Time {
	checkPrecondition(c.startTime, t)
	elapsed := c.elapsedInPeriod(t)
	t0 := t.Add(-elapsed)
	switch {
	case elapsed < c.transmitDuration:
		return t0.Add(c.transmitDuration)
	case elapsed < c.transmitDuration+c.gapDuration:
		return t0.Add(c.transmitDuration + c.gapDuration)
	case elapsed < 2*c.transmitDuration+c.gapDuration:
		return t0.Add(2*c.transmitDuration + c.gapDuration)
	default:
		return t0.Add(c.Period())
	}
}
