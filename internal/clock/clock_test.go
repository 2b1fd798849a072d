package clock

import (
	"testing"
	"time"

	"github.com/danmuck/bcp/internal/testutil/testlog"
)

func swap(k ActionKind) ActionKind {
	switch k {
	case Transmitting:
		return Receiving
	case Receiving:
		return Transmitting
	default:
		return Inactive
	}
}

func TestSessionClockScheduleSymmetry(t *testing.T) {
	testlog.Start(t)
	start := time.Now()
	tx := 10 * time.Millisecond
	gap := 5 * time.Millisecond
	c := NewSessionClock(start, tx, gap)

	period := c.Period()
	step := time.Millisecond
	for elapsed := time.Duration(0); elapsed < 10*period; elapsed += step {
		tm := start.Add(elapsed)
		initiatorKind := c.ActionKindAt(tm)
		followerKind := swap(initiatorKind)
		gotInitiator := c.ActionKindAt(tm)
		if gotInitiator != initiatorKind {
			t.Fatalf("non-deterministic action kind at elapsed=%v", elapsed)
		}
		if swap(followerKind) != gotInitiator {
			t.Fatalf("schedule asymmetry at elapsed=%v: initiator=%v follower=%v", elapsed, initiatorKind, followerKind)
		}
	}
}

func TestSessionClockActionSequence(t *testing.T) {
	testlog.Start(t)
	start := time.Now()
	tx := 10 * time.Millisecond
	gap := 5 * time.Millisecond
	c := NewSessionClock(start, tx, gap)

	cases := []struct {
		offset time.Duration
		want   ActionKind
	}{
		{0, Transmitting},
		{9 * time.Millisecond, Transmitting},
		{10 * time.Millisecond, Inactive},
		{14 * time.Millisecond, Inactive},
		{15 * time.Millisecond, Receiving},
		{24 * time.Millisecond, Receiving},
		{25 * time.Millisecond, Inactive},
		{29 * time.Millisecond, Inactive},
		{30 * time.Millisecond, Transmitting}, // next period
	}
	for _, tc := range cases {
		got := c.ActionKindAt(start.Add(tc.offset))
		if got != tc.want {
			t.Fatalf("offset=%v: got %v, want %v", tc.offset, got, tc.want)
		}
	}
}

func TestSessionClockTimeOfNextAction(t *testing.T) {
	testlog.Start(t)
	start := time.Now()
	c := NewSessionClock(start, 10*time.Millisecond, 5*time.Millisecond)
	next := c.TimeOfNextAction(start.Add(3 * time.Millisecond))
	want := start.Add(10 * time.Millisecond)
	if !next.Equal(want) {
		t.Fatalf("got %v, want %v", next, want)
	}
}

func TestAdvertisingClockActionSequence(t *testing.T) {
	testlog.Start(t)
	start := time.Now()
	c := NewAdvertisingClock(start, 200*time.Millisecond, 350*time.Millisecond, 0)
	if got := c.ActionKindAt(start); got != Transmitting {
		t.Fatalf("at start: got %v, want Transmitting", got)
	}
	if got := c.ActionKindAt(start.Add(250 * time.Millisecond)); got != Receiving {
		t.Fatalf("in response window: got %v, want Receiving", got)
	}
}

func TestClockPreconditionPanics(t *testing.T) {
	testlog.Start(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for time before start")
		}
	}()
	start := time.Now()
	c := NewSessionClock(start, time.Millisecond, time.Millisecond)
	c.ActionKindAt(start.Add(-time.Second))
}
