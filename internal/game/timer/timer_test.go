package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTick(t *testing.T) {
	s := State{Remaining: 2, Running: true}

	s, expired := s.Tick()
	assert.False(t, expired)
	assert.Equal(t, State{Remaining: 1, Running: true}, s)

	s, expired = s.Tick()
	assert.True(t, expired)
	assert.Equal(t, State{Remaining: 0, Running: false}, s)

	// Further ticks on an expired clock are no-ops: expiry fires once.
	s, expired = s.Tick()
	assert.False(t, expired)
	assert.Equal(t, State{Remaining: 0, Running: false}, s)
}

func TestStateTick_StoppedClockDoesNotMove(t *testing.T) {
	s := State{Remaining: 5, Running: false}

	next, expired := s.Tick()
	assert.False(t, expired)
	assert.Equal(t, s, next)
}

// nextTick advances the fake clock until the timer produces a tick. Advances
// before the ticker registers with the fake clock are lost, so we retry; the
// tick channel is ordered, so the first read is always the next countdown
// value regardless of extra advances.
func nextTick(t *testing.T, fc *clockwork.FakeClock, tt *TurnTimer) int {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		fc.Advance(time.Second)
		select {
		case remaining := <-tt.Ticks():
			return remaining
		case <-deadline:
			t.Fatal("timed out waiting for timer tick")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTurnTimer_CountsDownAndExpiresOnce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt := NewTurnTimer(fc)

	tt.Start(2)
	assert.Equal(t, 2, tt.Remaining())

	assert.Equal(t, 1, nextTick(t, fc, tt))
	assert.Equal(t, 0, nextTick(t, fc, tt))

	select {
	case <-tt.Expired():
	case <-time.After(time.Second):
		t.Fatal("expected expiry signal")
	}

	// The run is over; more clock movement produces no second expiry.
	fc.Advance(5 * time.Second)
	select {
	case <-tt.Expired():
		t.Fatal("expiry fired twice")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, tt.Snapshot().Running)
}

func TestTurnTimer_ResetUsesServerRemaining(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt := NewTurnTimer(fc)

	tt.Start(10)
	for want := 9; want >= 3; want-- {
		require.Equal(t, want, nextTick(t, fc, tt))
	}

	// Server says 7 with 3 left locally: display must restart from 7, not
	// continue from 3 and not add the two together.
	tt.Start(7)
	assert.Equal(t, 7, tt.Remaining())
	assert.Equal(t, 6, nextTick(t, fc, tt))
}

func TestTurnTimer_StopIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt := NewTurnTimer(fc)

	tt.Start(5)
	tt.Stop()
	tt.Stop()

	assert.False(t, tt.Snapshot().Running)

	fc.Advance(10 * time.Second)
	select {
	case <-tt.Ticks():
		t.Fatal("stopped timer ticked")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTurnTimer_StopBeforeStartIsNoOp(t *testing.T) {
	tt := NewTurnTimer(clockwork.NewFakeClock())
	tt.Stop()
	assert.Equal(t, State{}, tt.Snapshot())
}

func TestTurnTimer_RestartDiscardsStaleExpiry(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt := NewTurnTimer(fc)

	tt.Start(1)
	require.Equal(t, 0, nextTick(t, fc, tt))
	// Expiry is now pending but unconsumed.

	tt.Start(5)
	select {
	case <-tt.Expired():
		t.Fatal("stale expiry leaked into the new run")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 5, tt.Remaining())
	assert.Equal(t, 4, nextTick(t, fc, tt))
}

func TestTurnTimer_NonPositiveDurationDoesNotStart(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt := NewTurnTimer(fc)

	tt.Start(0)
	assert.False(t, tt.Snapshot().Running)
}
