// Package timer implements the per-turn countdown clock.
//
// The countdown itself is a plain value (State) advanced by Tick, so the
// expiry rules are testable without waiting on a wall clock. TurnTimer wraps
// that value with a clockwork ticker at one-second resolution. The server
// clock stays authoritative: every turn-changed event restarts this timer
// from the server-supplied remaining time, the local countdown is only
// display feedback and the local auto-fail trigger.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// State is the countdown value: seconds remaining and whether the clock is
// running. Zero value is a stopped, empty clock.
type State struct {
	Remaining int
	Running   bool
}

// Tick advances the countdown by one second. It reports expiry exactly once:
// the tick that reaches zero also stops the clock, so further ticks are
// no-ops until the next Start.
func (s State) Tick() (State, bool) {
	if !s.Running || s.Remaining <= 0 {
		return s, false
	}

	s.Remaining--
	if s.Remaining <= 0 {
		s.Remaining = 0
		s.Running = false
		return s, true
	}
	return s, false
}

// TurnTimer drives a State with a real (or fake) clock. One timer instance
// serves a whole session; Start implicitly stops any prior run, so at most
// one ticker loop is live at a time.
type TurnTimer struct {
	clock clockwork.Clock

	mu     sync.Mutex
	state  State
	gen    int           // run generation; stale ticker loops check it and bail
	stopCh chan struct{} // closed to end the current run

	expiredCh chan struct{}
	tickCh    chan int
}

// NewTurnTimer creates a timer bound to the given clock.
func NewTurnTimer(clock clockwork.Clock) *TurnTimer {
	return &TurnTimer{
		clock:     clock,
		expiredCh: make(chan struct{}, 1),
		tickCh:    make(chan int, 64),
	}
}

// Expired delivers exactly one signal per run that counts down to zero.
// It does not re-fire until the timer is started again.
func (t *TurnTimer) Expired() <-chan struct{} {
	return t.expiredCh
}

// Ticks delivers the remaining-seconds value after each tick, for display.
// Slow consumers lose ticks rather than stalling the countdown.
func (t *TurnTimer) Ticks() <-chan int {
	return t.tickCh
}

// Remaining returns the current remaining seconds.
func (t *TurnTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Remaining
}

// Snapshot returns the current countdown state.
func (t *TurnTimer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start resets the countdown to durationSeconds and begins ticking. Any
// running countdown is stopped first, and a pending unconsumed expiry from a
// previous run is discarded so it cannot fire into the new turn.
func (t *TurnTimer) Start(durationSeconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	// Drain stale signals left over from a prior run so they cannot fire
	// into the new turn. Serialized with tick() by the mutex.
	select {
	case <-t.expiredCh:
	default:
	}
	for {
		select {
		case <-t.tickCh:
			continue
		default:
		}
		break
	}

	if durationSeconds <= 0 {
		log.Debug().Int("duration_sec", durationSeconds).Msg("turn timer start skipped for non-positive duration")
		return
	}

	t.state = State{Remaining: durationSeconds, Running: true}
	t.gen++
	t.stopCh = make(chan struct{})

	go t.run(t.gen, t.stopCh)

	log.Debug().Int("duration_sec", durationSeconds).Msg("turn timer started")
}

// Reset is stop followed by start with the given duration.
func (t *TurnTimer) Reset(durationSeconds int) {
	t.Start(durationSeconds)
}

// Stop halts the countdown. Repeated calls are no-ops.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *TurnTimer) stopLocked() {
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.state.Running = false
}

func (t *TurnTimer) run(gen int, stopCh chan struct{}) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			if !t.tick(gen) {
				return
			}
		}
	}
}

// tick advances the state for the given run generation. Returns false once
// this run is over, either because it expired or because a newer run owns
// the state.
func (t *TurnTimer) tick(gen int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		return false
	}

	next, expired := t.state.Tick()
	t.state = next

	// Both sends happen under the lock, non-blocking on buffered channels,
	// so Start's stale-signal drain cannot race a dying run's delivery.
	if expired {
		select {
		case t.expiredCh <- struct{}{}:
		default:
		}
	}
	select {
	case t.tickCh <- next.Remaining:
	default:
	}

	if expired {
		log.Debug().Msg("turn timer expired")
		return false
	}

	return next.Running
}
