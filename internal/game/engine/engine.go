// Package engine runs one game session end to end: it owns the event loop
// that interleaves server-pushed events, local input, and turn-timer expiry
// on a single goroutine, so session state never needs locking.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/nameit/internal/game/events"
	"github.com/mcdev12/nameit/internal/game/match"
	"github.com/mcdev12/nameit/internal/game/rules"
	"github.com/mcdev12/nameit/internal/game/session"
	"github.com/mcdev12/nameit/internal/game/timer"
	"github.com/mcdev12/nameit/internal/models"
	"github.com/rs/zerolog/log"
)

// Gateway defines what the engine needs from the network transport. Intents
// are fire-and-forget; the authoritative outcome always arrives back on the
// event channel.
type Gateway interface {
	// Events delivers server-pushed events in emission order. The channel
	// closes when the underlying feed is gone for good.
	Events() <-chan *events.GameEvent

	// Send transmits an outbound intent.
	Send(ctx context.Context, intent events.Intent) error

	// Close tears the transport down.
	Close() error
}

// ErrClosed is returned by Submit calls after the engine has shut down.
var ErrClosed = errors.New("engine closed")

type submissionKind int

const (
	submitAnswer submissionKind = iota
	submitSelection
)

type submission struct {
	kind submissionKind
	raw  string
}

// Engine coordinates one session. Construct with NewEngine, drive with Run,
// feed with SubmitAnswer / SubmitSelection from the UI layer, observe
// through Notices and the session state snapshot accessors.
type Engine struct {
	state     *session.State
	rec       *session.Reconciler
	turnTimer *timer.TurnTimer
	gateway   Gateway
	clock     clockwork.Clock
	variant   rules.Variant

	submitCh chan submission
	noticeCh chan Notice

	// closed flips once, after which submissions and late event deliveries
	// are ignored. This is the liveness guard for async continuations that
	// outlive the screen.
	closed    atomic.Bool
	closeOnce sync.Once

	// awaitingServer locks local input between an emitted answer and the
	// server's verdict on it. Speculative only; the next turn-changed event
	// clears it.
	awaitingServer bool

	// left is set once the local player leaves; the timer no longer
	// auto-fails on their behalf after that.
	left bool
}

// NewEngine wires a session engine. The state should be freshly built for
// this screen; engines are not reusable across sessions.
func NewEngine(state *session.State, gateway Gateway, clock clockwork.Clock) *Engine {
	return &Engine{
		state:     state,
		rec:       session.NewReconciler(state),
		turnTimer: timer.NewTurnTimer(clock),
		gateway:   gateway,
		clock:     clock,
		variant:   state.Variant,
		submitCh:  make(chan submission, 16),
		noticeCh:  make(chan Notice, 64),
	}
}

// State exposes the session mirror. Read it from the same goroutine that
// consumes Notices, or after Run returns.
func (e *Engine) State() *session.State {
	return e.state
}

// Timer exposes the turn timer, mainly so a UI can render Ticks.
func (e *Engine) Timer() *timer.TurnTimer {
	return e.turnTimer
}

// Notices delivers user-facing notices (rejections, resets, game over).
func (e *Engine) Notices() <-chan Notice {
	return e.noticeCh
}

// SubmitAnswer queues raw typed input as an answer attempt.
func (e *Engine) SubmitAnswer(raw string) error {
	return e.submit(submission{kind: submitAnswer, raw: raw})
}

// SubmitSelection queues raw typed input as a secret-item selection.
func (e *Engine) SubmitSelection(raw string) error {
	return e.submit(submission{kind: submitSelection, raw: raw})
}

func (e *Engine) submit(sub submission) error {
	if e.closed.Load() {
		return ErrClosed
	}
	select {
	case e.submitCh <- sub:
		return nil
	default:
		// Input faster than the loop can drain it; drop rather than block
		// the UI thread.
		log.Warn().Msg("submission dropped - queue full")
		return nil
	}
}

// Run executes the session loop until the context is cancelled, the event
// feed closes, or the game reaches its terminal state and the feed drains.
// It always tears the timer and transport down before returning.
func (e *Engine) Run(ctx context.Context) error {
	defer e.teardown()

	if err := e.sendIntent(ctx, events.IntentTypeJoinGame, nil); err != nil {
		return fmt.Errorf("join game: %w", err)
	}

	log.Info().
		Str("session_id", e.state.SessionID.String()).
		Str("mode", string(e.variant.Mode)).
		Msg("session engine started")

	for {
		select {
		case <-ctx.Done():
			e.leave(context.WithoutCancel(ctx))
			return nil

		case event, ok := <-e.gateway.Events():
			if !ok {
				log.Info().Msg("event feed closed - session ending")
				return nil
			}
			e.handleEvent(ctx, event)

		case sub := <-e.submitCh:
			e.handleSubmission(ctx, sub)

		case <-e.turnTimer.Expired():
			e.handleExpiry(ctx)
		}
	}
}

// Close ends the session from outside the loop, e.g. when the screen
// unmounts. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.gateway.Close()
	})
}

func (e *Engine) teardown() {
	e.turnTimer.Stop()
	e.Close()
	log.Info().
		Str("session_id", e.state.SessionID.String()).
		Msg("session engine stopped")
}

// handleEvent applies one server event and runs its effects. Events arriving
// after Close are dropped by the liveness guard.
func (e *Engine) handleEvent(ctx context.Context, event *events.GameEvent) {
	if e.closed.Load() {
		log.Debug().Str("event_type", string(event.Type)).Msg("event after close - ignoring")
		return
	}

	eff, err := e.rec.Apply(event)
	if err != nil {
		// Malformed payloads are a feed defect, not a session killer.
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to apply event")
		return
	}

	if eff.SelectionsReset {
		e.notify(NoticeSelectionsReset, "duplicate selections - everyone picks again")
	}
	if eff.SelectionFailedReason != "" {
		e.notify(NoticeSelectionRejected, eff.SelectionFailedReason)
	}
	if eff.StartedPlaying {
		e.notify(NoticeGameStarted, "selection complete - game on")
	}

	if eff.ReportEliminate != nil {
		data := events.ReportEliminationData{
			PlayerID: *eff.ReportEliminate,
			Reason:   eff.EliminateReason,
		}
		if err := e.sendIntent(ctx, events.IntentTypeReportElimination, data); err != nil {
			log.Error().Err(err).Msg("failed to report elimination")
		}
	}

	if eff.GameOver {
		e.turnTimer.Stop()
		e.notify(NoticeGameOver, "game over")
		return
	}

	if eff.ResetTimerSec >= 0 {
		// A turn boundary from the server also releases the optimistic
		// input lock.
		e.awaitingServer = false
		e.turnTimer.Start(eff.ResetTimerSec)
	}
}

func (e *Engine) handleSubmission(ctx context.Context, sub submission) {
	switch sub.kind {
	case submitSelection:
		e.handleSelectionInput(ctx, sub.raw)
	case submitAnswer:
		e.handleAnswerInput(ctx, sub.raw)
	}
}

// handleSelectionInput validates a secret-item pick locally and forwards it.
// Invalid names are retryable and never leave the client.
func (e *Engine) handleSelectionInput(ctx context.Context, raw string) {
	if e.state.Status != models.SessionStatusSelecting || !e.state.InputEnabled() {
		log.Debug().Msg("selection input outside selection phase - ignoring")
		return
	}

	item, err := e.variant.ValidateSelection(raw, e.state.Items)
	if err != nil {
		e.notify(NoticeSelectionInvalid, fmt.Sprintf("%q does not match any item", raw))
		return
	}

	e.state.SetProvisionalSelection(item.ID)
	data := events.SubmitSelectionData{ItemID: item.ID}
	if err := e.sendIntent(ctx, events.IntentTypeSubmitSelection, data); err != nil {
		log.Error().Err(err).Int("item_id", item.ID).Msg("failed to submit selection")
	}
}

// handleAnswerInput runs input through the matcher and, when it hits,
// optimistically locks input and emits the answer intent. The item is only
// marked solved once the server confirms.
func (e *Engine) handleAnswerInput(ctx context.Context, raw string) {
	if e.awaitingServer {
		log.Debug().Msg("answer while awaiting server verdict - ignoring")
		return
	}

	isMyTurn := e.state.InputEnabled() && e.state.Status == models.SessionStatusPlaying
	item := match.FindMatch(raw, e.state.Items, isMyTurn, e.state.GameOver())
	if item == nil {
		return
	}

	if err := e.variant.CheckAnswer(item, e.state.MySelection()); err != nil {
		// Own secret item in Hide & Seek: reject locally, never transmit.
		e.notify(NoticeOwnSecretItem, "that one is your own secret item")
		return
	}

	e.awaitingServer = true
	data := events.SubmitAnswerData{ItemID: item.ID, Correct: true}
	if err := e.sendIntent(ctx, events.IntentTypeSubmitAnswer, data); err != nil {
		e.awaitingServer = false
		log.Error().Err(err).Int("item_id", item.ID).Msg("failed to submit answer")
	}
}

// handleExpiry reacts to the local countdown hitting zero. Only meaningful
// while the local player holds the turn, the game is live, and they haven't
// left; the server stays authoritative for what actually happens next.
func (e *Engine) handleExpiry(ctx context.Context) {
	if e.left || e.state.GameOver() || !e.state.IsMyTurn() || e.state.IsEliminated(e.state.LocalPlayerID) {
		return
	}

	log.Info().Msg("turn timer expired locally - auto-failing")
	e.notify(NoticeTimeExpired, "time's up")

	data := events.SubmitAnswerData{Correct: false}
	if err := e.sendIntent(ctx, events.IntentTypeSubmitAnswer, data); err != nil {
		log.Error().Err(err).Msg("failed to send auto-fail")
	}

	if e.variant.SelectionRequired {
		// Elimination variants: running out the clock costs the turn holder
		// their place in the game.
		data := events.ReportEliminationData{
			PlayerID: e.state.LocalPlayerID,
			Reason:   "turn timer expired",
		}
		if err := e.sendIntent(ctx, events.IntentTypeReportElimination, data); err != nil {
			log.Error().Err(err).Msg("failed to report self elimination")
		}
		e.awaitingServer = true
	}
}

func (e *Engine) leave(ctx context.Context) {
	if e.left {
		return
	}
	e.left = true
	if err := e.sendIntent(ctx, events.IntentTypeLeaveGame, nil); err != nil {
		log.Debug().Err(err).Msg("leave intent not delivered")
	}
}

func (e *Engine) sendIntent(ctx context.Context, intentType events.IntentType, payload interface{}) error {
	intent, err := events.NewIntent(e.state.SessionID, e.state.LocalPlayerID, intentType, payload, e.clock.Now())
	if err != nil {
		return err
	}
	return e.gateway.Send(ctx, intent)
}

func (e *Engine) notify(kind NoticeKind, message string) {
	select {
	case e.noticeCh <- Notice{Kind: kind, Message: message, At: e.clock.Now()}:
	default:
		log.Warn().Str("kind", string(kind)).Msg("notice dropped - channel full")
	}
}
