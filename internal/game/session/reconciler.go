package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/nameit/internal/game/events"
	"github.com/mcdev12/nameit/internal/game/rules"
	"github.com/mcdev12/nameit/internal/models"
	"github.com/rs/zerolog/log"
)

// Effects tells the engine what side effects an applied event calls for.
// The reconciler itself only mutates session state; timers and outbound
// intents stay with the engine.
type Effects struct {
	// ResetTimerSec restarts the turn timer from the server's remaining
	// clock when >= 0. Negative means leave the timer alone.
	ResetTimerSec int

	// StartedPlaying is set when the one-shot SelectionComplete latch fires.
	StartedPlaying bool

	// SelectionsReset is set when a duplicate-collision broadcast cleared
	// every player's provisional pick.
	SelectionsReset bool

	// SelectionFailedReason carries a server-side selection rejection to
	// surface to the user. Empty when none.
	SelectionFailedReason string

	// ReportEliminate names a player the variant rules eliminated on this
	// solve. The engine reports it; the authoritative elimination arrives
	// back as a PlayerEliminated event.
	ReportEliminate *uuid.UUID
	EliminateReason string

	// GameOver is set when the terminal event was applied.
	GameOver bool
}

func noEffects() Effects {
	return Effects{ResetTimerSec: -1}
}

// Reconciler applies server-pushed events to a session state idempotently.
// Duplicate or stale deliveries are absorbed here and never surface as user
// visible errors.
type Reconciler struct {
	state *State
}

// NewReconciler creates a reconciler bound to one session state.
func NewReconciler(state *State) *Reconciler {
	return &Reconciler{state: state}
}

// Apply routes an event to its handler and returns the side effects the
// engine should run. Unknown event types are ignored.
func (r *Reconciler) Apply(event *events.GameEvent) (Effects, error) {
	payload, err := events.ParseEventPayload(event)
	if err != nil {
		return noEffects(), fmt.Errorf("parse %s payload: %w", event.Type, err)
	}
	if payload == nil {
		log.Warn().Str("event_type", string(event.Type)).Msg("unknown event type - ignoring")
		return noEffects(), nil
	}

	// Once the terminal event is in, nothing may mutate turn or selection
	// state. GameOver re-deliveries are still routed so they stay no-ops.
	if r.state.GameOver() && event.Type != events.EventTypeGameOver {
		log.Debug().
			Str("event_type", string(event.Type)).
			Msg("ignoring event after game over")
		return noEffects(), nil
	}

	switch p := payload.(type) {
	case events.TurnChangedPayload:
		return r.applyTurnChanged(p), nil
	case events.ItemSolvedPayload:
		return r.applyItemSolved(p), nil
	case events.SelectionPhasePayload:
		return r.applySelectionPhase(p), nil
	case events.SelectionCountdownPayload:
		return r.applySelectionCountdown(p), nil
	case events.SelectionCompletePayload:
		return r.applySelectionComplete(p), nil
	case events.SelectionFailedPayload:
		return r.applySelectionFailed(p), nil
	case events.PlayerEliminatedPayload:
		return r.applyPlayerEliminated(p), nil
	case events.GameOverPayload:
		return r.applyGameOver(p), nil
	default:
		return noEffects(), nil
	}
}

// applyTurnChanged supersedes the prior turn state unconditionally and syncs
// the roster. The timer restarts from the server's remaining clock, not a
// fresh full duration, so local and server clocks cannot drift for long.
func (r *Reconciler) applyTurnChanged(p events.TurnChangedPayload) Effects {
	s := r.state

	for _, info := range p.Players {
		player, ok := s.Players[info.PlayerID]
		if !ok {
			player = &models.Player{ID: info.PlayerID}
			s.Players[info.PlayerID] = player
		}
		player.Name = info.Name
		if info.Color != nil {
			c := models.ColorID(*info.Color)
			player.Color = &c
		}
		// Elimination only ever grows: a stale roster snapshot cannot
		// resurrect an eliminated player.
		if info.IsEliminated {
			player.IsEliminated = true
		}
	}

	s.Turn.CurrentPlayerID = p.CurrentPlayerID
	s.Turn.CurrentPlayerName = p.CurrentPlayerName
	s.Turn.RemainingSeconds = p.TimeLeftSec

	log.Debug().
		Str("current_player_id", p.CurrentPlayerID.String()).
		Int("time_left_sec", p.TimeLeftSec).
		Msg("turn changed")

	eff := noEffects()
	eff.ResetTimerSec = p.TimeLeftSec
	return eff
}

// applyItemSolved marks an item solved exactly once. Re-delivery with the
// same item ID is a no-op: solved stays true and attribution is unchanged.
func (r *Reconciler) applyItemSolved(p events.ItemSolvedPayload) Effects {
	s := r.state

	item := s.Item(p.ItemID)
	if item == nil {
		log.Warn().Int("item_id", p.ItemID).Msg("solve event for unknown item - ignoring")
		return noEffects()
	}
	if item.Solved {
		log.Debug().Int("item_id", p.ItemID).Msg("duplicate solve event - ignoring")
		return noEffects()
	}

	solvedBy := p.SolvedBy
	item.Solved = true
	item.SolvedBy = &solvedBy
	if p.Special {
		item.IsSpecial = true
		item.SpecialKind = s.Variant.SpecialKind
	}
	s.solvedCount++
	s.perPlayerSolved[solvedBy]++

	log.Debug().
		Int("item_id", p.ItemID).
		Str("solved_by", solvedBy.String()).
		Bool("special", p.Special).
		Msg("item solved")

	eff := noEffects()
	if s.Selection != nil {
		if target, ok := s.Variant.EliminationTarget(p.ItemID, solvedBy, s.Selection.AllSelections); ok {
			t := target
			eff.ReportEliminate = &t
			if s.Variant.EliminationDirection == rules.EliminateSolver {
				eff.EliminateReason = "stepped on a trap"
			} else {
				eff.EliminateReason = "secret item found"
			}
		}
	}
	return eff
}

// applySelectionPhase mirrors the server's confirmed selection map. A
// collision clears every player's provisional pick; the retry is global,
// not per player.
func (r *Reconciler) applySelectionPhase(p events.SelectionPhasePayload) Effects {
	s := r.state
	if s.Selection == nil || s.Selection.Frozen {
		log.Debug().Msg("selection phase event after completion - ignoring")
		return noEffects()
	}

	eff := noEffects()
	if p.HasDuplicates {
		s.Selection.Reset()
		s.Selection.HasDuplicates = true
		eff.SelectionsReset = true
		log.Info().Msg("duplicate selections detected - all picks reset")
		return eff
	}

	s.Selection.HasDuplicates = false
	s.Selection.AllSelections = make(map[uuid.UUID]int, len(p.Selections))
	for playerID, itemID := range p.Selections {
		s.Selection.AllSelections[playerID] = itemID
	}
	return eff
}

// applySelectionCountdown drives the shared pre-game countdown display.
func (r *Reconciler) applySelectionCountdown(p events.SelectionCountdownPayload) Effects {
	s := r.state
	if s.selectionDone || s.Selection == nil || s.Selection.Frozen {
		return noEffects()
	}
	s.Status = models.SessionStatusAwaitingCountdown
	s.SelectionCountdownSec = p.TimeLeftSec
	return noEffects()
}

// applySelectionComplete is guarded by a one-shot latch: only the first
// delivery transitions to Playing; duplicates under at-least-once delivery
// are discarded without starting a second timer.
func (r *Reconciler) applySelectionComplete(p events.SelectionCompletePayload) Effects {
	s := r.state
	if s.selectionDone {
		log.Debug().Msg("duplicate selection complete event - ignoring")
		return noEffects()
	}
	s.selectionDone = true

	s.Selection.AllSelections = make(map[uuid.UUID]int, len(p.ItemsByPlayer))
	for playerID, itemID := range p.ItemsByPlayer {
		s.Selection.AllSelections[playerID] = itemID
		if item := s.Item(itemID); item != nil {
			item.IsSpecial = true
			item.SpecialKind = s.Variant.SpecialKind
		}
		if playerID == s.LocalPlayerID {
			id := itemID
			s.Selection.MySelection = &id
		}
	}
	s.Selection.HasDuplicates = false
	s.Selection.Frozen = true

	s.Status = models.SessionStatusPlaying
	s.Turn.CurrentPlayerID = p.FirstTurnPlayerID
	s.Turn.RemainingSeconds = s.Turn.TurnDurationSeconds

	log.Info().
		Str("first_turn_player_id", p.FirstTurnPlayerID.String()).
		Int("selections", len(p.ItemsByPlayer)).
		Msg("selection phase complete - game starting")

	eff := noEffects()
	eff.StartedPlaying = true
	eff.ResetTimerSec = s.Turn.TurnDurationSeconds
	return eff
}

// applySelectionFailed surfaces a server-side selection rejection and clears
// the local provisional pick so the player can retry.
func (r *Reconciler) applySelectionFailed(p events.SelectionFailedPayload) Effects {
	s := r.state
	if s.Selection == nil || s.Selection.Frozen {
		return noEffects()
	}
	s.Selection.MySelection = nil

	log.Info().Str("reason", p.Reason).Msg("selection rejected by server")

	eff := noEffects()
	eff.SelectionFailedReason = p.Reason
	return eff
}

// applyPlayerEliminated grows the eliminated set. Re-delivery is a no-op.
// Turn skipping for eliminated players is the server's decision; the client
// only reflects it through subsequent TurnChanged events.
func (r *Reconciler) applyPlayerEliminated(p events.PlayerEliminatedPayload) Effects {
	s := r.state
	if !s.eliminate(p.PlayerID) {
		log.Debug().Str("player_id", p.PlayerID.String()).Msg("duplicate elimination event - ignoring")
		return noEffects()
	}

	log.Info().
		Str("player_id", p.PlayerID.String()).
		Str("reason", p.Reason).
		Msg("player eliminated")
	return noEffects()
}

// applyGameOver freezes the session. The terminal state comes only from this
// explicit server event, never from local elimination counting.
func (r *Reconciler) applyGameOver(p events.GameOverPayload) Effects {
	s := r.state
	if s.GameOver() {
		log.Debug().Msg("duplicate game over event - ignoring")
		return noEffects()
	}

	s.Status = models.SessionStatusGameOver
	if s.Selection != nil {
		s.Selection.Frozen = true
	}

	var winner *models.Player
	if p.WinnerID != nil {
		if known, ok := s.Players[*p.WinnerID]; ok {
			winner = known
		} else {
			winner = &models.Player{ID: *p.WinnerID, Name: p.WinnerName}
		}
	}
	s.buildResult(winner)

	log.Info().
		Int("solved_count", s.solvedCount).
		Int("total_items", len(s.Items)).
		Msg("game over")

	eff := noEffects()
	eff.GameOver = true
	return eff
}
