// Package session holds the client-side mirror of one game session and the
// reconciler that applies server-pushed events to it.
//
// The server owns turn order, solve attribution, and elimination. Everything
// here is a mirror: local actions only speculatively gate input, and every
// terminal decision waits for the corresponding server event. All mutation
// happens on the engine's single goroutine, so the state carries no locks;
// ordering guarantees come from the reconciler's idempotency rules instead.
package session

import (
	"github.com/google/uuid"
	"github.com/mcdev12/nameit/internal/game/rules"
	"github.com/mcdev12/nameit/internal/models"
)

// State is the full client-side view of one game session. One State per game
// screen; nothing is shared across sessions.
type State struct {
	SessionID     uuid.UUID
	LocalPlayerID uuid.UUID
	Variant       rules.Variant

	Status models.SessionStatus

	Items     []*models.Item
	itemsByID map[int]*models.Item

	Players map[uuid.UUID]*models.Player

	Turn      models.TurnState
	Selection *models.SelectionState
	Result    *models.GameResult

	// SelectionCountdownSec mirrors the shared pre-game countdown broadcast.
	SelectionCountdownSec int

	selectionDone   bool // one-shot latch for SelectionComplete
	solvedCount     int
	perPlayerSolved map[uuid.UUID]int
}

// NewState builds the session mirror for a loaded board. Variants with a
// selection phase start in Selecting; classic games go straight to Playing.
func NewState(sessionID, localPlayerID uuid.UUID, variant rules.Variant, turnDurationSec int, items []*models.Item) *State {
	byID := make(map[int]*models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	status := models.SessionStatusPlaying
	if variant.SelectionRequired {
		status = models.SessionStatusSelecting
	}

	return &State{
		SessionID:     sessionID,
		LocalPlayerID: localPlayerID,
		Variant:       variant,
		Status:        status,
		Items:         items,
		itemsByID:     byID,
		Players:       make(map[uuid.UUID]*models.Player),
		Turn: models.TurnState{
			TurnDurationSeconds: turnDurationSec,
		},
		Selection:       models.NewSelectionState(),
		perPlayerSolved: make(map[uuid.UUID]int),
	}
}

// Item returns the item with the given ID, or nil.
func (s *State) Item(id int) *models.Item {
	return s.itemsByID[id]
}

// GameOver reports whether the session has reached its terminal state.
func (s *State) GameOver() bool {
	return s.Status == models.SessionStatusGameOver
}

// IsMyTurn reports whether the local player currently holds the turn.
func (s *State) IsMyTurn() bool {
	return s.Turn.CurrentPlayerID == s.LocalPlayerID
}

// IsEliminated reports whether the given player is in the eliminated set.
func (s *State) IsEliminated(playerID uuid.UUID) bool {
	p, ok := s.Players[playerID]
	return ok && p.IsEliminated
}

// InputEnabled reports whether the local player may act right now.
// Elimination takes precedence over everything: a stale turn event naming an
// eliminated player never re-enables their input.
func (s *State) InputEnabled() bool {
	if s.GameOver() || s.IsEliminated(s.LocalPlayerID) {
		return false
	}
	switch s.Status {
	case models.SessionStatusSelecting:
		return s.Selection != nil && !s.Selection.Frozen
	case models.SessionStatusPlaying:
		return s.IsMyTurn()
	default:
		return false
	}
}

// MySelection returns the local player's provisional secret-item pick, or nil.
func (s *State) MySelection() *int {
	if s.Selection == nil {
		return nil
	}
	return s.Selection.MySelection
}

// SetProvisionalSelection records the local player's pick ahead of server
// confirmation. A later duplicate-collision broadcast clears it again.
func (s *State) SetProvisionalSelection(itemID int) {
	if s.Selection == nil || s.Selection.Frozen {
		return
	}
	id := itemID
	s.Selection.MySelection = &id
}

// SolvedCount returns how many items have been solved so far.
func (s *State) SolvedCount() int {
	return s.solvedCount
}

// PlayerSolvedCount returns how many items the given player has solved.
func (s *State) PlayerSolvedCount(playerID uuid.UUID) int {
	return s.perPlayerSolved[playerID]
}

// eliminate adds a player to the eliminated set. Additive only; there is no
// way back for the rest of the session.
func (s *State) eliminate(playerID uuid.UUID) bool {
	p, ok := s.Players[playerID]
	if !ok {
		p = &models.Player{ID: playerID}
		s.Players[playerID] = p
	}
	if p.IsEliminated {
		return false
	}
	p.IsEliminated = true
	return true
}

// buildResult freezes the terminal game summary.
func (s *State) buildResult(winner *models.Player) {
	perPlayer := make(map[uuid.UUID]int, len(s.perPlayerSolved))
	for id, n := range s.perPlayerSolved {
		perPlayer[id] = n
	}
	s.Result = &models.GameResult{
		Winner:               winner,
		SolvedCount:          s.solvedCount,
		TotalItems:           len(s.Items),
		PerPlayerSolvedCount: perPlayer,
	}
}
