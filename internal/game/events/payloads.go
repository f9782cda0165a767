package events

import (
	"time"

	"github.com/google/uuid"
)

// Event payload types shared between the session reconciler and the
// transport adapters.

// PlayerInfo mirrors the server's per-player roster entry inside events.
type PlayerInfo struct {
	PlayerID     uuid.UUID `json:"player_id"`
	Name         string    `json:"name"`
	Color        *int      `json:"color,omitempty"`
	IsEliminated bool      `json:"is_eliminated"`
}

// TurnChangedPayload is the payload for a TurnChanged event. TimeLeftSec is
// the server's remaining clock for the new turn, not a fresh full duration.
type TurnChangedPayload struct {
	CurrentPlayerID   uuid.UUID    `json:"current_player_id"`
	CurrentPlayerName string       `json:"current_player_name"`
	TimeLeftSec       int          `json:"time_left_sec"`
	Players           []PlayerInfo `json:"players"`
}

// ItemSolvedPayload is the payload for an ItemSolved event.
type ItemSolvedPayload struct {
	ItemID   int       `json:"item_id"`
	SolvedBy uuid.UUID `json:"solved_by"`
	Special  bool      `json:"special"`
	SolvedAt time.Time `json:"solved_at"`
}

// SelectionPhasePayload is the payload for a SelectionPhase event. The server
// broadcasts the confirmed selection map after each submission; HasDuplicates
// signals a collision, which resets every player's provisional pick.
type SelectionPhasePayload struct {
	Selections    map[uuid.UUID]int `json:"selections"`
	HasDuplicates bool              `json:"has_duplicates"`
}

// SelectionCountdownPayload is the payload for a SelectionCountdown event.
type SelectionCountdownPayload struct {
	TimeLeftSec int `json:"time_left_sec"`
}

// SelectionCompletePayload is the payload for a SelectionComplete event.
type SelectionCompletePayload struct {
	ItemsByPlayer     map[uuid.UUID]int `json:"items_by_player"`
	FirstTurnPlayerID uuid.UUID         `json:"first_turn_player_id"`
}

// SelectionFailedPayload is the payload for a SelectionFailed event.
type SelectionFailedPayload struct {
	Reason string `json:"reason"`
}

// PlayerEliminatedPayload is the payload for a PlayerEliminated event.
type PlayerEliminatedPayload struct {
	PlayerID     uuid.UUID `json:"player_id"`
	Reason       string    `json:"reason"`
	EliminatedAt time.Time `json:"eliminated_at"`
}

// GameOverPayload is the payload for a GameOver event.
type GameOverPayload struct {
	WinnerID   *uuid.UUID `json:"winner_id,omitempty"`
	WinnerName string     `json:"winner_name,omitempty"`
	EndedAt    time.Time  `json:"ended_at"`
}
