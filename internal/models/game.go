package models

import (
	"github.com/google/uuid"
)

// Mode defines the game variant for a session.
type Mode string

const (
	ModeClassic  Mode = "CLASSIC"
	ModeHideSeek Mode = "HIDE_SEEK"
	ModeTrap     Mode = "TRAP"
)

// SpecialKind defines the role a special item plays in a variant.
type SpecialKind string

const (
	SpecialKindNone     SpecialKind = ""
	SpecialKindHideSeek SpecialKind = "HIDE_SEEK"
	SpecialKindTrap     SpecialKind = "TRAP"
)

// SessionStatus defines the lifecycle stage of a game session.
type SessionStatus string

const (
	SessionStatusSelecting         SessionStatus = "SELECTING"
	SessionStatusAwaitingCountdown SessionStatus = "AWAITING_COUNTDOWN"
	SessionStatusPlaying           SessionStatus = "PLAYING"
	SessionStatusGameOver          SessionStatus = "GAME_OVER"
)

// Item represents one entry on the sprite board. Solve attribution is only
// ever written from server-confirmed events, never from local matching.
type Item struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	CorrectAnswers []string    `json:"correct_answers"`
	Order          int         `json:"order"`
	Solved         bool        `json:"solved"`
	SolvedBy       *uuid.UUID  `json:"solved_by,omitempty"`
	IsSpecial      bool        `json:"is_special"`
	SpecialKind    SpecialKind `json:"special_kind,omitempty"`
}

// ColorID identifies a player color slot. Uniqueness across active players
// is enforced server-side; the client only mirrors it.
type ColorID int

// Player represents one participant in a session.
type Player struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Color        *ColorID  `json:"color,omitempty"`
	IsEliminated bool      `json:"is_eliminated"`
}

// TurnState tracks whose turn it is and how much time remains. Remaining time
// is authoritative only immediately after a turn-changed event; between events
// it only counts down locally.
type TurnState struct {
	CurrentPlayerID     uuid.UUID `json:"current_player_id"`
	CurrentPlayerName   string    `json:"current_player_name"`
	RemainingSeconds    int       `json:"remaining_seconds"`
	TurnDurationSeconds int       `json:"turn_duration_seconds"`
}

// SelectionState tracks the secret-item selection phase in the Hide & Seek
// and Trap variants. A duplicate-collision broadcast clears it for everyone;
// selection-complete freezes it for the rest of the session.
type SelectionState struct {
	MySelection   *int              `json:"my_selection,omitempty"`
	AllSelections map[uuid.UUID]int `json:"all_selections"`
	HasDuplicates bool              `json:"has_duplicates"`
	Frozen        bool              `json:"frozen"`
}

// NewSelectionState returns an empty selection state.
func NewSelectionState() *SelectionState {
	return &SelectionState{
		AllSelections: make(map[uuid.UUID]int),
	}
}

// Reset clears all provisional selections. Called on a duplicate-collision
// broadcast, which is a global retry across every player.
func (s *SelectionState) Reset() {
	s.MySelection = nil
	s.AllSelections = make(map[uuid.UUID]int)
	s.HasDuplicates = false
}

// GameResult is created once on the game-over event and never mutated after.
type GameResult struct {
	Winner               *Player           `json:"winner,omitempty"`
	SolvedCount          int               `json:"solved_count"`
	TotalItems           int               `json:"total_items"`
	PerPlayerSolvedCount map[uuid.UUID]int `json:"per_player_solved_count"`
}

// Topic holds board metadata fetched before a session starts.
type Topic struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SpriteSize    int    `json:"sprite_size"`
	SpritesPerRow int    `json:"sprites_per_row"`
	SortField     string `json:"sort_field"`
}
