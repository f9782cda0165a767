package events

import (
	"encoding/json"
	"time"
)

// GameEvent represents the base structure for all server-pushed game events.
// Delivery is assumed in server-emission order on a single channel, but may
// include duplicates (at-least-once feeds, reconnects); consumers dedup.
type GameEvent struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Session UUID
	Type      EventType       `json:"type"`       // Event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Data      json.RawMessage `json:"data"`       // Event-specific payload
}

// EventType represents the type of game event.
type EventType string

const (
	EventTypeTurnChanged        EventType = "TurnChanged"
	EventTypeItemSolved         EventType = "ItemSolved"
	EventTypeSelectionPhase     EventType = "SelectionPhase"
	EventTypeSelectionCountdown EventType = "SelectionCountdown"
	EventTypeSelectionComplete  EventType = "SelectionComplete"
	EventTypeSelectionFailed    EventType = "SelectionFailed"
	EventTypePlayerEliminated   EventType = "PlayerEliminated"
	EventTypeGameOver           EventType = "GameOver"
)

// ParseEventPayload parses event data into the appropriate payload struct.
func ParseEventPayload(event *GameEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeTurnChanged:
		var payload TurnChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeItemSolved:
		var payload ItemSolvedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSelectionPhase:
		var payload SelectionPhasePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSelectionCountdown:
		var payload SelectionCountdownPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSelectionComplete:
		var payload SelectionCompletePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSelectionFailed:
		var payload SelectionFailedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypePlayerEliminated:
		var payload PlayerEliminatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeGameOver:
		var payload GameOverPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}
