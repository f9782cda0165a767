package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Intent represents an outbound client action. Intents are fire-and-forget:
// the core never awaits a direct response, it only reacts to the event stream
// the server pushes back. Each intent carries a UUID so the server can dedup
// retransmits after a reconnect.
type Intent struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	PlayerID  uuid.UUID       `json:"player_id"`
	Type      IntentType      `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// IntentType represents the type of outbound intent.
type IntentType string

const (
	IntentTypeJoinGame          IntentType = "JoinGame"
	IntentTypeSubmitAnswer      IntentType = "SubmitAnswer"
	IntentTypeSubmitSelection   IntentType = "SubmitSelection"
	IntentTypeReportElimination IntentType = "ReportElimination"
	IntentTypeLeaveGame         IntentType = "LeaveGame"
)

// SubmitAnswerData is the payload for a SubmitAnswer intent.
type SubmitAnswerData struct {
	ItemID  int  `json:"item_id"`
	Correct bool `json:"correct"`
}

// SubmitSelectionData is the payload for a SubmitSelection intent.
type SubmitSelectionData struct {
	ItemID int `json:"item_id"`
}

// ReportEliminationData is the payload for a ReportElimination intent.
type ReportEliminationData struct {
	PlayerID uuid.UUID `json:"player_id"`
	Reason   string    `json:"reason"`
}

// NewIntent builds an intent envelope with a fresh ID and the given payload
// marshaled into Data. A nil payload produces an envelope-only intent.
func NewIntent(sessionID, playerID uuid.UUID, intentType IntentType, payload interface{}, now time.Time) (Intent, error) {
	intent := Intent{
		ID:        uuid.New(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Type:      intentType,
		Timestamp: now,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Intent{}, fmt.Errorf("marshal %s intent payload: %w", intentType, err)
		}
		intent.Data = data
	}

	return intent, nil
}
