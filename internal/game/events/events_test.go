package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventPayload(t *testing.T) {
	playerID := uuid.New()
	data, err := json.Marshal(TurnChangedPayload{
		CurrentPlayerID:   playerID,
		CurrentPlayerName: "Alice",
		TimeLeftSec:       7,
	})
	require.NoError(t, err)

	payload, err := ParseEventPayload(&GameEvent{Type: EventTypeTurnChanged, Data: data})
	require.NoError(t, err)

	turn, ok := payload.(TurnChangedPayload)
	require.True(t, ok)
	assert.Equal(t, playerID, turn.CurrentPlayerID)
	assert.Equal(t, 7, turn.TimeLeftSec)
}

func TestParseEventPayload_UnknownType(t *testing.T) {
	payload, err := ParseEventPayload(&GameEvent{Type: "Mystery", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestParseEventPayload_Malformed(t *testing.T) {
	_, err := ParseEventPayload(&GameEvent{Type: EventTypeItemSolved, Data: json.RawMessage(`{`)})
	assert.Error(t, err)
}

func TestNewIntent(t *testing.T) {
	sessionID := uuid.New()
	playerID := uuid.New()
	now := time.Now()

	intent, err := NewIntent(sessionID, playerID, IntentTypeSubmitAnswer, SubmitAnswerData{ItemID: 3, Correct: true}, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, intent.ID)
	assert.Equal(t, sessionID, intent.SessionID)
	assert.Equal(t, playerID, intent.PlayerID)
	assert.Equal(t, now, intent.Timestamp)

	var data SubmitAnswerData
	require.NoError(t, json.Unmarshal(intent.Data, &data))
	assert.Equal(t, 3, data.ItemID)
	assert.True(t, data.Correct)
}

func TestNewIntent_NoPayload(t *testing.T) {
	intent, err := NewIntent(uuid.New(), uuid.New(), IntentTypeLeaveGame, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, intent.Data)
}
