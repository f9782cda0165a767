package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/nameit/internal/game/events"
	"github.com/mcdev12/nameit/internal/game/rules"
	"github.com/mcdev12/nameit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	me    = uuid.New()
	alice = uuid.New()
	bob   = uuid.New()
)

func testItems() []*models.Item {
	return []*models.Item{
		{ID: 1, Name: "Pikachu", CorrectAnswers: []string{"pikachu"}, Order: 1},
		{ID: 2, Name: "Bulbasaur", CorrectAnswers: []string{"bulbasaur"}, Order: 2},
		{ID: 3, Name: "Squirtle", CorrectAnswers: []string{"squirtle"}, Order: 3},
	}
}

func newTestState(mode models.Mode) *State {
	return NewState(uuid.New(), me, rules.VariantFor(mode), 20, testItems())
}

func evt(t *testing.T, eventType events.EventType, payload interface{}) *events.GameEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &events.GameEvent{
		ID:        uuid.NewString(),
		SessionID: uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func apply(t *testing.T, r *Reconciler, eventType events.EventType, payload interface{}) Effects {
	t.Helper()
	eff, err := r.Apply(evt(t, eventType, payload))
	require.NoError(t, err)
	return eff
}

func TestTurnChanged_SupersedesAndResetsTimerToServerClock(t *testing.T) {
	s := newTestState(models.ModeClassic)
	r := NewReconciler(s)

	eff := apply(t, r, events.EventTypeTurnChanged, events.TurnChangedPayload{
		CurrentPlayerID:   alice,
		CurrentPlayerName: "Alice",
		TimeLeftSec:       7,
		Players: []events.PlayerInfo{
			{PlayerID: me, Name: "Me"},
			{PlayerID: alice, Name: "Alice"},
		},
	})

	assert.Equal(t, alice, s.Turn.CurrentPlayerID)
	assert.Equal(t, 7, s.Turn.RemainingSeconds)
	// The timer restarts from the server's 7, never from local remainder.
	assert.Equal(t, 7, eff.ResetTimerSec)
	assert.Len(t, s.Players, 2)
}

func TestTurnChanged_NeverResurrectsEliminatedPlayer(t *testing.T) {
	s := newTestState(models.ModeClassic)
	r := NewReconciler(s)

	apply(t, r, events.EventTypePlayerEliminated, events.PlayerEliminatedPayload{PlayerID: me})
	require.True(t, s.IsEliminated(me))

	// A stale turn event naming the eliminated player, with a roster
	// snapshot from before the elimination.
	apply(t, r, events.EventTypeTurnChanged, events.TurnChangedPayload{
		CurrentPlayerID: me,
		TimeLeftSec:     20,
		Players:         []events.PlayerInfo{{PlayerID: me, Name: "Me", IsEliminated: false}},
	})

	assert.True(t, s.IsEliminated(me), "elimination takes precedence over turn events")
	assert.False(t, s.InputEnabled())
}

func TestItemSolved_IsIdempotent(t *testing.T) {
	s := newTestState(models.ModeClassic)
	r := NewReconciler(s)

	payload := events.ItemSolvedPayload{ItemID: 1, SolvedBy: alice}
	apply(t, r, events.EventTypeItemSolved, payload)

	item := s.Item(1)
	require.True(t, item.Solved)
	require.NotNil(t, item.SolvedBy)
	assert.Equal(t, alice, *item.SolvedBy)
	assert.Equal(t, 1, s.SolvedCount())

	// Same event again, even with a different claimed solver: no-op.
	apply(t, r, events.EventTypeItemSolved, events.ItemSolvedPayload{ItemID: 1, SolvedBy: bob})

	assert.True(t, item.Solved)
	assert.Equal(t, alice, *item.SolvedBy, "attribution is one-shot")
	assert.Equal(t, 1, s.SolvedCount())
	assert.Equal(t, 1, s.PlayerSolvedCount(alice))
	assert.Zero(t, s.PlayerSolvedCount(bob))
}

func completeSelection(t *testing.T, r *Reconciler, itemsByPlayer map[uuid.UUID]int, firstTurn uuid.UUID) Effects {
	t.Helper()
	return apply(t, r, events.EventTypeSelectionComplete, events.SelectionCompletePayload{
		ItemsByPlayer:     itemsByPlayer,
		FirstTurnPlayerID: firstTurn,
	})
}

func TestSelectionComplete_OneShotLatch(t *testing.T) {
	s := newTestState(models.ModeHideSeek)
	r := NewReconciler(s)

	picks := map[uuid.UUID]int{me: 1, alice: 2}

	eff := completeSelection(t, r, picks, alice)
	assert.True(t, eff.StartedPlaying)
	assert.Equal(t, 20, eff.ResetTimerSec)
	assert.Equal(t, models.SessionStatusPlaying, s.Status)
	assert.True(t, s.Selection.Frozen)
	require.NotNil(t, s.MySelection())
	assert.Equal(t, 1, *s.MySelection())
	assert.True(t, s.Item(1).IsSpecial)
	assert.Equal(t, models.SpecialKindHideSeek, s.Item(1).SpecialKind)

	// Duplicate delivery: discarded, no second timer start.
	eff = completeSelection(t, r, picks, alice)
	assert.False(t, eff.StartedPlaying)
	assert.Equal(t, -1, eff.ResetTimerSec)
}

func TestSelectionPhase_DuplicateCollisionResetsEveryone(t *testing.T) {
	s := newTestState(models.ModeTrap)
	r := NewReconciler(s)
	s.SetProvisionalSelection(2)

	eff := apply(t, r, events.EventTypeSelectionPhase, events.SelectionPhasePayload{
		Selections:    map[uuid.UUID]int{me: 2, alice: 2},
		HasDuplicates: true,
	})

	assert.True(t, eff.SelectionsReset)
	assert.Nil(t, s.MySelection(), "collision resets the local pick too")
	assert.Empty(t, s.Selection.AllSelections)
	assert.True(t, s.Selection.HasDuplicates)
}

func TestSelectionFailed_ClearsProvisionalPick(t *testing.T) {
	s := newTestState(models.ModeHideSeek)
	r := NewReconciler(s)
	s.SetProvisionalSelection(3)

	eff := apply(t, r, events.EventTypeSelectionFailed, events.SelectionFailedPayload{Reason: "item already taken"})

	assert.Equal(t, "item already taken", eff.SelectionFailedReason)
	assert.Nil(t, s.MySelection())
}

func TestSelectionCountdown_MovesToAwaiting(t *testing.T) {
	s := newTestState(models.ModeHideSeek)
	r := NewReconciler(s)

	apply(t, r, events.EventTypeSelectionCountdown, events.SelectionCountdownPayload{TimeLeftSec: 5})

	assert.Equal(t, models.SessionStatusAwaitingCountdown, s.Status)
	assert.Equal(t, 5, s.SelectionCountdownSec)
}

func TestItemSolved_HideSeekEliminatesOwner(t *testing.T) {
	s := newTestState(models.ModeHideSeek)
	r := NewReconciler(s)
	completeSelection(t, r, map[uuid.UUID]int{me: 1, alice: 2}, me)

	// I solve Alice's secret item: she is the one eliminated.
	eff := apply(t, r, events.EventTypeItemSolved, events.ItemSolvedPayload{ItemID: 2, SolvedBy: me, Special: true})

	require.NotNil(t, eff.ReportEliminate)
	assert.Equal(t, alice, *eff.ReportEliminate)
}

func TestItemSolved_TrapEliminatesSolver(t *testing.T) {
	s := newTestState(models.ModeTrap)
	r := NewReconciler(s)
	completeSelection(t, r, map[uuid.UUID]int{me: 1, alice: 2}, me)

	// Identical event shape to the Hide & Seek case, opposite victim.
	eff := apply(t, r, events.EventTypeItemSolved, events.ItemSolvedPayload{ItemID: 2, SolvedBy: me, Special: true})

	require.NotNil(t, eff.ReportEliminate)
	assert.Equal(t, me, *eff.ReportEliminate)
}

func TestItemSolved_DuplicateDoesNotReportEliminationTwice(t *testing.T) {
	s := newTestState(models.ModeHideSeek)
	r := NewReconciler(s)
	completeSelection(t, r, map[uuid.UUID]int{me: 1, alice: 2}, me)

	payload := events.ItemSolvedPayload{ItemID: 2, SolvedBy: me, Special: true}
	eff := apply(t, r, events.EventTypeItemSolved, payload)
	require.NotNil(t, eff.ReportEliminate)

	eff = apply(t, r, events.EventTypeItemSolved, payload)
	assert.Nil(t, eff.ReportEliminate)
}

func TestPlayerEliminated_IsAdditive(t *testing.T) {
	s := newTestState(models.ModeTrap)
	r := NewReconciler(s)

	apply(t, r, events.EventTypePlayerEliminated, events.PlayerEliminatedPayload{PlayerID: alice, Reason: "trap"})
	assert.True(t, s.IsEliminated(alice))

	// Duplicate delivery changes nothing.
	apply(t, r, events.EventTypePlayerEliminated, events.PlayerEliminatedPayload{PlayerID: alice, Reason: "trap"})
	assert.True(t, s.IsEliminated(alice))
}

func TestGameOver_FreezesSession(t *testing.T) {
	s := newTestState(models.ModeClassic)
	r := NewReconciler(s)

	apply(t, r, events.EventTypeItemSolved, events.ItemSolvedPayload{ItemID: 1, SolvedBy: alice})
	apply(t, r, events.EventTypeTurnChanged, events.TurnChangedPayload{
		CurrentPlayerID: alice,
		TimeLeftSec:     12,
		Players:         []events.PlayerInfo{{PlayerID: alice, Name: "Alice"}},
	})

	winnerID := alice
	eff := apply(t, r, events.EventTypeGameOver, events.GameOverPayload{WinnerID: &winnerID, WinnerName: "Alice"})
	assert.True(t, eff.GameOver)

	require.NotNil(t, s.Result)
	assert.Equal(t, 1, s.Result.SolvedCount)
	assert.Equal(t, 3, s.Result.TotalItems)
	assert.Equal(t, 1, s.Result.PerPlayerSolvedCount[alice])
	require.NotNil(t, s.Result.Winner)
	assert.Equal(t, alice, s.Result.Winner.ID)

	// After the terminal event nothing mutates turn or item state.
	eff = apply(t, r, events.EventTypeTurnChanged, events.TurnChangedPayload{CurrentPlayerID: bob, TimeLeftSec: 20})
	assert.Equal(t, -1, eff.ResetTimerSec)
	assert.Equal(t, alice, s.Turn.CurrentPlayerID)

	apply(t, r, events.EventTypeItemSolved, events.ItemSolvedPayload{ItemID: 2, SolvedBy: bob})
	assert.False(t, s.Item(2).Solved)

	// Duplicate game over is absorbed and the result stands.
	result := s.Result
	apply(t, r, events.EventTypeGameOver, events.GameOverPayload{})
	assert.Same(t, result, s.Result)
}

func TestApply_UnknownEventTypeIgnored(t *testing.T) {
	s := newTestState(models.ModeClassic)
	r := NewReconciler(s)

	eff, err := r.Apply(&events.GameEvent{Type: "Mystery", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, -1, eff.ResetTimerSec)
}

func TestApply_MalformedPayloadIsAnError(t *testing.T) {
	s := newTestState(models.ModeClassic)
	r := NewReconciler(s)

	_, err := r.Apply(&events.GameEvent{Type: events.EventTypeItemSolved, Data: json.RawMessage(`{"item_id":`)})
	assert.Error(t, err)
}
