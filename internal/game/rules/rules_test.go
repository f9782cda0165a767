package rules

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/nameit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantFor(t *testing.T) {
	hs := VariantFor(models.ModeHideSeek)
	assert.True(t, hs.SelectionRequired)
	assert.Equal(t, EliminateOwner, hs.EliminationDirection)

	trap := VariantFor(models.ModeTrap)
	assert.True(t, trap.SelectionRequired)
	assert.Equal(t, EliminateSolver, trap.EliminationDirection)

	classic := VariantFor(models.ModeClassic)
	assert.False(t, classic.SelectionRequired)
	assert.Equal(t, EliminateNobody, classic.EliminationDirection)

	assert.Equal(t, classic, VariantFor(models.Mode("BOGUS")))
}

func TestValidateSelection(t *testing.T) {
	items := []*models.Item{
		{ID: 1, Name: "Pikachu"},
		{ID: 2, Name: "Bulbasaur"},
	}
	v := VariantFor(models.ModeHideSeek)

	item, err := v.ValidateSelection("  pikachu ", items)
	require.NoError(t, err)
	assert.Equal(t, 1, item.ID)

	_, err = v.ValidateSelection("charmander", items)
	assert.ErrorIs(t, err, ErrUnknownItem)

	// Classic mode has no selection phase at all.
	_, err = VariantFor(models.ModeClassic).ValidateSelection("pikachu", items)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestCheckAnswer_BlocksOwnSecretInHideSeek(t *testing.T) {
	v := VariantFor(models.ModeHideSeek)
	secret := 7
	item := &models.Item{ID: 7, Name: "Pikachu"}

	assert.ErrorIs(t, v.CheckAnswer(item, &secret), ErrOwnSecretItem)

	other := &models.Item{ID: 8, Name: "Bulbasaur"}
	assert.NoError(t, v.CheckAnswer(other, &secret))
	assert.NoError(t, v.CheckAnswer(item, nil))
}

func TestCheckAnswer_TrapAllowsOwnTrapItem(t *testing.T) {
	// Trap direction is solver-eliminated; your own trap is inert for you,
	// so the answer goes through and the server decides nothing happens.
	v := VariantFor(models.ModeTrap)
	secret := 7
	item := &models.Item{ID: 7, Name: "Pikachu"}

	assert.NoError(t, v.CheckAnswer(item, &secret))
}

// The two variants receive identical event shapes and must pick opposite
// elimination targets.
func TestEliminationTarget_OppositeDirections(t *testing.T) {
	owner := uuid.New()
	solver := uuid.New()
	selections := map[uuid.UUID]int{
		owner:  42,
		solver: 99,
	}

	target, ok := VariantFor(models.ModeHideSeek).EliminationTarget(42, solver, selections)
	require.True(t, ok)
	assert.Equal(t, owner, target, "Hide & Seek eliminates the item's owner")

	target, ok = VariantFor(models.ModeTrap).EliminationTarget(42, solver, selections)
	require.True(t, ok)
	assert.Equal(t, solver, target, "Trap eliminates the solver")
}

func TestEliminationTarget_OwnItemNeverEliminates(t *testing.T) {
	owner := uuid.New()
	selections := map[uuid.UUID]int{owner: 42}

	_, ok := VariantFor(models.ModeHideSeek).EliminationTarget(42, owner, selections)
	assert.False(t, ok)

	_, ok = VariantFor(models.ModeTrap).EliminationTarget(42, owner, selections)
	assert.False(t, ok)
}

func TestEliminationTarget_NonSpecialSolve(t *testing.T) {
	owner := uuid.New()
	solver := uuid.New()
	selections := map[uuid.UUID]int{owner: 42}

	_, ok := VariantFor(models.ModeHideSeek).EliminationTarget(1, solver, selections)
	assert.False(t, ok)

	_, ok = VariantFor(models.ModeClassic).EliminationTarget(42, solver, map[uuid.UUID]int{owner: 42})
	assert.False(t, ok)
}
