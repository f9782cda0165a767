// Package rules holds the per-variant game policy. The five original game
// screens shared one turn-taking core and diverged only in how special items
// behave, so the divergence lives here as a small policy value injected into
// the session engine.
package rules

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/nameit/internal/game/match"
	"github.com/mcdev12/nameit/internal/models"
)

var (
	// ErrUnknownItem rejects a secret-item selection that doesn't name any
	// item on the board. User-correctable; nothing is sent to the server.
	ErrUnknownItem = errors.New("no item with that name")

	// ErrOwnSecretItem rejects an answer that names the caller's own secret
	// item in Hide & Seek. Blocked client-side, never transmitted.
	ErrOwnSecretItem = errors.New("cannot answer with your own secret item")
)

// EliminationDirection defines who is eliminated when a special item is
// solved: the player who owns the item, or the player who solved it.
type EliminationDirection string

const (
	EliminateNobody EliminationDirection = "NOBODY"
	EliminateOwner  EliminationDirection = "OWNER"  // Hide & Seek: your secret was found
	EliminateSolver EliminationDirection = "SOLVER" // Trap: you stepped on someone's trap
)

// Variant is the per-mode policy injected into the session engine.
type Variant struct {
	Mode                 models.Mode
	SelectionRequired    bool
	SpecialKind          models.SpecialKind
	EliminationDirection EliminationDirection
}

// VariantFor returns the policy for a game mode. Unknown modes fall back to
// the classic rules.
func VariantFor(mode models.Mode) Variant {
	switch mode {
	case models.ModeHideSeek:
		return Variant{
			Mode:                 models.ModeHideSeek,
			SelectionRequired:    true,
			SpecialKind:          models.SpecialKindHideSeek,
			EliminationDirection: EliminateOwner,
		}
	case models.ModeTrap:
		return Variant{
			Mode:                 models.ModeTrap,
			SelectionRequired:    true,
			SpecialKind:          models.SpecialKindTrap,
			EliminationDirection: EliminateSolver,
		}
	default:
		return Variant{
			Mode:                 models.ModeClassic,
			SelectionRequired:    false,
			SpecialKind:          models.SpecialKindNone,
			EliminationDirection: EliminateNobody,
		}
	}
}

// ValidateSelection resolves a typed secret-item selection against the board.
// The submission is provisional either way; the server still has to confirm
// it and may bounce the whole round on a cross-player collision.
func (v Variant) ValidateSelection(rawInput string, items []*models.Item) (*models.Item, error) {
	if !v.SelectionRequired {
		return nil, ErrUnknownItem
	}

	item := match.FindByName(rawInput, items)
	if item == nil {
		return nil, ErrUnknownItem
	}
	return item, nil
}

// CheckAnswer vets a locally matched answer before it is emitted. In
// Hide & Seek a player must not be able to reveal their own secret item, so
// that answer is rejected here instead of being forwarded to the server.
func (v Variant) CheckAnswer(item *models.Item, mySelection *int) error {
	if v.EliminationDirection != EliminateOwner {
		return nil
	}
	if item != nil && mySelection != nil && item.ID == *mySelection {
		return ErrOwnSecretItem
	}
	return nil
}

// EliminationTarget decides who, if anyone, a solve event eliminates. The
// ownership lookup deliberately scans the selection map per solve rather than
// keeping an item→owner index; the map is one entry per player.
func (v Variant) EliminationTarget(solvedItemID int, solvedBy uuid.UUID, selections map[uuid.UUID]int) (uuid.UUID, bool) {
	if v.EliminationDirection == EliminateNobody {
		return uuid.Nil, false
	}

	for owner, itemID := range selections {
		if itemID != solvedItemID || owner == solvedBy {
			// A player never triggers their own elimination: in Hide & Seek
			// their own secret is blocked before submit, and in Trap a
			// player's own trap is inert for them.
			continue
		}

		switch v.EliminationDirection {
		case EliminateOwner:
			return owner, true
		case EliminateSolver:
			return solvedBy, true
		}
	}

	return uuid.Nil, false
}
