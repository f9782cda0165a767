// Package match resolves raw player input against the item board.
//
// Matching is exact after normalization (trim + lowercase); there is no fuzzy
// or partial matching. Content is expected to keep accepted answers unique
// across items — if it ever doesn't, the lowest-ordered item wins so the
// result stays deterministic.
package match

import (
	"sort"
	"strings"

	"github.com/mcdev12/nameit/internal/models"
)

// Normalize canonicalizes player input and item names for comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindMatch returns the unsolved item whose accepted-answer set contains the
// normalized input, or nil. It returns nil immediately, with no side effects,
// when it is not the caller's turn or the game has ended. Solved items are
// never candidates, so re-matching an already-solved item is impossible.
func FindMatch(rawInput string, items []*models.Item, isMyTurn, gameOver bool) *models.Item {
	if !isMyTurn || gameOver {
		return nil
	}

	normalized := Normalize(rawInput)
	if normalized == "" {
		return nil
	}

	candidates := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if item == nil || item.Solved {
			continue
		}
		candidates = append(candidates, item)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Order < candidates[j].Order
	})

	for _, item := range candidates {
		for _, answer := range item.CorrectAnswers {
			if Normalize(answer) == normalized {
				return item
			}
		}
	}

	return nil
}

// FindByName returns the item whose display name normalize-matches the input,
// or nil. Used to validate secret-item selections, where solved status is
// irrelevant because the board is untouched during the selection phase.
func FindByName(rawInput string, items []*models.Item) *models.Item {
	normalized := Normalize(rawInput)
	if normalized == "" {
		return nil
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		if Normalize(item.Name) == normalized {
			return item
		}
	}

	return nil
}
