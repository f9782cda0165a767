package engine

import "time"

// NoticeKind classifies user-facing notices emitted by the engine. These map
// onto the recoverable half of the session's error taxonomy; protocol-level
// noise (duplicate events, stale deliveries) is absorbed silently and never
// becomes a notice.
type NoticeKind string

const (
	// NoticeSelectionInvalid: typed selection matched no item. Retryable.
	NoticeSelectionInvalid NoticeKind = "SELECTION_INVALID"

	// NoticeSelectionRejected: server rejected the submitted selection.
	NoticeSelectionRejected NoticeKind = "SELECTION_REJECTED"

	// NoticeSelectionsReset: cross-player collision, everyone re-picks.
	NoticeSelectionsReset NoticeKind = "SELECTIONS_RESET"

	// NoticeOwnSecretItem: answer named the player's own secret item.
	// Rejected locally, never transmitted.
	NoticeOwnSecretItem NoticeKind = "OWN_SECRET_ITEM"

	// NoticeGameStarted: selection phase finished, turn play begins.
	NoticeGameStarted NoticeKind = "GAME_STARTED"

	// NoticeTimeExpired: local turn clock ran out.
	NoticeTimeExpired NoticeKind = "TIME_EXPIRED"

	// NoticeGameOver: terminal server event applied.
	NoticeGameOver NoticeKind = "GAME_OVER"
)

// Notice is a user-facing message from the session engine.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}
