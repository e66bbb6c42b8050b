package plan

import (
	"slices"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// Override rule: a user edit invalidates machine suggestions on the same
// target. The two state transitions are independent:
//
//   - decision pending|deferred -> userOverride (the review item disappears)
//   - outcome pending           -> userModified (it can no longer be scored)
//
// An already-accepted suggestion keeps decision=accepted for audit but still
// loses its pending outcome. User-authored suggestions are never overridden.

// overrideExercise invalidates suggestions on a prescription and, when kinds
// is nil (removal), cascades to every suggestion on each of its sets.
func overrideExercise(arena *store.Store, prescriptionID uuid.UUID, kinds []models.ChangeKind) {
	for _, sug := range arena.SuggestionsForExercise(prescriptionID) {
		overrideOne(sug, kinds)
	}
	if kinds == nil {
		for _, set := range arena.SetsFor(prescriptionID) {
			overrideSet(arena, set.ID, nil)
		}
	}
}

// overrideSet invalidates suggestions targeting one set. A nil kinds filter
// matches every kind (used for set removal).
func overrideSet(arena *store.Store, setID uuid.UUID, kinds []models.ChangeKind) {
	for _, sug := range arena.SuggestionsForSet(setID) {
		overrideOne(sug, kinds)
	}
}

func overrideOne(sug *models.Suggestion, kinds []models.ChangeKind) {
	if kinds != nil && !slices.Contains(kinds, sug.Kind) {
		return
	}
	if sug.Origin == models.OriginUser {
		return
	}
	if sug.Decision.Open() {
		sug.Decision = models.DecisionUserOverride
	}
	if sug.Outcome == models.OutcomePending {
		sug.Outcome = models.OutcomeUserModified
	}
}
