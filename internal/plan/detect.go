package plan

import (
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// detectChanges compares a draft against its original and records what the
// user changed. Only the tracked fields are diffed: rep-range mode and
// bounds at the exercise level; weight, reps, rest and type at the set level.
// Untracked fields (notes, ordering) and structural additions are carried
// through silently by the merge step.
//
// Each tracked-field difference emits one user-sourced suggestion, already
// accepted (the user made the change) with outcome still pending, and then
// overrides any machine suggestion of the same change-kind family on that
// target. Runs strictly before applyToOriginal, while both object graphs are
// intact.
func detectChanges(arena *store.Store, d *Draft, original *models.Plan) {
	copyByID := make(map[uuid.UUID]*DraftPrescription, len(d.Prescriptions))
	for _, p := range d.Prescriptions {
		copyByID[p.ID] = p
	}

	for _, orig := range arena.PrescriptionsFor(original.ID) {
		cp, ok := copyByID[orig.ID]
		if !ok {
			// Exercise removed: every suggestion on it and on each of its
			// sets is invalidated. No field diffing for removed exercises.
			overrideExercise(arena, orig.ID, nil)
			continue
		}
		diffPrescription(arena, orig, cp)
		diffSets(arena, orig, cp)
	}
}

func diffPrescription(arena *store.Store, orig *models.Prescription, cp *DraftPrescription) {
	if orig.RepRange.Mode != cp.RepRange.Mode {
		recordExerciseChange(arena, orig, models.ChangeRepRangeMode, 0, 0,
			string(orig.RepRange.Mode), string(cp.RepRange.Mode))
	}
	if orig.RepRange.Lower != cp.RepRange.Lower {
		kind := directional(orig.RepRange.Lower < cp.RepRange.Lower,
			models.ChangeIncreaseRepRangeLower, models.ChangeDecreaseRepRangeLower)
		recordExerciseChange(arena, orig, kind,
			float64(orig.RepRange.Lower), float64(cp.RepRange.Lower), "", "")
	}
	if orig.RepRange.Upper != cp.RepRange.Upper {
		kind := directional(orig.RepRange.Upper < cp.RepRange.Upper,
			models.ChangeIncreaseRepRangeUpper, models.ChangeDecreaseRepRangeUpper)
		recordExerciseChange(arena, orig, kind,
			float64(orig.RepRange.Upper), float64(cp.RepRange.Upper), "", "")
	}
	if orig.RepRange.Target != cp.RepRange.Target {
		kind := directional(orig.RepRange.Target < cp.RepRange.Target,
			models.ChangeIncreaseRepRangeTarget, models.ChangeDecreaseRepRangeTarget)
		recordExerciseChange(arena, orig, kind,
			float64(orig.RepRange.Target), float64(cp.RepRange.Target), "", "")
	}
}

func diffSets(arena *store.Store, orig *models.Prescription, cp *DraftPrescription) {
	copySets := make(map[uuid.UUID]*models.PrescribedSet, len(cp.Sets))
	for _, s := range cp.Sets {
		copySets[s.ID] = s
	}

	for _, origSet := range arena.SetsFor(orig.ID) {
		cs, ok := copySets[origSet.ID]
		if !ok {
			overrideSet(arena, origSet.ID, nil)
			continue
		}
		if origSet.TargetWeight != cs.TargetWeight {
			kind := directional(origSet.TargetWeight < cs.TargetWeight,
				models.ChangeIncreaseWeight, models.ChangeDecreaseWeight)
			recordSetChange(arena, orig, origSet, kind, origSet.TargetWeight, cs.TargetWeight, "", "")
		}
		if origSet.TargetReps != cs.TargetReps {
			kind := directional(origSet.TargetReps < cs.TargetReps,
				models.ChangeIncreaseReps, models.ChangeDecreaseReps)
			recordSetChange(arena, orig, origSet, kind,
				float64(origSet.TargetReps), float64(cs.TargetReps), "", "")
		}
		if origSet.TargetRestSec != cs.TargetRestSec {
			kind := directional(origSet.TargetRestSec < cs.TargetRestSec,
				models.ChangeIncreaseRest, models.ChangeDecreaseRest)
			recordSetChange(arena, orig, origSet, kind,
				float64(origSet.TargetRestSec), float64(cs.TargetRestSec), "", "")
		}
		if origSet.Type != cs.Type {
			recordSetChange(arena, orig, origSet, models.ChangeSetType, 0, 0,
				string(origSet.Type), string(cs.Type))
		}
	}
}

// recordExerciseChange persists one user change against a prescription and
// overrides conflicting machine suggestions of the same field family.
func recordExerciseChange(arena *store.Store, orig *models.Prescription, kind models.ChangeKind, prev, next float64, prevText, nextText string) {
	targetID := orig.ID
	arena.PutSuggestion(&models.Suggestion{
		ID:                   uuid.New(),
		Origin:               models.OriginUser,
		CatalogID:            orig.CatalogID,
		TargetPrescriptionID: &targetID,
		Kind:                 kind,
		PreviousValue:        prev,
		NewValue:             next,
		PreviousText:         prevText,
		NewText:              nextText,
		Decision:             models.DecisionAccepted,
		Outcome:              models.OutcomePending,
		CreatedAt:            time.Now(),
	})
	overrideExercise(arena, orig.ID, kind.Family())
}

func recordSetChange(arena *store.Store, orig *models.Prescription, origSet *models.PrescribedSet, kind models.ChangeKind, prev, next float64, prevText, nextText string) {
	prescID := orig.ID
	setID := origSet.ID
	arena.PutSuggestion(&models.Suggestion{
		ID:                   uuid.New(),
		Origin:               models.OriginUser,
		CatalogID:            orig.CatalogID,
		TargetPrescriptionID: &prescID,
		TargetSetID:          &setID,
		Kind:                 kind,
		PreviousValue:        prev,
		NewValue:             next,
		PreviousText:         prevText,
		NewText:              nextText,
		Decision:             models.DecisionAccepted,
		Outcome:              models.OutcomePending,
		CreatedAt:            time.Now(),
	})
	overrideSet(arena, origSet.ID, kind.Family())
}

func directional(increase bool, up, down models.ChangeKind) models.ChangeKind {
	if increase {
		return up
	}
	return down
}
