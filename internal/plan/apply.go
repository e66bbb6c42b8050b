package plan

import (
	"github.com/claude/liftplan/internal/models"
)

// applyChange mutates a suggestion's live target according to its change
// kind. A nullified or missing target is absence, not an error: the edit
// simply has nothing left to land on.
func (e *Editor) applyChange(sug *models.Suggestion) {
	if sug.Kind.SetLevel() {
		e.applySetChange(sug)
		return
	}
	e.applyExerciseChange(sug)
}

func (e *Editor) applySetChange(sug *models.Suggestion) {
	if sug.TargetSetID == nil {
		return
	}
	set := e.arena.Set(*sug.TargetSetID)
	if set == nil {
		return
	}
	switch sug.Kind {
	case models.ChangeIncreaseWeight, models.ChangeDecreaseWeight:
		set.TargetWeight = sug.NewValue
	case models.ChangeIncreaseReps, models.ChangeDecreaseReps:
		set.TargetReps = int(sug.NewValue)
	case models.ChangeIncreaseRest, models.ChangeDecreaseRest:
		set.TargetRestSec = int(sug.NewValue)
	case models.ChangeSetType:
		set.Type = models.SetType(sug.NewText)
	case models.ChangeRemoveSet:
		e.arena.DeleteSet(set.ID)
	}
}

func (e *Editor) applyExerciseChange(sug *models.Suggestion) {
	if sug.TargetPrescriptionID == nil {
		return
	}
	presc := e.arena.Prescription(*sug.TargetPrescriptionID)
	if presc == nil {
		return
	}
	switch sug.Kind {
	case models.ChangeIncreaseRepRangeLower, models.ChangeDecreaseRepRangeLower:
		presc.RepRange.Lower = int(sug.NewValue)
	case models.ChangeIncreaseRepRangeUpper, models.ChangeDecreaseRepRangeUpper:
		presc.RepRange.Upper = int(sug.NewValue)
	case models.ChangeIncreaseRepRangeTarget, models.ChangeDecreaseRepRangeTarget:
		presc.RepRange.Target = int(sug.NewValue)
	case models.ChangeRepRangeMode:
		presc.RepRange.Mode = models.RepRangeMode(sug.NewText)
	case models.ChangeRestPolicy:
		// Exercise-level rest applies across every set of the prescription.
		for _, set := range e.arena.SetsFor(presc.ID) {
			set.TargetRestSec = int(sug.NewValue)
		}
	}
}
