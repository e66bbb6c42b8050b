package plan

import (
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// applyToOriginal commits a draft's structure and field values onto the
// original plan. Runs after detectChanges (while removed entities still have
// their suggestions intact) and ends with the draft gone.
//
// Order matters: scalars, then structural additions, then matched-field
// application and set removals, then exercise removals, then a reindex pass.
// Afterwards the original's prescription/set identity sets equal the draft's,
// and every surviving suggestion row either resolves to a live target or has
// had its target reference nullified by the store.
func applyToOriginal(arena *store.Store, d *Draft, original *models.Plan) {
	// 1. Plan-level scalars. Untracked: no suggestion side effects.
	original.Title = d.Plan.Title
	original.Notes = d.Plan.Notes
	original.IsFavorite = d.Plan.IsFavorite

	origByID := make(map[uuid.UUID]*models.Prescription)
	for _, p := range arena.PrescriptionsFor(original.ID) {
		origByID[p.ID] = p
	}
	copyIDs := make(map[uuid.UUID]bool, len(d.Prescriptions))

	for _, cp := range d.Prescriptions {
		copyIDs[cp.ID] = true
		orig, ok := origByID[cp.ID]
		if !ok {
			// 2. New exercise: re-parent onto the original with its sets.
			adopted := cp.Prescription
			adopted.PlanID = original.ID
			arena.PutPrescription(&adopted)
			for _, s := range cp.Sets {
				cs := *s
				arena.PutSet(&cs)
			}
			continue
		}
		// 3. Matched exercise: tracked scalars were already diffed and
		// recorded, apply them directly.
		orig.RepRange = cp.RepRange
		orig.Notes = cp.Notes
		orig.Name = cp.Name
		orig.Index = cp.Index
		mergeSets(arena, orig, cp)
	}

	// 4. Exercises removed in the draft, after their sets were processed.
	for id, orig := range origByID {
		if !copyIDs[id] {
			arena.DeletePrescription(orig.ID)
		}
	}

	// 5. Reindex survivors by draft order.
	for i, cp := range d.Prescriptions {
		if p := arena.Prescription(cp.ID); p != nil {
			p.Index = i
		}
		for j, cs := range cp.Sets {
			if s := arena.Set(cs.ID); s != nil {
				s.Index = j
			}
		}
	}

	// 6. The draft itself is a value object; dropping it from the editor map
	// is the caller's job. Nothing draft-related persists in the arena.
	original.IsDraft = false
}

func mergeSets(arena *store.Store, orig *models.Prescription, cp *DraftPrescription) {
	origSets := make(map[uuid.UUID]*models.PrescribedSet)
	for _, s := range arena.SetsFor(orig.ID) {
		origSets[s.ID] = s
	}
	copySetIDs := make(map[uuid.UUID]bool, len(cp.Sets))

	for _, cs := range cp.Sets {
		copySetIDs[cs.ID] = true
		os, ok := origSets[cs.ID]
		if !ok {
			adopted := *cs
			adopted.PrescriptionID = orig.ID
			arena.PutSet(&adopted)
			continue
		}
		os.Type = cs.Type
		os.TargetWeight = cs.TargetWeight
		os.TargetReps = cs.TargetReps
		os.TargetRestSec = cs.TargetRestSec
		os.Index = cs.Index
	}

	// Sets removed in the draft: their suggestions were override-marked by
	// detectChanges; the store nullifies their target reference here.
	for id := range origSets {
		if !copySetIDs[id] {
			arena.DeleteSet(id)
		}
	}
}
