// Package plan implements copy-on-write plan editing: drafts, change
// detection, suggestion overrides, and the merge that commits a draft back
// onto its original.
//
// A draft is a snapshot value object, not a set of arena rows. Its
// prescriptions and sets carry the same ids as the originals they were copied
// from; that shared identity is what lets detectChanges match draft entities
// to originals with plain id-keyed maps.
package plan

import (
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// Draft is an editable copy of a plan. The original is untouched until the
// draft is committed.
type Draft struct {
	Plan          models.Plan          `json:"plan"`
	Prescriptions []*DraftPrescription `json:"prescriptions"`
}

// DraftPrescription is a prescription snapshot inside a draft, with its sets.
type DraftPrescription struct {
	models.Prescription
	Sets []*models.PrescribedSet `json:"sets"`
}

// Clone returns a deep copy of the draft. Callers that hold a draft outside
// the owning service's lock get a clone, never the live object.
func (d *Draft) Clone() *Draft {
	out := &Draft{Plan: d.Plan}
	if d.Plan.OriginalID != nil {
		orig := *d.Plan.OriginalID
		out.Plan.OriginalID = &orig
	}
	for _, p := range d.Prescriptions {
		cp := &DraftPrescription{Prescription: p.Prescription}
		for _, s := range p.Sets {
			set := *s
			cp.Sets = append(cp.Sets, &set)
		}
		out.Prescriptions = append(out.Prescriptions, cp)
	}
	return out
}

// OriginalID returns the id of the plan this draft was copied from.
func (d *Draft) OriginalID() uuid.UUID {
	if d.Plan.OriginalID == nil {
		return uuid.Nil
	}
	return *d.Plan.OriginalID
}

// Prescription finds a draft prescription by id, nil if absent.
func (d *Draft) Prescription(id uuid.UUID) *DraftPrescription {
	for _, p := range d.Prescriptions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Set finds a draft set by id across all prescriptions, nil if absent.
func (d *Draft) Set(id uuid.UUID) *models.PrescribedSet {
	for _, p := range d.Prescriptions {
		for _, s := range p.Sets {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}

// AddPrescription appends a new exercise to the draft and returns it. The new
// entity gets a fresh id: it exists nowhere in the original, so the merge
// step re-parents it structurally instead of diffing it.
func (d *Draft) AddPrescription(catalogID, name string) *DraftPrescription {
	p := &DraftPrescription{Prescription: models.Prescription{
		ID:        uuid.New(),
		PlanID:    d.Plan.ID,
		Index:     len(d.Prescriptions),
		CatalogID: catalogID,
		Name:      name,
		RepRange:  models.RepRange{Mode: models.RepRangeRange, Lower: 8, Upper: 12},
	}}
	d.Prescriptions = append(d.Prescriptions, p)
	return p
}

// RemovePrescription deletes an exercise from the draft. No-op if absent.
func (d *Draft) RemovePrescription(id uuid.UUID) {
	for i, p := range d.Prescriptions {
		if p.ID == id {
			d.Prescriptions = append(d.Prescriptions[:i], d.Prescriptions[i+1:]...)
			return
		}
	}
}

// AddSet appends a new set to a draft prescription and returns it, nil if the
// prescription is not in the draft.
func (d *Draft) AddSet(prescriptionID uuid.UUID) *models.PrescribedSet {
	p := d.Prescription(prescriptionID)
	if p == nil {
		return nil
	}
	s := &models.PrescribedSet{
		ID:             uuid.New(),
		PrescriptionID: p.ID,
		Index:          len(p.Sets),
		Type:           models.SetTypeWorking,
	}
	p.Sets = append(p.Sets, s)
	return s
}

// RemoveSet deletes a set from the draft. No-op if absent.
func (d *Draft) RemoveSet(id uuid.UUID) {
	for _, p := range d.Prescriptions {
		for i, s := range p.Sets {
			if s.ID == id {
				p.Sets = append(p.Sets[:i], p.Sets[i+1:]...)
				return
			}
		}
	}
}

// newDraft deep-copies a plan out of the arena, preserving prescription and
// set identities.
func newDraft(arena *store.Store, original *models.Plan) *Draft {
	origID := original.ID
	d := &Draft{Plan: models.Plan{
		ID:         uuid.New(),
		Title:      original.Title,
		Notes:      original.Notes,
		IsFavorite: original.IsFavorite,
		IsDraft:    true,
		OriginalID: &origID,
	}}
	for _, p := range arena.PrescriptionsFor(original.ID) {
		dp := &DraftPrescription{Prescription: *p}
		dp.PlanID = d.Plan.ID
		for _, s := range arena.SetsFor(p.ID) {
			cp := *s
			dp.Sets = append(dp.Sets, &cp)
		}
		d.Prescriptions = append(d.Prescriptions, dp)
	}
	return d
}
