// Package store holds every domain entity in an id-addressed in-memory arena.
//
// The arena is the single source of truth while the server runs; the storage
// package snapshots it to Postgres. Records are addressed by uuid and related
// by id, not by object reference, which keeps the plan diff/merge algorithms
// free of ownership cycles. Deleting an entity never destroys the suggestion
// rows that reference it: their target reference is nullified and the row is
// kept as an orphaned audit record.
//
// The store does no locking. It expects a single serialized writer; the
// server layer provides that.
package store

import (
	"sort"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// Store is the in-memory arena.
type Store struct {
	plans         map[uuid.UUID]*models.Plan
	prescriptions map[uuid.UUID]*models.Prescription
	sets          map[uuid.UUID]*models.PrescribedSet
	suggestions   map[uuid.UUID]*models.Suggestion
	performances  map[uuid.UUID]*models.Performance
	histories     map[string]*models.ExerciseHistory
}

// New returns an empty arena.
func New() *Store {
	return &Store{
		plans:         make(map[uuid.UUID]*models.Plan),
		prescriptions: make(map[uuid.UUID]*models.Prescription),
		sets:          make(map[uuid.UUID]*models.PrescribedSet),
		suggestions:   make(map[uuid.UUID]*models.Suggestion),
		performances:  make(map[uuid.UUID]*models.Performance),
		histories:     make(map[string]*models.ExerciseHistory),
	}
}

// --- Plans ---

// PutPlan inserts or replaces a plan record.
func (s *Store) PutPlan(p *models.Plan) { s.plans[p.ID] = p }

// Plan looks up a plan by id. A missing id returns nil, never an error.
func (s *Store) Plan(id uuid.UUID) *models.Plan { return s.plans[id] }

// Plans returns all plans, originals before drafts, each group sorted by title.
func (s *Store) Plans() []*models.Plan {
	out := make([]*models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDraft != out[j].IsDraft {
			return !out[i].IsDraft
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// DeletePlan removes a plan row. Its prescriptions and sets must already have
// been removed (or re-parented) by the caller; dangling children would
// otherwise be orphaned silently.
func (s *Store) DeletePlan(id uuid.UUID) { delete(s.plans, id) }

// --- Prescriptions ---

// PutPrescription inserts or replaces a prescription record.
func (s *Store) PutPrescription(p *models.Prescription) { s.prescriptions[p.ID] = p }

// Prescription looks up a prescription by id, nil if absent.
func (s *Store) Prescription(id uuid.UUID) *models.Prescription { return s.prescriptions[id] }

// PrescriptionsFor returns a plan's prescriptions ordered by index.
func (s *Store) PrescriptionsFor(planID uuid.UUID) []*models.Prescription {
	var out []*models.Prescription
	for _, p := range s.prescriptions {
		if p.PlanID == planID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// DeletePrescription removes a prescription, its sets, and nullifies the
// target reference of every suggestion pointing at it or at one of its sets.
func (s *Store) DeletePrescription(id uuid.UUID) {
	for _, set := range s.SetsFor(id) {
		s.DeleteSet(set.ID)
	}
	for _, sug := range s.SuggestionsForExercise(id) {
		sug.TargetPrescriptionID = nil
	}
	delete(s.prescriptions, id)
}

// --- Sets ---

// PutSet inserts or replaces a prescribed set record.
func (s *Store) PutSet(set *models.PrescribedSet) { s.sets[set.ID] = set }

// Set looks up a prescribed set by id, nil if absent.
func (s *Store) Set(id uuid.UUID) *models.PrescribedSet { return s.sets[id] }

// SetsFor returns a prescription's sets ordered by index.
func (s *Store) SetsFor(prescriptionID uuid.UUID) []*models.PrescribedSet {
	var out []*models.PrescribedSet
	for _, set := range s.sets {
		if set.PrescriptionID == prescriptionID {
			out = append(out, set)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// DeleteSet removes a set and nullifies the set reference of every suggestion
// targeting it. The suggestion rows themselves survive as audit records.
func (s *Store) DeleteSet(id uuid.UUID) {
	for _, sug := range s.SuggestionsForSet(id) {
		sug.TargetSetID = nil
	}
	delete(s.sets, id)
}

// --- Suggestions ---

// PutSuggestion inserts or replaces a suggestion record.
func (s *Store) PutSuggestion(sug *models.Suggestion) { s.suggestions[sug.ID] = sug }

// Suggestion looks up a suggestion by id, nil if absent.
func (s *Store) Suggestion(id uuid.UUID) *models.Suggestion { return s.suggestions[id] }

// Suggestions returns every suggestion row, newest first.
func (s *Store) Suggestions() []*models.Suggestion {
	out := make([]*models.Suggestion, 0, len(s.suggestions))
	for _, sug := range s.suggestions {
		out = append(out, sug)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// SuggestionsForExercise returns suggestions whose target is the given
// prescription itself (exercise-level rows only).
func (s *Store) SuggestionsForExercise(prescriptionID uuid.UUID) []*models.Suggestion {
	var out []*models.Suggestion
	for _, sug := range s.suggestions {
		if sug.TargetSetID == nil && sug.TargetPrescriptionID != nil && *sug.TargetPrescriptionID == prescriptionID {
			out = append(out, sug)
		}
	}
	return out
}

// SuggestionsForSet returns suggestions targeting the given set.
func (s *Store) SuggestionsForSet(setID uuid.UUID) []*models.Suggestion {
	var out []*models.Suggestion
	for _, sug := range s.suggestions {
		if sug.TargetSetID != nil && *sug.TargetSetID == setID {
			out = append(out, sug)
		}
	}
	return out
}

// --- Performances ---

// PutPerformance inserts or replaces a performance record.
func (s *Store) PutPerformance(p *models.Performance) { s.performances[p.ID] = p }

// Performance looks up a performance by id, nil if absent.
func (s *Store) Performance(id uuid.UUID) *models.Performance { return s.performances[id] }

// DeletePerformance removes a performance row.
func (s *Store) DeletePerformance(id uuid.UUID) { delete(s.performances, id) }

// PerformancesFor returns all performances for a catalog id, most recent
// first, the input ordering the stats engine expects.
func (s *Store) PerformancesFor(catalogID string) []models.Performance {
	var out []models.Performance
	for _, p := range s.performances {
		if p.CatalogID == catalogID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// --- Histories ---

// PutHistory caches recomputed statistics for a catalog id.
func (s *Store) PutHistory(h *models.ExerciseHistory) { s.histories[h.CatalogID] = h }

// History looks up cached statistics, nil if never computed.
func (s *Store) History(catalogID string) *models.ExerciseHistory { return s.histories[catalogID] }

// DeleteHistory drops the cached statistics for a catalog id.
func (s *Store) DeleteHistory(catalogID string) { delete(s.histories, catalogID) }

// Histories returns all cached statistics sorted by catalog id.
func (s *Store) Histories() []*models.ExerciseHistory {
	out := make([]*models.ExerciseHistory, 0, len(s.histories))
	for _, h := range s.histories {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CatalogID < out[j].CatalogID })
	return out
}
