// Package suggest provides the review-side view of suggestion records: the
// outstanding-suggestions query for a plan and the deterministic grouping the
// review UI walks. It also declares the interfaces the external rule engine,
// outcome evaluator, and deduplicator plug into.
package suggest

import (
	"fmt"
	"sort"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// GroupKind classifies a review group within an exercise section.
type GroupKind string

const (
	GroupSet      GroupKind = "set"       // suggestions on one distinct set
	GroupRepRange GroupKind = "rep_range" // exercise-level rep policy
	GroupSettings GroupKind = "settings"  // exercise-level catch-all
)

// Group is one reviewable bundle of suggestions.
type Group struct {
	Kind        GroupKind            `json:"kind"`
	Title       string               `json:"title"`
	SetIndex    int                  `json:"set_index,omitempty"` // only for GroupSet
	Suggestions []*models.Suggestion `json:"suggestions"`
}

// ExerciseSection is all groups for one target exercise.
type ExerciseSection struct {
	PrescriptionID uuid.UUID `json:"prescription_id"`
	Name           string    `json:"name"`
	Index          int       `json:"index"`
	Groups         []Group   `json:"groups"`
}

// Pending returns the outstanding (pending or deferred) suggestions whose
// target belongs to the given plan. This is the authoritative gate shown
// before a plan-based workout starts, independent of storage order.
func Pending(arena *store.Store, planID uuid.UUID) []*models.Suggestion {
	var out []*models.Suggestion
	for _, sug := range arena.Suggestions() {
		if !sug.Decision.Open() {
			continue
		}
		if presc := resolvePrescription(arena, sug); presc != nil && presc.PlanID == planID {
			out = append(out, sug)
		}
	}
	return out
}

// Grouping partitions a flat suggestion list into a stable hierarchy:
// sections per target exercise ordered by exercise index, and within each
// section one group per distinct target set (by set index ascending) followed
// by at most one rep-range group and one settings group. Rule-engine runs
// append rows in arbitrary order over time; the output here does not depend
// on input order.
func Grouping(arena *store.Store, sugs []*models.Suggestion) []ExerciseSection {
	type bucket struct {
		presc    *models.Prescription
		bySet    map[uuid.UUID][]*models.Suggestion
		repRange []*models.Suggestion
		settings []*models.Suggestion
	}
	buckets := make(map[uuid.UUID]*bucket)

	for _, sug := range sugs {
		presc := resolvePrescription(arena, sug)
		if presc == nil {
			continue // orphaned audit row, nothing to review
		}
		b := buckets[presc.ID]
		if b == nil {
			b = &bucket{presc: presc, bySet: make(map[uuid.UUID][]*models.Suggestion)}
			buckets[presc.ID] = b
		}
		switch {
		case sug.TargetSetID != nil:
			b.bySet[*sug.TargetSetID] = append(b.bySet[*sug.TargetSetID], sug)
		case isRepRangeKind(sug.Kind):
			b.repRange = append(b.repRange, sug)
		default:
			b.settings = append(b.settings, sug)
		}
	}

	var sections []ExerciseSection
	for _, b := range buckets {
		sec := ExerciseSection{
			PrescriptionID: b.presc.ID,
			Name:           b.presc.Name,
			Index:          b.presc.Index,
		}

		type setGroup struct {
			index int
			id    uuid.UUID
			sugs  []*models.Suggestion
		}
		var setGroups []setGroup
		for setID, list := range b.bySet {
			idx := 0
			if set := arena.Set(setID); set != nil {
				idx = set.Index
			}
			setGroups = append(setGroups, setGroup{index: idx, id: setID, sugs: list})
		}
		sort.Slice(setGroups, func(i, j int) bool {
			if setGroups[i].index != setGroups[j].index {
				return setGroups[i].index < setGroups[j].index
			}
			return setGroups[i].id.String() < setGroups[j].id.String()
		})
		for _, sg := range setGroups {
			sec.Groups = append(sec.Groups, Group{
				Kind:        GroupSet,
				Title:       fmt.Sprintf("Set %d", sg.index+1),
				SetIndex:    sg.index,
				Suggestions: sortStable(sg.sugs),
			})
		}
		if len(b.repRange) > 0 {
			sec.Groups = append(sec.Groups, Group{
				Kind:        GroupRepRange,
				Title:       "Rep Range",
				Suggestions: sortStable(b.repRange),
			})
		}
		if len(b.settings) > 0 {
			sec.Groups = append(sec.Groups, Group{
				Kind:        GroupSettings,
				Title:       "Settings",
				Suggestions: sortStable(b.settings),
			})
		}
		sections = append(sections, sec)
	}

	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Index != sections[j].Index {
			return sections[i].Index < sections[j].Index
		}
		return sections[i].PrescriptionID.String() < sections[j].PrescriptionID.String()
	})
	return sections
}

// resolvePrescription finds a suggestion's target exercise, via the set when
// the row is set-level. Nullified references resolve to nil.
func resolvePrescription(arena *store.Store, sug *models.Suggestion) *models.Prescription {
	if sug.TargetSetID != nil {
		if set := arena.Set(*sug.TargetSetID); set != nil {
			return arena.Prescription(set.PrescriptionID)
		}
		return nil
	}
	if sug.TargetPrescriptionID != nil {
		return arena.Prescription(*sug.TargetPrescriptionID)
	}
	return nil
}

func isRepRangeKind(k models.ChangeKind) bool {
	switch k {
	case models.ChangeIncreaseRepRangeLower, models.ChangeDecreaseRepRangeLower,
		models.ChangeIncreaseRepRangeUpper, models.ChangeDecreaseRepRangeUpper,
		models.ChangeIncreaseRepRangeTarget, models.ChangeDecreaseRepRangeTarget,
		models.ChangeRepRangeMode:
		return true
	}
	return false
}

func sortStable(sugs []*models.Suggestion) []*models.Suggestion {
	out := make([]*models.Suggestion, len(sugs))
	copy(out, sugs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
