package store

import (
	"testing"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// TestDeleteSetNullifiesSuggestionTargets: deleting a referenced entity
// nullifies dangling suggestion references instead of cascading the rows.
func TestDeleteSetNullifiesSuggestionTargets(t *testing.T) {
	s := New()
	set := &models.PrescribedSet{ID: uuid.New(), PrescriptionID: uuid.New(), Type: models.SetTypeWorking}
	s.PutSet(set)

	setID := set.ID
	sug := &models.Suggestion{
		ID: uuid.New(), Origin: models.OriginRules, Kind: models.ChangeIncreaseWeight,
		TargetSetID: &setID, Decision: models.DecisionPending, Outcome: models.OutcomePending,
	}
	s.PutSuggestion(sug)

	s.DeleteSet(set.ID)

	if s.Set(set.ID) != nil {
		t.Error("set still present")
	}
	if sug.TargetSetID != nil {
		t.Error("suggestion target not nullified")
	}
	if s.Suggestion(sug.ID) == nil {
		t.Error("suggestion row deleted, want orphaned audit record")
	}
}

// TestDeletePrescriptionCascadesSetsAndNullifies: deleting an exercise
// removes its sets, nullifying both set-level and exercise-level suggestion
// references along the way.
func TestDeletePrescriptionCascadesSetsAndNullifies(t *testing.T) {
	s := New()
	presc := &models.Prescription{ID: uuid.New(), PlanID: uuid.New(), Name: "Bench"}
	s.PutPrescription(presc)
	set := &models.PrescribedSet{ID: uuid.New(), PrescriptionID: presc.ID}
	s.PutSet(set)

	prescID, setID := presc.ID, set.ID
	exSug := &models.Suggestion{ID: uuid.New(), Origin: models.OriginRules,
		Kind: models.ChangeIncreaseRepRangeUpper, TargetPrescriptionID: &prescID}
	setSug := &models.Suggestion{ID: uuid.New(), Origin: models.OriginRules,
		Kind: models.ChangeIncreaseWeight, TargetPrescriptionID: &prescID, TargetSetID: &setID}
	s.PutSuggestion(exSug)
	s.PutSuggestion(setSug)

	s.DeletePrescription(presc.ID)

	if s.Prescription(presc.ID) != nil || s.Set(set.ID) != nil {
		t.Error("prescription or set still present")
	}
	if exSug.TargetPrescriptionID != nil {
		t.Error("exercise suggestion target not nullified")
	}
	if setSug.TargetSetID != nil {
		t.Error("set suggestion target not nullified")
	}
}

// TestPerformancesForOrdersMostRecentFirst pins down the input ordering the
// stats engine is specified against.
func TestPerformancesForOrdersMostRecentFirst(t *testing.T) {
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, days := range []int{5, 1, 9} {
		s.PutPerformance(&models.Performance{
			ID: uuid.New(), CatalogID: "squat", Date: base.AddDate(0, 0, days),
		})
	}
	s.PutPerformance(&models.Performance{ID: uuid.New(), CatalogID: "bench", Date: base})

	got := s.PerformancesFor("squat")
	if len(got) != 3 {
		t.Fatalf("count = %d, want 3 (catalog filter)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Fatal("not ordered most recent first")
		}
	}
}

// TestPrescriptionsForOrdersByIndex verifies child queries sort by the
// entity index, not map iteration order.
func TestPrescriptionsForOrdersByIndex(t *testing.T) {
	s := New()
	planID := uuid.New()
	for _, idx := range []int{2, 0, 1} {
		s.PutPrescription(&models.Prescription{ID: uuid.New(), PlanID: planID, Index: idx})
	}
	got := s.PrescriptionsFor(planID)
	for i, p := range got {
		if p.Index != i {
			t.Fatalf("position %d has index %d", i, p.Index)
		}
	}
}

// TestDraftLookupAbsence: lookups for missing ids are absence, not panics.
func TestDraftLookupAbsence(t *testing.T) {
	s := New()
	if s.Plan(uuid.New()) != nil || s.Prescription(uuid.New()) != nil ||
		s.Set(uuid.New()) != nil || s.Suggestion(uuid.New()) != nil ||
		s.Performance(uuid.New()) != nil || s.History("nothing") != nil {
		t.Error("missing id returned a record")
	}
}
