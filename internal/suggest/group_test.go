package suggest

import (
	"testing"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

type reviewFixture struct {
	arena  *store.Store
	plan   *models.Plan
	bench  *models.Prescription
	squat  *models.Prescription
	sets   map[string]*models.PrescribedSet // "bench0", "bench1", "squat0"
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	arena := store.New()
	plan := &models.Plan{ID: uuid.New(), Title: "Full Body"}
	arena.PutPlan(plan)

	bench := &models.Prescription{ID: uuid.New(), PlanID: plan.ID, Index: 0, CatalogID: "bench", Name: "Bench Press"}
	squat := &models.Prescription{ID: uuid.New(), PlanID: plan.ID, Index: 1, CatalogID: "squat", Name: "Squat"}
	arena.PutPrescription(bench)
	arena.PutPrescription(squat)

	sets := map[string]*models.PrescribedSet{
		"bench0": {ID: uuid.New(), PrescriptionID: bench.ID, Index: 0, Type: models.SetTypeWorking},
		"bench1": {ID: uuid.New(), PrescriptionID: bench.ID, Index: 1, Type: models.SetTypeWorking},
		"squat0": {ID: uuid.New(), PrescriptionID: squat.ID, Index: 0, Type: models.SetTypeWorking},
	}
	for _, s := range sets {
		arena.PutSet(s)
	}
	return &reviewFixture{arena: arena, plan: plan, bench: bench, squat: squat, sets: sets}
}

func (f *reviewFixture) setSuggestion(presc *models.Prescription, set *models.PrescribedSet, kind models.ChangeKind, decision models.Decision) *models.Suggestion {
	prescID, setID := presc.ID, set.ID
	sug := &models.Suggestion{
		ID: uuid.New(), Origin: models.OriginRules, CatalogID: presc.CatalogID,
		TargetPrescriptionID: &prescID, TargetSetID: &setID, Kind: kind,
		Decision: decision, Outcome: models.OutcomePending, CreatedAt: time.Now(),
	}
	f.arena.PutSuggestion(sug)
	return sug
}

func (f *reviewFixture) exerciseSuggestion(presc *models.Prescription, kind models.ChangeKind, decision models.Decision) *models.Suggestion {
	prescID := presc.ID
	sug := &models.Suggestion{
		ID: uuid.New(), Origin: models.OriginRules, CatalogID: presc.CatalogID,
		TargetPrescriptionID: &prescID, Kind: kind,
		Decision: decision, Outcome: models.OutcomePending, CreatedAt: time.Now(),
	}
	f.arena.PutSuggestion(sug)
	return sug
}

// TestPendingFiltersByPlanAndOpenDecision: only pending/deferred rows whose
// target belongs to the plan count as outstanding.
func TestPendingFiltersByPlanAndOpenDecision(t *testing.T) {
	f := newReviewFixture(t)
	pending := f.setSuggestion(f.bench, f.sets["bench0"], models.ChangeIncreaseWeight, models.DecisionPending)
	deferred := f.exerciseSuggestion(f.squat, models.ChangeIncreaseRepRangeUpper, models.DecisionDeferred)
	f.setSuggestion(f.bench, f.sets["bench1"], models.ChangeIncreaseReps, models.DecisionAccepted)
	f.exerciseSuggestion(f.bench, models.ChangeRepRangeMode, models.DecisionRejected)

	// A row for a different plan's exercise.
	otherPlan := &models.Plan{ID: uuid.New(), Title: "Other"}
	f.arena.PutPlan(otherPlan)
	other := &models.Prescription{ID: uuid.New(), PlanID: otherPlan.ID, Index: 0, CatalogID: "curl", Name: "Curl"}
	f.arena.PutPrescription(other)
	f.exerciseSuggestion(other, models.ChangeRestPolicy, models.DecisionPending)

	got := Pending(f.arena, f.plan.ID)
	if len(got) != 2 {
		t.Fatalf("pending count = %d, want 2", len(got))
	}
	ids := map[uuid.UUID]bool{got[0].ID: true, got[1].ID: true}
	if !ids[pending.ID] || !ids[deferred.ID] {
		t.Error("wrong rows returned as outstanding")
	}
}

// TestPendingSkipsOrphanedRows: a row whose target was deleted (reference
// nullified) is audit history, not an outstanding suggestion.
func TestPendingSkipsOrphanedRows(t *testing.T) {
	f := newReviewFixture(t)
	sug := f.setSuggestion(f.bench, f.sets["bench0"], models.ChangeIncreaseWeight, models.DecisionPending)
	f.arena.DeleteSet(f.sets["bench0"].ID)

	if sug.TargetSetID != nil {
		t.Fatal("delete did not nullify target reference")
	}
	if got := Pending(f.arena, f.plan.ID); len(got) != 0 {
		t.Errorf("pending count = %d, want 0 for orphaned row", len(got))
	}
}

// TestGroupingSetGroupsPrecedePolicyGroups replays the review-order rule:
// one set-level suggestion on set index 0 plus one rep-range suggestion on
// the same exercise yields two groups with "Set 1" first.
func TestGroupingSetGroupsPrecedePolicyGroups(t *testing.T) {
	f := newReviewFixture(t)
	f.setSuggestion(f.bench, f.sets["bench0"], models.ChangeIncreaseWeight, models.DecisionPending)
	f.exerciseSuggestion(f.bench, models.ChangeIncreaseRepRangeUpper, models.DecisionPending)

	sections := Grouping(f.arena, Pending(f.arena, f.plan.ID))
	if len(sections) != 1 {
		t.Fatalf("section count = %d, want 1", len(sections))
	}
	groups := sections[0].Groups
	if len(groups) != 2 {
		t.Fatalf("group count = %d, want 2", len(groups))
	}
	if groups[0].Kind != GroupSet || groups[0].Title != "Set 1" {
		t.Errorf("first group = %s %q, want set group 'Set 1'", groups[0].Kind, groups[0].Title)
	}
	if groups[1].Kind != GroupRepRange {
		t.Errorf("second group = %s, want rep_range", groups[1].Kind)
	}
}

// TestGroupingIsOrderIndependent: a fixed logical content must group
// identically no matter how the input list is permuted, since rule-engine
// runs append rows in arbitrary order over time.
func TestGroupingIsOrderIndependent(t *testing.T) {
	f := newReviewFixture(t)
	a := f.setSuggestion(f.bench, f.sets["bench1"], models.ChangeIncreaseWeight, models.DecisionPending)
	b := f.setSuggestion(f.bench, f.sets["bench0"], models.ChangeDecreaseRest, models.DecisionPending)
	c := f.exerciseSuggestion(f.squat, models.ChangeIncreaseRepRangeLower, models.DecisionPending)
	d := f.exerciseSuggestion(f.bench, models.ChangeRestPolicy, models.DecisionPending)

	perms := [][]*models.Suggestion{
		{a, b, c, d},
		{d, c, b, a},
		{c, a, d, b},
	}
	var first []ExerciseSection
	for i, perm := range perms {
		got := Grouping(f.arena, perm)
		if i == 0 {
			first = got
			continue
		}
		if !sectionsEqual(first, got) {
			t.Fatalf("permutation %d grouped differently", i)
		}
	}

	// Shape: bench section (index 0) before squat; within bench, set 0 then
	// set 1 then settings.
	if len(first) != 2 || first[0].PrescriptionID != f.bench.ID {
		t.Fatal("bench section not first")
	}
	bench := first[0]
	if len(bench.Groups) != 3 {
		t.Fatalf("bench group count = %d, want 3", len(bench.Groups))
	}
	if bench.Groups[0].SetIndex != 0 || bench.Groups[1].SetIndex != 1 {
		t.Error("set groups not ordered by set index")
	}
	if bench.Groups[2].Kind != GroupSettings {
		t.Errorf("trailing bench group = %s, want settings", bench.Groups[2].Kind)
	}
	if first[1].Groups[0].Kind != GroupRepRange {
		t.Errorf("squat group = %s, want rep_range", first[1].Groups[0].Kind)
	}
}

func sectionsEqual(a, b []ExerciseSection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].PrescriptionID != b[i].PrescriptionID || len(a[i].Groups) != len(b[i].Groups) {
			return false
		}
		for j := range a[i].Groups {
			ga, gb := a[i].Groups[j], b[i].Groups[j]
			if ga.Kind != gb.Kind || ga.Title != gb.Title || len(ga.Suggestions) != len(gb.Suggestions) {
				return false
			}
			for k := range ga.Suggestions {
				if ga.Suggestions[k].ID != gb.Suggestions[k].ID {
					return false
				}
			}
		}
	}
	return true
}

// TestPersistStampsRuleRows: freshly generated suggestions are persisted
// with origin rules, decision pending, outcome pending, after deduplication.
func TestPersistStampsRuleRows(t *testing.T) {
	f := newReviewFixture(t)
	prescID := f.bench.ID
	candidates := []models.Suggestion{
		{CatalogID: "bench", TargetPrescriptionID: &prescID, Kind: models.ChangeIncreaseRepRangeUpper, NewValue: 15},
		{CatalogID: "bench", TargetPrescriptionID: &prescID, Kind: models.ChangeIncreaseRepRangeUpper, NewValue: 15},
	}

	out := Persist(f.arena, dropDuplicates{}, candidates)
	if len(out) != 1 {
		t.Fatalf("persisted count = %d, want 1 after dedup", len(out))
	}
	sug := out[0]
	if sug.Origin != models.OriginRules || sug.Decision != models.DecisionPending || sug.Outcome != models.OutcomePending {
		t.Errorf("stamped %s/%s/%s, want rules/pending/pending", sug.Origin, sug.Decision, sug.Outcome)
	}
	if sug.ID == uuid.Nil {
		t.Error("no id assigned")
	}
	if f.arena.Suggestion(sug.ID) == nil {
		t.Error("row not inserted into arena")
	}
}

// dropDuplicates is a trivial test deduplicator keyed by target and kind.
type dropDuplicates struct{}

func (dropDuplicates) Process(candidates []models.Suggestion) []models.Suggestion {
	type key struct {
		presc uuid.UUID
		set   uuid.UUID
		kind  models.ChangeKind
	}
	seen := make(map[key]bool)
	var out []models.Suggestion
	for _, c := range candidates {
		k := key{kind: c.Kind}
		if c.TargetPrescriptionID != nil {
			k.presc = *c.TargetPrescriptionID
		}
		if c.TargetSetID != nil {
			k.set = *c.TargetSetID
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}
