package suggest

import (
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// The concrete heuristics live outside this module. This file pins down the
// seams they plug into and the persistence pipeline that runs after a
// completed session.

// Context bundles everything a rule engine sees when proposing changes for
// one prescription after a session.
type Context struct {
	SessionID     uuid.UUID
	Performance   models.Performance
	Prescription  models.Prescription
	Sets          []models.PrescribedSet
	History       []models.Performance
	Plan          models.Plan
	TrainingStyle string // pre-resolved classification, e.g. "straight_sets"
}

// RuleEngine proposes prescription changes from a completed performance.
type RuleEngine interface {
	Evaluate(ctx Context) []models.Suggestion
}

// Evaluation is the retroactive score of a previously accepted suggestion.
type Evaluation struct {
	Outcome    models.Outcome
	Confidence float64
	Reason     string
}

// OutcomeEvaluator scores an accepted suggestion against a later performance.
// A nil result means no verdict yet.
type OutcomeEvaluator interface {
	Evaluate(sug models.Suggestion, later models.Performance) *Evaluation
}

// Deduplicator drops conflicting or duplicate proposals on the same target
// before anything is persisted.
type Deduplicator interface {
	Process(candidates []models.Suggestion) []models.Suggestion
}

// TargetDedup drops candidates whose change kind already has an open
// suggestion against the same target, either in the arena or earlier in the
// same batch.
type TargetDedup struct {
	arena *store.Store
}

// NewTargetDedup builds the default deduplicator over an arena.
func NewTargetDedup(arena *store.Store) *TargetDedup {
	return &TargetDedup{arena: arena}
}

type targetKey struct {
	kind   models.ChangeKind
	presc  uuid.UUID
	set    uuid.UUID
	hasSet bool
}

func keyOf(sug models.Suggestion) targetKey {
	k := targetKey{kind: sug.Kind}
	if sug.TargetPrescriptionID != nil {
		k.presc = *sug.TargetPrescriptionID
	}
	if sug.TargetSetID != nil {
		k.set = *sug.TargetSetID
		k.hasSet = true
	}
	return k
}

// Process implements Deduplicator.
func (d *TargetDedup) Process(candidates []models.Suggestion) []models.Suggestion {
	seen := make(map[targetKey]bool)
	for _, existing := range d.arena.Suggestions() {
		if existing.Decision.Open() {
			seen[keyOf(*existing)] = true
		}
	}
	out := make([]models.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		k := keyOf(c)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// Persist stamps freshly generated rule suggestions and inserts them into the
// arena: origin rules, decision pending, outcome pending. Rows arriving with
// a zero id or origin are normalized; everything else is kept as proposed.
func Persist(arena *store.Store, dedup Deduplicator, candidates []models.Suggestion) []*models.Suggestion {
	if dedup != nil {
		candidates = dedup.Process(candidates)
	}
	out := make([]*models.Suggestion, 0, len(candidates))
	for i := range candidates {
		sug := candidates[i]
		if sug.ID == uuid.Nil {
			sug.ID = uuid.New()
		}
		if sug.Origin == "" {
			sug.Origin = models.OriginRules
		}
		sug.Decision = models.DecisionPending
		sug.Outcome = models.OutcomePending
		if sug.CreatedAt.IsZero() {
			sug.CreatedAt = time.Now()
		}
		arena.PutSuggestion(&sug)
		out = append(out, &sug)
	}
	return out
}

// Score applies an evaluator verdict to an accepted suggestion. Suggestions
// whose outcome already moved past pending are left alone.
func Score(sug *models.Suggestion, eval OutcomeEvaluator, later models.Performance) {
	if sug.Decision != models.DecisionAccepted || sug.Outcome != models.OutcomePending {
		return
	}
	v := eval.Evaluate(*sug, later)
	if v == nil {
		return
	}
	sug.Outcome = v.Outcome
	if v.Reason != "" {
		sug.Reasoning = v.Reason
	}
	now := time.Now()
	sug.EvaluatedAt = &now
	sessionID := later.SessionID
	sug.EvaluatedSessionID = &sessionID
}
