package suggest

import (
	"testing"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// stubEvaluator records its calls and returns one fixed verdict (nil means
// "no verdict yet").
type stubEvaluator struct {
	verdict *Evaluation
	calls   int
}

func (e *stubEvaluator) Evaluate(sug models.Suggestion, later models.Performance) *Evaluation {
	e.calls++
	return e.verdict
}

func acceptedSuggestion() *models.Suggestion {
	return &models.Suggestion{
		ID:        uuid.New(),
		Origin:    models.OriginRules,
		CatalogID: "squat",
		Kind:      models.ChangeIncreaseWeight,
		Decision:  models.DecisionAccepted,
		Outcome:   models.OutcomePending,
		CreatedAt: time.Now(),
	}
}

// TestScoreAppliesVerdict: an accepted, unevaluated suggestion takes the
// evaluator's outcome together with the evaluation session and time.
func TestScoreAppliesVerdict(t *testing.T) {
	sug := acceptedSuggestion()
	later := models.Performance{SessionID: uuid.New(), CatalogID: "squat"}
	eval := &stubEvaluator{verdict: &Evaluation{
		Outcome: models.OutcomeTooEasy, Confidence: 0.8, Reason: "all sets at top reps",
	}}

	Score(sug, eval, later)

	if sug.Outcome != models.OutcomeTooEasy {
		t.Errorf("outcome = %s, want too_easy", sug.Outcome)
	}
	if sug.Reasoning != "all sets at top reps" {
		t.Errorf("reasoning = %q, want the verdict reason", sug.Reasoning)
	}
	if sug.EvaluatedAt == nil {
		t.Error("EvaluatedAt not stamped")
	}
	if sug.EvaluatedSessionID == nil || *sug.EvaluatedSessionID != later.SessionID {
		t.Errorf("EvaluatedSessionID = %v, want %s", sug.EvaluatedSessionID, later.SessionID)
	}
}

// TestScoreGatesOnAcceptedPending: only accepted suggestions whose outcome is
// still pending reach the evaluator. Open decisions and already-scored rows
// are left alone without a call.
func TestScoreGatesOnAcceptedPending(t *testing.T) {
	later := models.Performance{SessionID: uuid.New(), CatalogID: "squat"}

	notAccepted := acceptedSuggestion()
	notAccepted.Decision = models.DecisionPending
	eval := &stubEvaluator{verdict: &Evaluation{Outcome: models.OutcomeGood}}
	Score(notAccepted, eval, later)
	if eval.calls != 0 {
		t.Errorf("evaluator called %d times for a pending decision, want 0", eval.calls)
	}
	if notAccepted.Outcome != models.OutcomePending {
		t.Errorf("outcome = %s, want pending", notAccepted.Outcome)
	}

	scored := acceptedSuggestion()
	scored.Outcome = models.OutcomeUserModified
	eval = &stubEvaluator{verdict: &Evaluation{Outcome: models.OutcomeGood}}
	Score(scored, eval, later)
	if eval.calls != 0 {
		t.Errorf("evaluator called %d times for an evaluated row, want 0", eval.calls)
	}
	if scored.Outcome != models.OutcomeUserModified {
		t.Errorf("outcome = %s, want user_modified preserved", scored.Outcome)
	}
}

// TestScoreNilVerdictLeavesPending: a nil evaluator result means no verdict
// yet; the suggestion stays scoreable on a later session.
func TestScoreNilVerdictLeavesPending(t *testing.T) {
	sug := acceptedSuggestion()
	eval := &stubEvaluator{verdict: nil}

	Score(sug, eval, models.Performance{SessionID: uuid.New(), CatalogID: "squat"})

	if eval.calls != 1 {
		t.Errorf("evaluator calls = %d, want 1", eval.calls)
	}
	if sug.Outcome != models.OutcomePending {
		t.Errorf("outcome = %s, want pending", sug.Outcome)
	}
	if sug.EvaluatedAt != nil {
		t.Error("EvaluatedAt stamped without a verdict")
	}
}
