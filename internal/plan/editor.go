package plan

import (
	"log/slog"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/google/uuid"
)

// Editor owns the draft lifecycle for every plan in the arena. Drafts live
// only in memory: a crash discards open drafts, never originals.
//
// The "one live draft per original" rule is not lock-enforced. CreateEditingCopy
// simply hands back the existing draft when one is already open, which keeps
// repeated opens idempotent for a single caller.
type Editor struct {
	arena  *store.Store
	drafts map[uuid.UUID]*Draft // keyed by original plan id
	log    *slog.Logger
}

// NewEditor creates an Editor over the given arena.
func NewEditor(arena *store.Store, log *slog.Logger) *Editor {
	return &Editor{arena: arena, drafts: make(map[uuid.UUID]*Draft), log: log}
}

// CreateEditingCopy opens (or resumes) a draft for the given original plan.
// Returns nil if the original does not exist.
func (e *Editor) CreateEditingCopy(originalID uuid.UUID) *Draft {
	original := e.arena.Plan(originalID)
	if original == nil || original.IsDraft {
		return nil
	}
	if d, ok := e.drafts[originalID]; ok {
		return d
	}
	d := newDraft(e.arena, original)
	e.drafts[originalID] = d
	e.log.Debug("draft opened", "plan", originalID, "draft", d.Plan.ID)
	return d
}

// Draft returns the open draft for an original plan, nil if none.
func (e *Editor) Draft(originalID uuid.UUID) *Draft {
	return e.drafts[originalID]
}

// CancelEditing discards a draft. The original is untouched.
func (e *Editor) CancelEditing(originalID uuid.UUID) {
	delete(e.drafts, originalID)
}

// FinishEditing commits a draft: change detection (including overrides of
// invalidated suggestions) runs first, then the draft's structure and field
// values are applied onto the original and the draft is discarded.
//
// A draft whose last exercise was removed routes to full plan deletion
// instead of a partial merge.
func (e *Editor) FinishEditing(originalID uuid.UUID) {
	d := e.drafts[originalID]
	if d == nil {
		return
	}
	original := e.arena.Plan(originalID)
	if original == nil {
		delete(e.drafts, originalID)
		return
	}
	if len(d.Prescriptions) == 0 {
		e.log.Info("draft emptied, deleting plan", "plan", originalID)
		e.DeletePlanEntirely(originalID)
		return
	}
	detectChanges(e.arena, d, original)
	applyToOriginal(e.arena, d, original)
	delete(e.drafts, originalID)
	e.log.Info("draft committed", "plan", originalID)
}

// DeletePlanEntirely removes a plan, its prescriptions and sets, and any open
// draft. Suggestion rows that referenced the deleted entities survive with
// nullified target references.
func (e *Editor) DeletePlanEntirely(planID uuid.UUID) {
	delete(e.drafts, planID)
	p := e.arena.Plan(planID)
	if p == nil {
		return
	}
	for _, presc := range e.arena.PrescriptionsFor(planID) {
		overrideExercise(e.arena, presc.ID, nil)
		e.arena.DeletePrescription(presc.ID)
	}
	e.arena.DeletePlan(planID)
}

// Accept marks a suggestion accepted and applies it to its live target.
func (e *Editor) Accept(sugID uuid.UUID) {
	sug := e.arena.Suggestion(sugID)
	if sug == nil || !sug.Decision.Open() {
		return
	}
	sug.Decision = models.DecisionAccepted
	e.applyChange(sug)
}

// Reject marks a suggestion rejected. Its target is untouched, and so is the
// outcome axis: the ignored outcome is reserved for accepted suggestions the
// lifter did not follow through on, which only the outcome evaluator can tell.
func (e *Editor) Reject(sugID uuid.UUID) {
	sug := e.arena.Suggestion(sugID)
	if sug == nil || !sug.Decision.Open() {
		return
	}
	sug.Decision = models.DecisionRejected
}

// Defer postpones a pending suggestion to a later review.
func (e *Editor) Defer(sugID uuid.UUID) {
	sug := e.arena.Suggestion(sugID)
	if sug == nil || sug.Decision != models.DecisionPending {
		return
	}
	sug.Decision = models.DecisionDeferred
}

// AcceptAll accepts every outstanding suggestion in the given list, applying
// each to its live target in order.
func (e *Editor) AcceptAll(sugs []*models.Suggestion) {
	for _, sug := range sugs {
		e.Accept(sug.ID)
	}
}
