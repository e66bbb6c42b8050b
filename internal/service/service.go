// Package service is the single serialized writer over the in-memory arena.
// Every operation takes one mutex, mutates in-memory state through the
// editing/stats cores, and marks the debounced saver; performances are the
// exception and are written straight to the database as sessions complete.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/stats"
	"github.com/claude/liftplan/internal/storage"
	"github.com/claude/liftplan/internal/store"
	"github.com/claude/liftplan/internal/suggest"
	"github.com/google/uuid"
)

// Service owns the arena and its collaborators.
type Service struct {
	mu        sync.Mutex
	arena     *store.Store
	editor    *plan.Editor
	cache     *stats.Cache
	db        *storage.DB              // nil in read-only deployments
	saver     *storage.Saver           // nil in read-only deployments
	evaluator suggest.OutcomeEvaluator // nil until installed
	log       *slog.Logger
}

// SetOutcomeEvaluator installs the retroactive scorer. When set, each recorded
// performance scores the accepted, not yet evaluated suggestions for the same
// exercise.
func (s *Service) SetOutcomeEvaluator(ev suggest.OutcomeEvaluator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluator = ev
}

// New builds a Service over a pre-loaded arena. db and saver may be nil for
// read-only consumers (the MCP binary).
func New(arena *store.Store, db *storage.DB, saver *storage.Saver, log *slog.Logger) *Service {
	return &Service{
		arena:  arena,
		editor: plan.NewEditor(arena, log),
		cache:  stats.NewCache(arena, stats.NewEngine(), log),
		db:     db,
		saver:  saver,
		log:    log,
	}
}

func (s *Service) markDirty() {
	if s.saver != nil {
		s.saver.Mark()
	}
}

// Snapshot captures the current persistable arena state under the lock.
func (s *Service) Snapshot() *storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.SnapshotArena(s.arena)
}

// --- Plans ---

// PlanDetail is a plan with its full prescription/set tree.
type PlanDetail struct {
	models.Plan
	Prescriptions []PrescriptionDetail `json:"prescriptions"`
}

// PrescriptionDetail is a prescription with its sets.
type PrescriptionDetail struct {
	models.Prescription
	Sets []models.PrescribedSet `json:"sets"`
}

// Plans lists all non-draft plans.
func (s *Service) Plans() []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Plan
	for _, p := range s.arena.Plans() {
		if !p.IsDraft {
			out = append(out, *p)
		}
	}
	return out
}

// PlanDetailByID returns a plan with its tree, nil if absent.
func (s *Service) PlanDetailByID(id uuid.UUID) *PlanDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planDetailLocked(id)
}

func (s *Service) planDetailLocked(id uuid.UUID) *PlanDetail {
	p := s.arena.Plan(id)
	if p == nil {
		return nil
	}
	detail := &PlanDetail{Plan: *p}
	for _, presc := range s.arena.PrescriptionsFor(p.ID) {
		pd := PrescriptionDetail{Prescription: *presc}
		for _, set := range s.arena.SetsFor(presc.ID) {
			pd.Sets = append(pd.Sets, *set)
		}
		detail.Prescriptions = append(detail.Prescriptions, pd)
	}
	return detail
}

// CreatePlan inserts a new empty plan.
func (s *Service) CreatePlan(title, notes string) models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Plan{ID: uuid.New(), Title: title, Notes: notes}
	s.arena.PutPlan(p)
	s.markDirty()
	return *p
}

// DeletePlan removes a plan entirely, draft included.
func (s *Service) DeletePlan(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.DeletePlanEntirely(id)
	s.markDirty()
}

// --- Draft lifecycle ---

// OpenDraft opens (or resumes) the editing copy for a plan. The returned
// draft is a snapshot clone; the live draft never leaves the lock.
func (s *Service) OpenDraft(planID uuid.UUID) *plan.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.CreateEditingCopy(planID)
	if d == nil {
		return nil
	}
	return d.Clone()
}

// DraftFor returns a snapshot of the open draft for a plan, nil if none.
func (s *Service) DraftFor(planID uuid.UUID) *plan.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return nil
	}
	return d.Clone()
}

// CommitDraft runs change detection and merges the draft onto the original.
func (s *Service) CommitDraft(planID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.FinishEditing(planID)
	s.markDirty()
}

// CancelDraft discards the draft, leaving the original untouched.
func (s *Service) CancelDraft(planID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.CancelEditing(planID)
}

// --- Draft edits ---

// UpdateDraftPlan applies plan-level scalars to the draft.
func (s *Service) UpdateDraftPlan(planID uuid.UUID, title, notes string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return fmt.Errorf("no open draft for plan %s", planID)
	}
	d.Plan.Title = title
	d.Plan.Notes = notes
	d.Plan.IsFavorite = favorite
	return nil
}

// PrescriptionPatch carries draft prescription edits.
type PrescriptionPatch struct {
	Name     *string          `json:"name,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
	RepRange *models.RepRange `json:"rep_range,omitempty"`
}

// UpdateDraftPrescription applies a patch to one draft prescription.
func (s *Service) UpdateDraftPrescription(planID, prescID uuid.UUID, patch PrescriptionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return fmt.Errorf("no open draft for plan %s", planID)
	}
	p := d.Prescription(prescID)
	if p == nil {
		return fmt.Errorf("prescription %s not in draft", prescID)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.RepRange != nil {
		p.RepRange = *patch.RepRange
	}
	return nil
}

// AddDraftPrescription appends an exercise to the draft and returns a copy
// of the new entity.
func (s *Service) AddDraftPrescription(planID uuid.UUID, catalogID, name string) (*plan.DraftPrescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return nil, fmt.Errorf("no open draft for plan %s", planID)
	}
	p := *d.AddPrescription(catalogID, name)
	return &p, nil
}

// RemoveDraftPrescription drops an exercise from the draft.
func (s *Service) RemoveDraftPrescription(planID, prescID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return fmt.Errorf("no open draft for plan %s", planID)
	}
	d.RemovePrescription(prescID)
	return nil
}

// SetPatch carries draft set edits.
type SetPatch struct {
	Type          *models.SetType `json:"type,omitempty"`
	TargetWeight  *float64        `json:"target_weight,omitempty"`
	TargetReps    *int            `json:"target_reps,omitempty"`
	TargetRestSec *int            `json:"target_rest_sec,omitempty"`
}

// AddDraftSet appends a set to a draft prescription.
func (s *Service) AddDraftSet(planID, prescID uuid.UUID) (*models.PrescribedSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return nil, fmt.Errorf("no open draft for plan %s", planID)
	}
	set := d.AddSet(prescID)
	if set == nil {
		return nil, fmt.Errorf("prescription %s not in draft", prescID)
	}
	cp := *set
	return &cp, nil
}

// UpdateDraftSet applies a patch to one draft set.
func (s *Service) UpdateDraftSet(planID, setID uuid.UUID, patch SetPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return fmt.Errorf("no open draft for plan %s", planID)
	}
	set := d.Set(setID)
	if set == nil {
		return fmt.Errorf("set %s not in draft", setID)
	}
	if patch.Type != nil {
		set.Type = *patch.Type
	}
	if patch.TargetWeight != nil {
		set.TargetWeight = *patch.TargetWeight
	}
	if patch.TargetReps != nil {
		set.TargetReps = *patch.TargetReps
	}
	if patch.TargetRestSec != nil {
		set.TargetRestSec = *patch.TargetRestSec
	}
	return nil
}

// RemoveDraftSet drops a set from the draft.
func (s *Service) RemoveDraftSet(planID, setID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.editor.Draft(planID)
	if d == nil {
		return fmt.Errorf("no open draft for plan %s", planID)
	}
	d.RemoveSet(setID)
	return nil
}

// --- Suggestions ---

// PendingSuggestions returns the outstanding suggestions for a plan.
func (s *Service) PendingSuggestions(planID uuid.UUID) []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySuggestions(suggest.Pending(s.arena, planID))
}

// GroupedSuggestions returns the review hierarchy for a plan's outstanding
// suggestions.
func (s *Service) GroupedSuggestions(planID uuid.UUID) []suggest.ExerciseSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return suggest.Grouping(s.arena, suggest.Pending(s.arena, planID))
}

// SubmitSuggestions persists externally generated suggestion candidates
// (rule-engine output), deduplicated against open rows, stamped
// pending/pending.
func (s *Service) SubmitSuggestions(candidates []models.Suggestion) []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	dedup := suggest.NewTargetDedup(s.arena)
	out := copySuggestions(suggest.Persist(s.arena, dedup, candidates))
	s.markDirty()
	return out
}

// AcceptSuggestion accepts one suggestion and applies it to its target.
func (s *Service) AcceptSuggestion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Accept(id)
	s.markDirty()
}

// RejectSuggestion rejects one suggestion.
func (s *Service) RejectSuggestion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Reject(id)
	s.markDirty()
}

// DeferSuggestion postpones one suggestion.
func (s *Service) DeferSuggestion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Defer(id)
	s.markDirty()
}

// AcceptAllSuggestions accepts and applies every outstanding suggestion for
// a plan.
func (s *Service) AcceptAllSuggestions(planID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := suggest.Pending(s.arena, planID)
	s.editor.AcceptAll(pending)
	s.markDirty()
	return len(pending)
}

// --- Performances and statistics ---

// RecordPerformance stores a completed performance and recomputes the
// affected exercise's cached statistics. The performance row is written
// through to the database immediately; the recomputed statistics ride the
// next autosave.
func (s *Service) RecordPerformance(ctx context.Context, p models.Performance) (models.Performance, models.ExerciseHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	if s.db != nil {
		if _, err := s.db.InsertPerformance(ctx, p); err != nil {
			return p, models.ExerciseHistory{}, err
		}
	}
	s.arena.PutPerformance(&p)
	h := s.cache.Refresh(p.CatalogID)
	if s.evaluator != nil {
		s.scoreAcceptedLocked(p)
	}
	s.markDirty()
	return p, *h, nil
}

// scoreAcceptedLocked runs the outcome evaluator over every suggestion for
// the performance's exercise. Score itself skips rows that are not accepted
// or whose outcome already moved past pending.
func (s *Service) scoreAcceptedLocked(later models.Performance) {
	for _, sug := range s.arena.Suggestions() {
		if sug.CatalogID != later.CatalogID {
			continue
		}
		suggest.Score(sug, s.evaluator, later)
	}
}

// DeletePerformance removes a performance and recomputes the affected
// exercise's statistics. When the last performance goes, the cached history
// row goes with it.
func (s *Service) DeletePerformance(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.arena.Performance(id)
	if p == nil {
		return nil
	}
	if s.db != nil {
		if err := s.db.DeletePerformance(ctx, id); err != nil {
			return err
		}
	}
	s.arena.DeletePerformance(id)
	s.cache.Refresh(p.CatalogID)
	s.markDirty()
	return nil
}

// ExerciseHistory returns cached statistics for a catalog id, computing them
// if missing.
func (s *Service) ExerciseHistory(catalogID string) models.ExerciseHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cache.ForCatalogID(catalogID)
}

// Performances returns all performances for one catalog id, most recent
// first.
func (s *Service) Performances(catalogID string) []models.Performance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.PerformancesFor(catalogID)
}

func copySuggestions(in []*models.Suggestion) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(in))
	for _, sug := range in {
		out = append(out, *sug)
	}
	return out
}
