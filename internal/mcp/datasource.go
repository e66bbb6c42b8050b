package mcp

import (
	"context"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/service"
	"github.com/claude/liftplan/internal/suggest"
	"github.com/google/uuid"
)

// DataSource abstracts the read surface for MCP tools. Both LocalSource
// (in-process service) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	Plans(ctx context.Context) ([]models.Plan, error)
	PlanDetail(ctx context.Context, id uuid.UUID) (*service.PlanDetail, error)
	PendingSuggestions(ctx context.Context, planID uuid.UUID) ([]models.Suggestion, error)
	GroupedSuggestions(ctx context.Context, planID uuid.UUID) ([]suggest.ExerciseSection, error)
	ExerciseHistory(ctx context.Context, catalogID string) (models.ExerciseHistory, error)
	Performances(ctx context.Context, catalogID string) ([]models.Performance, error)
}

// LocalSource adapts an in-process service to the DataSource interface.
type LocalSource struct {
	svc *service.Service
}

// Compile-time check: *LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)

// NewLocalSource wraps a service for local MCP mode.
func NewLocalSource(svc *service.Service) *LocalSource {
	return &LocalSource{svc: svc}
}

func (l *LocalSource) Plans(context.Context) ([]models.Plan, error) {
	return l.svc.Plans(), nil
}

func (l *LocalSource) PlanDetail(_ context.Context, id uuid.UUID) (*service.PlanDetail, error) {
	return l.svc.PlanDetailByID(id), nil
}

func (l *LocalSource) PendingSuggestions(_ context.Context, planID uuid.UUID) ([]models.Suggestion, error) {
	return l.svc.PendingSuggestions(planID), nil
}

func (l *LocalSource) GroupedSuggestions(_ context.Context, planID uuid.UUID) ([]suggest.ExerciseSection, error) {
	return l.svc.GroupedSuggestions(planID), nil
}

func (l *LocalSource) ExerciseHistory(_ context.Context, catalogID string) (models.ExerciseHistory, error) {
	return l.svc.ExerciseHistory(catalogID), nil
}

func (l *LocalSource) Performances(_ context.Context, catalogID string) ([]models.Performance, error) {
	return l.svc.Performances(catalogID), nil
}
