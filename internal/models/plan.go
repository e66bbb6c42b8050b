package models

import (
	"github.com/google/uuid"
)

// SetType classifies a prescribed set.
type SetType string

const (
	SetTypeWarmup  SetType = "warmup"
	SetTypeWorking SetType = "working"
	SetTypeDrop    SetType = "drop"
	SetTypeBackoff SetType = "backoff"
	SetTypeAMRAP   SetType = "amrap"
)

// RepRangeMode selects how a prescription's rep target is expressed.
type RepRangeMode string

const (
	RepRangeFixed RepRangeMode = "fixed" // single target rep count
	RepRangeRange RepRangeMode = "range" // lower..upper window
	RepRangeAMRAP RepRangeMode = "amrap" // as many reps as possible
)

// RepRange is a prescription's rep policy.
type RepRange struct {
	Mode   RepRangeMode `json:"mode"`
	Lower  int          `json:"lower"`
	Upper  int          `json:"upper"`
	Target int          `json:"target"`
}

// Plan is an ordered collection of exercise prescriptions. A draft plan is a
// copy-on-write clone of an original: it shares prescription and set
// identities with the original so that a later diff can match entities by id.
type Plan struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	IsFavorite bool       `json:"is_favorite"`
	IsDraft    bool       `json:"is_draft"`
	OriginalID *uuid.UUID `json:"original_id,omitempty"` // set only on drafts
}

// Prescription is a planned exercise within a plan.
type Prescription struct {
	ID        uuid.UUID `json:"id"`
	PlanID    uuid.UUID `json:"plan_id"`
	Index     int       `json:"index"`
	CatalogID string    `json:"catalog_id"` // exercise catalog reference
	Name      string    `json:"name"`
	Notes     string    `json:"notes"`
	RepRange  RepRange  `json:"rep_range"`
}

// PrescribedSet is a single planned set within a prescription.
type PrescribedSet struct {
	ID             uuid.UUID `json:"id"`
	PrescriptionID uuid.UUID `json:"prescription_id"`
	Index          int       `json:"index"`
	Type           SetType   `json:"type"`
	TargetWeight   float64   `json:"target_weight"`
	TargetReps     int       `json:"target_reps"`
	TargetRestSec  int       `json:"target_rest_sec"`
}
