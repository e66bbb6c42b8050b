package models

import (
	"time"

	"github.com/google/uuid"
)

// Origin identifies who proposed a suggestion.
type Origin string

const (
	OriginRules Origin = "rules"
	OriginAI    Origin = "ai"
	OriginUser  Origin = "user"
)

// Decision is the review state of a suggestion. It is independent of Outcome:
// a user edit can invalidate an already-accepted suggestion's outcome without
// touching its acceptance record.
type Decision string

const (
	DecisionPending      Decision = "pending"
	DecisionAccepted     Decision = "accepted"
	DecisionRejected     Decision = "rejected"
	DecisionDeferred     Decision = "deferred"
	DecisionUserOverride Decision = "user_override"
)

// Open reports whether the suggestion still awaits a user decision.
func (d Decision) Open() bool {
	return d == DecisionPending || d == DecisionDeferred
}

// Outcome is the retrospective evaluation state of a suggestion.
type Outcome string

const (
	OutcomePending       Outcome = "pending"
	OutcomeGood          Outcome = "good"
	OutcomeTooAggressive Outcome = "too_aggressive"
	OutcomeTooEasy       Outcome = "too_easy"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeUserModified  Outcome = "user_modified"
)

// ChangeKind is the fixed taxonomy of prescription edits a suggestion can carry.
type ChangeKind string

const (
	ChangeIncreaseWeight ChangeKind = "increase_weight"
	ChangeDecreaseWeight ChangeKind = "decrease_weight"
	ChangeIncreaseReps   ChangeKind = "increase_reps"
	ChangeDecreaseReps   ChangeKind = "decrease_reps"
	ChangeIncreaseRest   ChangeKind = "increase_rest"
	ChangeDecreaseRest   ChangeKind = "decrease_rest"
	ChangeSetType        ChangeKind = "change_set_type"
	ChangeRemoveSet      ChangeKind = "remove_set"

	ChangeIncreaseRepRangeLower  ChangeKind = "increase_rep_range_lower"
	ChangeDecreaseRepRangeLower  ChangeKind = "decrease_rep_range_lower"
	ChangeIncreaseRepRangeUpper  ChangeKind = "increase_rep_range_upper"
	ChangeDecreaseRepRangeUpper  ChangeKind = "decrease_rep_range_upper"
	ChangeIncreaseRepRangeTarget ChangeKind = "increase_rep_range_target"
	ChangeDecreaseRepRangeTarget ChangeKind = "decrease_rep_range_target"
	ChangeRepRangeMode           ChangeKind = "change_rep_range_mode"
	ChangeRestPolicy             ChangeKind = "change_rest_policy"
)

// Family returns the change kinds that edit the same underlying field, so a
// user edit to that field overrides suggestions of either direction.
func (k ChangeKind) Family() []ChangeKind {
	switch k {
	case ChangeIncreaseWeight, ChangeDecreaseWeight:
		return []ChangeKind{ChangeIncreaseWeight, ChangeDecreaseWeight}
	case ChangeIncreaseReps, ChangeDecreaseReps:
		return []ChangeKind{ChangeIncreaseReps, ChangeDecreaseReps}
	case ChangeIncreaseRest, ChangeDecreaseRest:
		return []ChangeKind{ChangeIncreaseRest, ChangeDecreaseRest}
	case ChangeIncreaseRepRangeLower, ChangeDecreaseRepRangeLower:
		return []ChangeKind{ChangeIncreaseRepRangeLower, ChangeDecreaseRepRangeLower}
	case ChangeIncreaseRepRangeUpper, ChangeDecreaseRepRangeUpper:
		return []ChangeKind{ChangeIncreaseRepRangeUpper, ChangeDecreaseRepRangeUpper}
	case ChangeIncreaseRepRangeTarget, ChangeDecreaseRepRangeTarget:
		return []ChangeKind{ChangeIncreaseRepRangeTarget, ChangeDecreaseRepRangeTarget}
	default:
		return []ChangeKind{k}
	}
}

// SetLevel reports whether the kind targets an individual set rather than the
// exercise-level rep policy.
func (k ChangeKind) SetLevel() bool {
	switch k {
	case ChangeIncreaseWeight, ChangeDecreaseWeight,
		ChangeIncreaseReps, ChangeDecreaseReps,
		ChangeIncreaseRest, ChangeDecreaseRest,
		ChangeSetType, ChangeRemoveSet:
		return true
	}
	return false
}

// Suggestion is a proposed or applied edit to a prescription or one of its
// sets. A row targets either an exercise (TargetSetID nil) or a set
// (TargetSetID non-nil), never ambiguously both. Rows are audit records: when
// their target is deleted the target reference is nullified but the row
// survives.
type Suggestion struct {
	ID                   uuid.UUID  `json:"id"`
	Origin               Origin     `json:"origin"`
	CatalogID            string     `json:"catalog_id"`
	SourceSessionID      *uuid.UUID `json:"source_session_id,omitempty"`
	EvidencePerformance  *uuid.UUID `json:"evidence_performance_id,omitempty"`
	EvidenceSetIndex     *int       `json:"evidence_set_index,omitempty"`
	TargetPrescriptionID *uuid.UUID `json:"target_prescription_id,omitempty"`
	TargetSetID          *uuid.UUID `json:"target_set_id,omitempty"`
	Kind                 ChangeKind `json:"kind"`
	PreviousValue        float64    `json:"previous_value"`
	NewValue             float64    `json:"new_value"`
	PreviousText         string     `json:"previous_text,omitempty"` // for mode/type changes
	NewText              string     `json:"new_text,omitempty"`
	Reasoning            string     `json:"reasoning,omitempty"`
	Decision             Decision   `json:"decision"`
	Outcome              Outcome    `json:"outcome"`
	EvaluatedSessionID   *uuid.UUID `json:"evaluated_session_id,omitempty"`
	EvaluatedAt          *time.Time `json:"evaluated_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
