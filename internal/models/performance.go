package models

import (
	"time"

	"github.com/google/uuid"
)

// Performance is the actual record of one exercise within a completed session.
type Performance struct {
	ID        uuid.UUID      `json:"id"`
	SessionID uuid.UUID      `json:"session_id"`
	CatalogID string         `json:"catalog_id"`
	Name      string         `json:"name"`
	Date      time.Time      `json:"date"`
	Sets      []PerformedSet `json:"sets"`
}

// PerformedSet is one executed set within a performance.
type PerformedSet struct {
	Index     int     `json:"index"`
	Type      SetType `json:"type"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	RestSec   int     `json:"rest_sec"`
	Completed bool    `json:"completed"`
}

// CompletedWorkingSets returns the completed working-type sets in index order.
func (p Performance) CompletedWorkingSets() []PerformedSet {
	var out []PerformedSet
	for _, s := range p.Sets {
		if s.Completed && s.Type == SetTypeWorking {
			out = append(out, s)
		}
	}
	return out
}

// CompletedSets returns all completed sets regardless of type.
func (p Performance) CompletedSets() []PerformedSet {
	var out []PerformedSet
	for _, s := range p.Sets {
		if s.Completed {
			out = append(out, s)
		}
	}
	return out
}

// TotalVolume is the sum of weight*reps over completed sets.
func (p Performance) TotalVolume() float64 {
	var v float64
	for _, s := range p.CompletedSets() {
		v += s.Weight * float64(s.Reps)
	}
	return v
}

// TopWorkingWeight is the heaviest completed working-set weight, 0 if none.
func (p Performance) TopWorkingWeight() float64 {
	var top float64
	for _, s := range p.CompletedWorkingSets() {
		if s.Weight > top {
			top = s.Weight
		}
	}
	return top
}
