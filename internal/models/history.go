package models

import "time"

// Trend classifies recent strength progression for one exercise.
type Trend string

const (
	TrendImproving    Trend = "improving"
	TrendStable       Trend = "stable"
	TrendDeclining    Trend = "declining"
	TrendInsufficient Trend = "insufficient"
)

// ChartPoint is one plotted session in an exercise's history chart.
type ChartPoint struct {
	Date      time.Time `json:"date"`
	TopWeight float64   `json:"top_weight"`
	Volume    float64   `json:"volume"`
}

// ExerciseHistory is the cached aggregate statistics for one exercise catalog
// id. It is entirely derived: a full recompute from the raw performance rows
// overwrites every field, so the cache can be dropped and rebuilt at any time.
type ExerciseHistory struct {
	CatalogID string `json:"catalog_id"`

	TotalSessions     int `json:"total_sessions"`
	Last30DaySessions int `json:"last_30_day_sessions"`

	// Personal records over the full history.
	BestOneRepMax     float64         `json:"best_one_rep_max"`
	BestOneRepMaxDate time.Time       `json:"best_one_rep_max_date"`
	BestWeight        float64         `json:"best_weight"`
	BestWeightDate    time.Time       `json:"best_weight_date"`
	BestVolume        float64         `json:"best_volume"`
	BestVolumeDate    time.Time       `json:"best_volume_date"`
	BestRepsAtWeight  map[float64]int `json:"best_reps_at_weight,omitempty"`

	// Rolling averages over the 3 most recent sessions.
	RecentAvgTopWeight float64 `json:"recent_avg_top_weight"`
	RecentAvgVolume    float64 `json:"recent_avg_volume"`
	RecentAvgSetCount  int     `json:"recent_avg_set_count"`
	RecentAvgRestSec   float64 `json:"recent_avg_rest_sec"`

	// Typical all-time patterns.
	TypicalSetCount int `json:"typical_set_count"`
	TypicalRepLower int `json:"typical_rep_lower"`
	TypicalRepUpper int `json:"typical_rep_upper"`
	TypicalRestSec  int `json:"typical_rest_sec"`

	Trend Trend `json:"trend"`

	// Up to the 10 most recent sessions, oldest first.
	ChartPoints []ChartPoint `json:"chart_points,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
