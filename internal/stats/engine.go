// Package stats derives cached per-exercise aggregate statistics from raw
// performance history. The design is deliberately full-recompute: every call
// overwrites every field from the complete history, never merging with prior
// cached state, so the cache can always be dropped and rebuilt.
package stats

import (
	"sort"
	"time"

	"github.com/claude/liftplan/internal/models"
)

const (
	// Epley estimated one-rep-max: weight * (1 + reps/epleyDivisor).
	epleyDivisor = 30.0

	// Relative change in mean top working weight beyond which the recent
	// window counts as improving/declining.
	trendThreshold = 0.025

	recentWindow    = 3
	chartPointLimit = 10
)

// Engine recomputes exercise statistics. The clock is injectable so the
// 30-day session window is testable.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Recalculate derives a full ExerciseHistory from every completed performance
// of one exercise. An empty history yields the all-zero insufficient state:
// that is the deletion/no-data path, not an error. Output depends only on the
// input (and the clock), never on previously cached values.
func (e *Engine) Recalculate(catalogID string, history []models.Performance) models.ExerciseHistory {
	h := models.ExerciseHistory{
		CatalogID: catalogID,
		Trend:     models.TrendInsufficient,
		UpdatedAt: e.now(),
	}
	if len(history) == 0 {
		return h
	}

	// Most recent first, regardless of how the caller enumerated rows.
	sorted := make([]models.Performance, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	h.TotalSessions = len(sorted)
	cutoff := e.now().AddDate(0, 0, -30)
	for _, p := range sorted {
		if !p.Date.Before(cutoff) {
			h.Last30DaySessions++
		}
	}

	e.personalRecords(&h, sorted)
	e.recentAverages(&h, sorted)
	e.typicalPatterns(&h, sorted)
	h.Trend = e.trend(sorted)
	h.ChartPoints = chartPoints(sorted)
	return h
}

func (e *Engine) personalRecords(h *models.ExerciseHistory, sorted []models.Performance) {
	h.BestRepsAtWeight = make(map[float64]int)
	for _, p := range sorted {
		for _, s := range p.CompletedSets() {
			if s.Weight > 0 && s.Reps > 0 {
				orm := s.Weight * (1 + float64(s.Reps)/epleyDivisor)
				if orm > h.BestOneRepMax {
					h.BestOneRepMax = orm
					h.BestOneRepMaxDate = p.Date
				}
				if s.Reps > h.BestRepsAtWeight[s.Weight] {
					h.BestRepsAtWeight[s.Weight] = s.Reps
				}
			}
			if s.Weight > h.BestWeight {
				h.BestWeight = s.Weight
				h.BestWeightDate = p.Date
			}
		}
		if vol := p.TotalVolume(); vol > h.BestVolume {
			h.BestVolume = vol
			h.BestVolumeDate = p.Date
		}
	}
	if len(h.BestRepsAtWeight) == 0 {
		h.BestRepsAtWeight = nil
	}
}

func (e *Engine) recentAverages(h *models.ExerciseHistory, sorted []models.Performance) {
	recent := sorted
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	var topSum, volSum, restSum float64
	var setSum, restN int
	for _, p := range recent {
		topSum += p.TopWorkingWeight()
		volSum += p.TotalVolume()
		working := p.CompletedWorkingSets()
		setSum += len(working)
		for _, s := range working {
			restSum += float64(s.RestSec)
			restN++
		}
	}
	n := float64(len(recent))
	h.RecentAvgTopWeight = topSum / n
	h.RecentAvgVolume = volSum / n
	h.RecentAvgSetCount = setSum / len(recent) // integer-truncated
	if restN > 0 {
		h.RecentAvgRestSec = restSum / float64(restN)
	}
}

func (e *Engine) typicalPatterns(h *models.ExerciseHistory, sorted []models.Performance) {
	var setCounts, reps, rests []int
	for _, p := range sorted {
		working := p.CompletedWorkingSets()
		setCounts = append(setCounts, len(working))
		for _, s := range working {
			reps = append(reps, s.Reps)
			rests = append(rests, s.RestSec)
		}
	}
	h.TypicalSetCount = median(setCounts)
	h.TypicalRepLower = percentile(reps, 25)
	h.TypicalRepUpper = percentile(reps, 75)
	h.TypicalRestSec = median(rests)
}

// trend compares the mean top working weight of the 3 most recent sessions
// with the mean of sessions ranked 4-6 by recency.
func (e *Engine) trend(sorted []models.Performance) models.Trend {
	if len(sorted) < 3 {
		return models.TrendInsufficient
	}
	if len(sorted) <= 5 {
		return models.TrendStable
	}
	var recent, prior float64
	for i := 0; i < 3; i++ {
		recent += sorted[i].TopWorkingWeight()
		prior += sorted[i+3].TopWorkingWeight()
	}
	recent /= 3
	prior /= 3
	if prior == 0 {
		return models.TrendStable
	}
	change := (recent - prior) / prior
	switch {
	case change > trendThreshold:
		return models.TrendImproving
	case change < -trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// chartPoints returns one (date, top weight, volume) triple per session for
// the 10 most recent sessions, oldest first for plotting.
func chartPoints(sorted []models.Performance) []models.ChartPoint {
	n := len(sorted)
	if n > chartPointLimit {
		n = chartPointLimit
	}
	points := make([]models.ChartPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := sorted[i]
		points = append(points, models.ChartPoint{
			Date:      p.Date,
			TopWeight: p.TopWorkingWeight(),
			Volume:    p.TotalVolume(),
		})
	}
	return points
}

// median returns the lower median by sorted index, 0 for an empty slice.
func median(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	s := make([]int, len(vals))
	copy(s, vals)
	sort.Ints(s)
	return s[(len(s)-1)/2]
}

// percentile picks by sorted index without interpolation.
func percentile(vals []int, p int) int {
	if len(vals) == 0 {
		return 0
	}
	s := make([]int, len(vals))
	copy(s, vals)
	sort.Ints(s)
	idx := (len(s) - 1) * p / 100
	return s[idx]
}
