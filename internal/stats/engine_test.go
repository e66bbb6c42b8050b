package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return &Engine{now: func() time.Time { return testNow }}
}

// session builds a performance of completed working sets, one (weight, reps)
// pair per set, dated the given number of days before the fixed test clock.
func session(daysAgo int, sets ...[2]float64) models.Performance {
	p := models.Performance{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		CatalogID: "barbell-squat",
		Name:      "Squat",
		Date:      testNow.AddDate(0, 0, -daysAgo),
	}
	for i, ws := range sets {
		p.Sets = append(p.Sets, models.PerformedSet{
			Index:     i,
			Type:      models.SetTypeWorking,
			Weight:    ws[0],
			Reps:      int(ws[1]),
			RestSec:   120,
			Completed: true,
		})
	}
	return p
}

// TestRecalculateEmptyHistoryResets: an empty input yields the all-zero
// insufficient state regardless of whatever was cached before; that is the
// deletion/no-data path.
func TestRecalculateEmptyHistoryResets(t *testing.T) {
	h := testEngine().Recalculate("barbell-squat", nil)

	if h.TotalSessions != 0 || h.Last30DaySessions != 0 {
		t.Errorf("session counts = %d/%d, want 0/0", h.TotalSessions, h.Last30DaySessions)
	}
	if h.BestOneRepMax != 0 || h.BestWeight != 0 || h.BestVolume != 0 {
		t.Error("PR fields not zeroed")
	}
	if h.Trend != models.TrendInsufficient {
		t.Errorf("trend = %s, want insufficient", h.Trend)
	}
	if len(h.ChartPoints) != 0 {
		t.Errorf("chart points = %d, want none", len(h.ChartPoints))
	}
	if h.BestRepsAtWeight != nil {
		t.Error("best-reps map not cleared")
	}
}

// TestRecalculateIsIdempotent: two runs over the same history are
// byte-identical; the engine never folds in its own prior output.
func TestRecalculateIsIdempotent(t *testing.T) {
	history := []models.Performance{
		session(2, [2]float64{225, 5}, [2]float64{225, 5}),
		session(9, [2]float64{220, 5}, [2]float64{220, 4}),
		session(16, [2]float64{215, 6}),
	}
	e := testEngine()
	a := e.Recalculate("barbell-squat", history)
	b := e.Recalculate("barbell-squat", history)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("recalculate not idempotent:\nfirst  %+v\nsecond %+v", a, b)
	}
}

// TestRecalculateIgnoresInputOrder: the store hands sessions most-recent
// first, but the result must not depend on enumeration order.
func TestRecalculateIgnoresInputOrder(t *testing.T) {
	s1 := session(2, [2]float64{225, 5})
	s2 := session(9, [2]float64{220, 5})
	s3 := session(16, [2]float64{215, 6})

	e := testEngine()
	a := e.Recalculate("barbell-squat", []models.Performance{s1, s2, s3})
	b := e.Recalculate("barbell-squat", []models.Performance{s3, s1, s2})
	if !reflect.DeepEqual(a, b) {
		t.Error("result depends on input order")
	}
}

// TestPersonalRecords covers the Epley 1RM, best weight, best session
// volume, and the per-weight best-reps map.
func TestPersonalRecords(t *testing.T) {
	history := []models.Performance{
		session(1, [2]float64{200, 8}),                     // volume 1600
		session(8, [2]float64{225, 3}, [2]float64{185, 10}), // volume 2525
	}
	h := testEngine().Recalculate("barbell-squat", history)

	// Epley: 200*(1+8/30) ≈ 253.33 beats 225*(1+3/30) = 247.5.
	want1RM := 200 * (1 + 8.0/30)
	if h.BestOneRepMax != want1RM {
		t.Errorf("best 1RM = %v, want %v", h.BestOneRepMax, want1RM)
	}
	if !h.BestOneRepMaxDate.Equal(testNow.AddDate(0, 0, -1)) {
		t.Errorf("best 1RM date = %v, want the 200x8 session", h.BestOneRepMaxDate)
	}
	if h.BestWeight != 225 {
		t.Errorf("best weight = %v, want 225", h.BestWeight)
	}
	if h.BestVolume != 2525 {
		t.Errorf("best volume = %v, want 2525", h.BestVolume)
	}
	if got := h.BestRepsAtWeight[185]; got != 10 {
		t.Errorf("best reps at 185 = %d, want 10", got)
	}
	if got := h.BestRepsAtWeight[200]; got != 8 {
		t.Errorf("best reps at 200 = %d, want 8", got)
	}
}

// TestLast30DayWindow counts only sessions on or after now-30d.
func TestLast30DayWindow(t *testing.T) {
	history := []models.Performance{
		session(5, [2]float64{100, 10}),
		session(29, [2]float64{100, 10}),
		session(31, [2]float64{100, 10}),
		session(90, [2]float64{100, 10}),
	}
	h := testEngine().Recalculate("barbell-squat", history)
	if h.TotalSessions != 4 {
		t.Errorf("total = %d, want 4", h.TotalSessions)
	}
	if h.Last30DaySessions != 2 {
		t.Errorf("last 30d = %d, want 2", h.Last30DaySessions)
	}
}

// TestTrendClassification walks the session-count and threshold boundaries:
// fewer than 3 sessions is insufficient, 3-5 is stable, and beyond that the
// recent-3 vs prior-3 mean top working weight decides at ±2.5%.
func TestTrendClassification(t *testing.T) {
	mk := func(weights ...float64) []models.Performance {
		var out []models.Performance
		for i, w := range weights {
			out = append(out, session(i*7, [2]float64{w, 5}))
		}
		return out
	}

	cases := []struct {
		name    string
		history []models.Performance
		want    models.Trend
	}{
		{"two sessions insufficient", mk(200, 200), models.TrendInsufficient},
		{"four sessions stable", mk(200, 200, 200, 200), models.TrendStable},
		// Recent mean 205 vs prior mean 195: +5.13% > +2.5%.
		{"improving", mk(205, 205, 205, 195, 195, 195), models.TrendImproving},
		// Recent mean 195 vs prior 205: -4.88% < -2.5%.
		{"declining", mk(195, 195, 195, 205, 205, 205), models.TrendDeclining},
		// +2% sits inside the stable band.
		{"within threshold stable", mk(204, 204, 204, 200, 200, 200), models.TrendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := testEngine().Recalculate("barbell-squat", tc.history)
			if h.Trend != tc.want {
				t.Errorf("trend = %s, want %s", h.Trend, tc.want)
			}
		})
	}
}

// TestRecentAverages: means over the 3 most recent sessions, with the set
// count integer-truncated.
func TestRecentAverages(t *testing.T) {
	history := []models.Performance{
		session(1, [2]float64{200, 5}, [2]float64{200, 5}),                     // top 200, vol 2000, 2 sets
		session(8, [2]float64{190, 5}),                                          // top 190, vol 950, 1 set
		session(15, [2]float64{180, 5}, [2]float64{180, 5}, [2]float64{180, 5}), // top 180, vol 2700, 3 sets
		session(22, [2]float64{500, 5}),                                         // outside the window
	}
	h := testEngine().Recalculate("barbell-squat", history)

	if want := (200.0 + 190 + 180) / 3; h.RecentAvgTopWeight != want {
		t.Errorf("recent avg top weight = %v, want %v", h.RecentAvgTopWeight, want)
	}
	if want := (2000.0 + 950 + 2700) / 3; h.RecentAvgVolume != want {
		t.Errorf("recent avg volume = %v, want %v", h.RecentAvgVolume, want)
	}
	if h.RecentAvgSetCount != 2 { // (2+1+3)/3 truncated
		t.Errorf("recent avg set count = %d, want 2", h.RecentAvgSetCount)
	}
	if h.RecentAvgRestSec != 120 {
		t.Errorf("recent avg rest = %v, want 120", h.RecentAvgRestSec)
	}
}

// TestTypicalPatterns: all-time medians and sorted-index percentiles over
// individual working-set rep counts.
func TestTypicalPatterns(t *testing.T) {
	history := []models.Performance{
		session(1, [2]float64{100, 12}, [2]float64{100, 10}),
		session(8, [2]float64{100, 8}, [2]float64{100, 8}, [2]float64{100, 6}),
		session(15, [2]float64{100, 10}, [2]float64{100, 9}),
	}
	h := testEngine().Recalculate("barbell-squat", history)

	if h.TypicalSetCount != 2 { // set counts {2,3,2} -> median 2
		t.Errorf("typical set count = %d, want 2", h.TypicalSetCount)
	}
	// Rep samples sorted: 6 8 8 9 10 10 12 (n=7). 25th -> idx 1, 75th -> idx 4.
	if h.TypicalRepLower != 8 {
		t.Errorf("typical rep lower = %d, want 8", h.TypicalRepLower)
	}
	if h.TypicalRepUpper != 10 {
		t.Errorf("typical rep upper = %d, want 10", h.TypicalRepUpper)
	}
	if h.TypicalRestSec != 120 {
		t.Errorf("typical rest = %d, want 120", h.TypicalRestSec)
	}
}

// TestChartPointsCapAtTenMostRecent: one point per session, oldest first,
// capped at the 10 most recent sessions.
func TestChartPointsCapAtTenMostRecent(t *testing.T) {
	var history []models.Performance
	for i := 0; i < 14; i++ {
		history = append(history, session(i*7, [2]float64{100 + float64(i), 5}))
	}
	h := testEngine().Recalculate("barbell-squat", history)

	if len(h.ChartPoints) != 10 {
		t.Fatalf("chart points = %d, want 10", len(h.ChartPoints))
	}
	// Oldest of the kept window first, most recent session last.
	if h.ChartPoints[0].TopWeight != 109 {
		t.Errorf("first point weight = %v, want 109", h.ChartPoints[0].TopWeight)
	}
	last := h.ChartPoints[9]
	if last.TopWeight != 100 || !last.Date.Equal(testNow) {
		t.Errorf("last point = %v @ %v, want 100 @ %v", last.TopWeight, last.Date, testNow)
	}
	if last.Volume != 500 {
		t.Errorf("last point volume = %v, want 500", last.Volume)
	}
}

// TestWarmupAndIncompleteSetsExcluded: warmup sets never enter working-set
// statistics, and uncompleted sets contribute nothing at all.
func TestWarmupAndIncompleteSetsExcluded(t *testing.T) {
	p := session(1, [2]float64{200, 5})
	p.Sets = append(p.Sets,
		models.PerformedSet{Index: 1, Type: models.SetTypeWarmup, Weight: 135, Reps: 10, Completed: true},
		models.PerformedSet{Index: 2, Type: models.SetTypeWorking, Weight: 300, Reps: 1, Completed: false},
	)
	h := testEngine().Recalculate("barbell-squat", []models.Performance{p})

	if h.RecentAvgTopWeight != 200 {
		t.Errorf("top working weight = %v, want 200 (incomplete 300 excluded)", h.RecentAvgTopWeight)
	}
	// Warmup volume still counts toward session volume (completed set), but
	// not toward working-set patterns.
	if want := 200.0*5 + 135*10; h.BestVolume != want {
		t.Errorf("volume = %v, want %v", h.BestVolume, want)
	}
	if h.TypicalSetCount != 1 {
		t.Errorf("typical set count = %d, want 1", h.TypicalSetCount)
	}
}
