package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
	"github.com/jackc/pgx/v5"
)

// Snapshot is the persisted shape of the plan-editing arena: every plan with
// its prescriptions and sets, every suggestion row, and the cached exercise
// statistics. Performances are not part of the snapshot; they are appended
// individually as sessions complete.
//
// SaveSnapshot is the single opaque "save" call the editing core assumes:
// everything is written in one transaction, all or nothing.
type Snapshot struct {
	Plans         []models.Plan
	Prescriptions []models.Prescription
	Sets          []models.PrescribedSet
	Suggestions   []models.Suggestion
	Histories     []models.ExerciseHistory
}

// SnapshotArena captures the current arena state. Draft plans never appear:
// drafts are in-memory only.
func SnapshotArena(arena *store.Store) *Snapshot {
	snap := &Snapshot{}
	for _, p := range arena.Plans() {
		if p.IsDraft {
			continue
		}
		snap.Plans = append(snap.Plans, *p)
		for _, presc := range arena.PrescriptionsFor(p.ID) {
			snap.Prescriptions = append(snap.Prescriptions, *presc)
			for _, set := range arena.SetsFor(presc.ID) {
				snap.Sets = append(snap.Sets, *set)
			}
		}
	}
	for _, sug := range arena.Suggestions() {
		snap.Suggestions = append(snap.Suggestions, *sug)
	}
	for _, h := range arena.Histories() {
		snap.Histories = append(snap.Histories, *h)
	}
	return snap
}

// SaveSnapshot replaces the persisted arena in one transaction.
func (db *DB) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"suggestions", "prescription_sets", "prescriptions", "plans", "exercise_history"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, p := range snap.Plans {
		if _, err := tx.Exec(ctx,
			`INSERT INTO plans (id, title, notes, is_favorite) VALUES ($1,$2,$3,$4)`,
			p.ID, p.Title, p.Notes, p.IsFavorite); err != nil {
			return fmt.Errorf("inserting plan: %w", err)
		}
	}
	for _, p := range snap.Prescriptions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO prescriptions (id, plan_id, idx, catalog_id, name, notes,
			 rep_mode, rep_lower, rep_upper, rep_target)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, p.PlanID, p.Index, p.CatalogID, p.Name, p.Notes,
			p.RepRange.Mode, p.RepRange.Lower, p.RepRange.Upper, p.RepRange.Target); err != nil {
			return fmt.Errorf("inserting prescription: %w", err)
		}
	}
	for _, s := range snap.Sets {
		if _, err := tx.Exec(ctx,
			`INSERT INTO prescription_sets (id, prescription_id, idx, set_type,
			 target_weight, target_reps, target_rest_sec)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.PrescriptionID, s.Index, s.Type,
			s.TargetWeight, s.TargetReps, s.TargetRestSec); err != nil {
			return fmt.Errorf("inserting prescription set: %w", err)
		}
	}
	for _, g := range snap.Suggestions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO suggestions (id, origin, catalog_id, source_session_id,
			 evidence_performance_id, evidence_set_index, target_prescription_id,
			 target_set_id, kind, prev_value, new_value, prev_text, new_text,
			 reasoning, decision, outcome, evaluated_session_id, evaluated_at, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			g.ID, g.Origin, g.CatalogID, g.SourceSessionID,
			g.EvidencePerformance, g.EvidenceSetIndex, g.TargetPrescriptionID,
			g.TargetSetID, g.Kind, g.PreviousValue, g.NewValue, g.PreviousText, g.NewText,
			g.Reasoning, g.Decision, g.Outcome, g.EvaluatedSessionID, g.EvaluatedAt, g.CreatedAt); err != nil {
			return fmt.Errorf("inserting suggestion: %w", err)
		}
	}
	for _, h := range snap.Histories {
		if err := insertHistory(ctx, tx, h); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadAll reads the entire persisted state into a fresh arena, performances
// included. Called once at startup.
func (db *DB) LoadAll(ctx context.Context) (*store.Store, error) {
	arena := store.New()

	rows, err := db.Pool.Query(ctx, `SELECT id, title, notes, is_favorite FROM plans`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Title, &p.Notes, &p.IsFavorite); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		arena.PutPlan(&p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Pool.Query(ctx,
		`SELECT id, plan_id, idx, catalog_id, name, notes, rep_mode, rep_lower, rep_upper, rep_target
		 FROM prescriptions`)
	if err != nil {
		return nil, fmt.Errorf("querying prescriptions: %w", err)
	}
	for rows.Next() {
		var p models.Prescription
		if err := rows.Scan(&p.ID, &p.PlanID, &p.Index, &p.CatalogID, &p.Name, &p.Notes,
			&p.RepRange.Mode, &p.RepRange.Lower, &p.RepRange.Upper, &p.RepRange.Target); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning prescription: %w", err)
		}
		arena.PutPrescription(&p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Pool.Query(ctx,
		`SELECT id, prescription_id, idx, set_type, target_weight, target_reps, target_rest_sec
		 FROM prescription_sets`)
	if err != nil {
		return nil, fmt.Errorf("querying prescription sets: %w", err)
	}
	for rows.Next() {
		var s models.PrescribedSet
		if err := rows.Scan(&s.ID, &s.PrescriptionID, &s.Index, &s.Type,
			&s.TargetWeight, &s.TargetReps, &s.TargetRestSec); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning prescription set: %w", err)
		}
		arena.PutSet(&s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Pool.Query(ctx,
		`SELECT id, origin, catalog_id, source_session_id, evidence_performance_id,
		 evidence_set_index, target_prescription_id, target_set_id, kind, prev_value,
		 new_value, prev_text, new_text, reasoning, decision, outcome,
		 evaluated_session_id, evaluated_at, created_at
		 FROM suggestions`)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	for rows.Next() {
		var g models.Suggestion
		if err := rows.Scan(&g.ID, &g.Origin, &g.CatalogID, &g.SourceSessionID,
			&g.EvidencePerformance, &g.EvidenceSetIndex, &g.TargetPrescriptionID,
			&g.TargetSetID, &g.Kind, &g.PreviousValue, &g.NewValue, &g.PreviousText,
			&g.NewText, &g.Reasoning, &g.Decision, &g.Outcome,
			&g.EvaluatedSessionID, &g.EvaluatedAt, &g.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		arena.PutSuggestion(&g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	perfs, err := db.QueryAllPerformances(ctx)
	if err != nil {
		return nil, err
	}
	for i := range perfs {
		arena.PutPerformance(&perfs[i])
	}

	hists, err := db.queryHistories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range hists {
		arena.PutHistory(&hists[i])
	}

	return arena, nil
}

// insertHistory writes one cached exercise_history row. The scalar columns
// are explicit; the chart points and per-weight rep map ride in jsonb.
func insertHistory(ctx context.Context, tx pgx.Tx, h models.ExerciseHistory) error {
	points, err := json.Marshal(h.ChartPoints)
	if err != nil {
		return fmt.Errorf("marshaling chart points: %w", err)
	}
	repsAtWeight, err := json.Marshal(repsAtWeightJSON(h.BestRepsAtWeight))
	if err != nil {
		return fmt.Errorf("marshaling best reps map: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO exercise_history (catalog_id, total_sessions, last_30_day_sessions,
		 best_one_rep_max, best_one_rep_max_date, best_weight, best_weight_date,
		 best_volume, best_volume_date, best_reps_at_weight,
		 recent_avg_top_weight, recent_avg_volume, recent_avg_set_count, recent_avg_rest_sec,
		 typical_set_count, typical_rep_lower, typical_rep_upper, typical_rest_sec,
		 trend, chart_points, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		h.CatalogID, h.TotalSessions, h.Last30DaySessions,
		h.BestOneRepMax, h.BestOneRepMaxDate, h.BestWeight, h.BestWeightDate,
		h.BestVolume, h.BestVolumeDate, repsAtWeight,
		h.RecentAvgTopWeight, h.RecentAvgVolume, h.RecentAvgSetCount, h.RecentAvgRestSec,
		h.TypicalSetCount, h.TypicalRepLower, h.TypicalRepUpper, h.TypicalRestSec,
		h.Trend, points, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise history: %w", err)
	}
	return nil
}

// repsAtWeightJSON renders the float-keyed map with string keys, since JSON
// objects cannot carry numeric keys.
func repsAtWeightJSON(m map[float64]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for w, reps := range m {
		out[strconv.FormatFloat(w, 'f', -1, 64)] = reps
	}
	return out
}

func repsAtWeightFromJSON(m map[string]int) map[float64]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[float64]int, len(m))
	for k, reps := range m {
		if w, err := strconv.ParseFloat(k, 64); err == nil {
			out[w] = reps
		}
	}
	return out
}

// queryHistories reads all cached exercise statistics rows.
func (db *DB) queryHistories(ctx context.Context) ([]models.ExerciseHistory, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT catalog_id, total_sessions, last_30_day_sessions,
		 best_one_rep_max, best_one_rep_max_date, best_weight, best_weight_date,
		 best_volume, best_volume_date, best_reps_at_weight,
		 recent_avg_top_weight, recent_avg_volume, recent_avg_set_count, recent_avg_rest_sec,
		 typical_set_count, typical_rep_lower, typical_rep_upper, typical_rest_sec,
		 trend, chart_points, updated_at
		 FROM exercise_history`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseHistory
	for rows.Next() {
		var h models.ExerciseHistory
		var repsJSON, pointsJSON []byte
		if err := rows.Scan(&h.CatalogID, &h.TotalSessions, &h.Last30DaySessions,
			&h.BestOneRepMax, &h.BestOneRepMaxDate, &h.BestWeight, &h.BestWeightDate,
			&h.BestVolume, &h.BestVolumeDate, &repsJSON,
			&h.RecentAvgTopWeight, &h.RecentAvgVolume, &h.RecentAvgSetCount, &h.RecentAvgRestSec,
			&h.TypicalSetCount, &h.TypicalRepLower, &h.TypicalRepUpper, &h.TypicalRestSec,
			&h.Trend, &pointsJSON, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}
		if len(repsJSON) > 0 {
			var m map[string]int
			if err := json.Unmarshal(repsJSON, &m); err == nil {
				h.BestRepsAtWeight = repsAtWeightFromJSON(m)
			}
		}
		if len(pointsJSON) > 0 {
			if err := json.Unmarshal(pointsJSON, &h.ChartPoints); err != nil {
				return nil, fmt.Errorf("unmarshaling chart points: %w", err)
			}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpsertHistory writes one exercise_history row outside a snapshot, used by
// the importer after recomputing statistics.
func (db *DB) UpsertHistory(ctx context.Context, h models.ExerciseHistory) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning history tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM exercise_history WHERE catalog_id = $1`, h.CatalogID); err != nil {
		return fmt.Errorf("clearing exercise history: %w", err)
	}
	if err := insertHistory(ctx, tx, h); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
