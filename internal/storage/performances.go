package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// InsertPerformance inserts one performance row. The executed sets ride in a
// jsonb column: they are only ever read back whole, by the stats engine.
// Returns true if inserted, false if the id already exists.
func (db *DB) InsertPerformance(ctx context.Context, p models.Performance) (bool, error) {
	sets, err := json.Marshal(p.Sets)
	if err != nil {
		return false, fmt.Errorf("marshaling performed sets: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO performances (id, session_id, catalog_id, name, performed_at, sets)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT DO NOTHING`,
		p.ID, p.SessionID, p.CatalogID, p.Name, p.Date, sets)
	if err != nil {
		return false, fmt.Errorf("inserting performance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeletePerformance removes one performance row.
func (db *DB) DeletePerformance(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM performances WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting performance: %w", err)
	}
	return nil
}

// QueryPerformances retrieves all performances for one catalog id, most
// recent first.
func (db *DB) QueryPerformances(ctx context.Context, catalogID string) ([]models.Performance, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, catalog_id, name, performed_at, sets
		 FROM performances
		 WHERE catalog_id = $1
		 ORDER BY performed_at DESC`,
		catalogID)
	if err != nil {
		return nil, fmt.Errorf("querying performances: %w", err)
	}
	defer rows.Close()
	return scanPerformances(rows)
}

// QueryAllPerformances retrieves every performance row, most recent first.
func (db *DB) QueryAllPerformances(ctx context.Context) ([]models.Performance, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, catalog_id, name, performed_at, sets
		 FROM performances
		 ORDER BY performed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying performances: %w", err)
	}
	defer rows.Close()
	return scanPerformances(rows)
}

func scanPerformances(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Performance, error) {
	var result []models.Performance
	for rows.Next() {
		var p models.Performance
		var sets []byte
		if err := rows.Scan(&p.ID, &p.SessionID, &p.CatalogID, &p.Name, &p.Date, &sets); err != nil {
			return nil, fmt.Errorf("scanning performance: %w", err)
		}
		if len(sets) > 0 {
			if err := json.Unmarshal(sets, &p.Sets); err != nil {
				return nil, fmt.Errorf("unmarshaling performed sets: %w", err)
			}
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
