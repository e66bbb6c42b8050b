// Package importer loads workout session exports (JSON files dropped into a
// sync directory) into the database and recomputes the statistics cache for
// every exercise the import touched. Already-processed files are skipped via
// a local SQLite state database.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/stats"
	"github.com/claude/liftplan/internal/storage"
	"github.com/google/uuid"
)

// performanceNS namespaces the deterministic performance ids derived from
// (session, exercise), so re-importing the same export never duplicates rows.
var performanceNS = uuid.MustParse("8f2f7a54-1c1a-4a43-9e07-6b1f7d1a0c55")

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsRead           int
	PerformancesInserted   int
	PerformancesDuplicated int
	HistoriesRecomputed    int
}

// exportFile is the on-disk session export format.
type exportFile struct {
	ExportedAt time.Time       `json:"exported_at"`
	Sessions   []exportSession `json:"sessions"`
}

type exportSession struct {
	SessionID uuid.UUID        `json:"session_id"`
	Date      time.Time        `json:"date"`
	Exercises []exportExercise `json:"exercises"`
}

type exportExercise struct {
	CatalogID string      `json:"catalog_id"`
	Name      string      `json:"name"`
	Sets      []exportSet `json:"sets"`
}

type exportSet struct {
	Type      models.SetType `json:"type"`
	Weight    float64        `json:"weight"`
	Reps      int            `json:"reps"`
	RestSec   int            `json:"rest_sec"`
	Completed bool           `json:"completed"`
}

// Importer reads session export files from a directory and inserts
// performances into the DB.
type Importer struct {
	db     *storage.DB
	state  *StateDB
	engine *stats.Engine
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil, in which case every file is
// processed.
func New(db *storage.DB, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, state: state, engine: stats.NewEngine(), log: log, dryRun: dryRun}
}

// Import processes all .json exports under dir, then recomputes and stores
// the exercise statistics for every catalog id that received new rows.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return &imp.stats, err
	}

	touched := map[string]bool{}
	for _, f := range files {
		if err := imp.importFile(ctx, dir, f, touched); err != nil {
			return &imp.stats, err
		}
	}

	if !imp.dryRun {
		if err := imp.recomputeHistories(ctx, touched); err != nil {
			return &imp.stats, err
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, dir, path string, touched map[string]bool) error {
	relPath, err := filepath.Rel(dir, path)
	if err != nil {
		relPath = path
	}

	info, err := os.Stat(path)
	if err != nil {
		imp.log.Warn("stat failed", "file", relPath, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	hash, err := HashFile(path)
	if err != nil {
		imp.log.Warn("hash failed", "file", relPath, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	if imp.state != nil {
		done, err := imp.state.IsImported(relPath, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", relPath, err)
		}
		if done {
			imp.stats.FilesSkipped++
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", "file", relPath, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	var export exportFile
	if err := json.Unmarshal(data, &export); err != nil {
		imp.log.Warn("parse failed", "file", relPath, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	for _, session := range export.Sessions {
		imp.stats.SessionsRead++
		for _, perf := range sessionPerformances(session) {
			touched[perf.CatalogID] = true
			if imp.dryRun {
				imp.stats.PerformancesInserted++
				continue
			}
			inserted, err := imp.db.InsertPerformance(ctx, perf)
			if err != nil {
				return fmt.Errorf("inserting performance %s: %w", perf.ID, err)
			}
			if inserted {
				imp.stats.PerformancesInserted++
			} else {
				imp.stats.PerformancesDuplicated++
			}
		}
	}

	imp.stats.FilesProcessed++
	imp.log.Info("imported file", "file", relPath, "sessions", len(export.Sessions))

	if imp.state != nil && !imp.dryRun {
		if err := imp.state.MarkImported(relPath, info.Size(), hash); err != nil {
			return fmt.Errorf("marking %s imported: %w", relPath, err)
		}
	}
	return nil
}

// sessionPerformances converts one exported session into performance rows,
// one per exercise, with ids derived from (session, catalog id).
func sessionPerformances(session exportSession) []models.Performance {
	out := make([]models.Performance, 0, len(session.Exercises))
	for _, ex := range session.Exercises {
		if ex.CatalogID == "" || len(ex.Sets) == 0 {
			continue
		}
		perf := models.Performance{
			ID:        uuid.NewSHA1(performanceNS, append(session.SessionID[:], ex.CatalogID...)),
			SessionID: session.SessionID,
			CatalogID: ex.CatalogID,
			Name:      ex.Name,
			Date:      session.Date,
		}
		for i, s := range ex.Sets {
			perf.Sets = append(perf.Sets, models.PerformedSet{
				Index:     i,
				Type:      s.Type,
				Weight:    s.Weight,
				Reps:      s.Reps,
				RestSec:   s.RestSec,
				Completed: s.Completed,
			})
		}
		out = append(out, perf)
	}
	return out
}

// recomputeHistories rebuilds the statistics row for every touched exercise
// from the full performance history now in the database.
func (imp *Importer) recomputeHistories(ctx context.Context, touched map[string]bool) error {
	for catalogID := range touched {
		perfs, err := imp.db.QueryPerformances(ctx, catalogID)
		if err != nil {
			return fmt.Errorf("querying performances for %s: %w", catalogID, err)
		}
		history := imp.engine.Recalculate(catalogID, perfs)
		if err := imp.db.UpsertHistory(ctx, history); err != nil {
			return fmt.Errorf("storing history for %s: %w", catalogID, err)
		}
		imp.stats.HistoriesRecomputed++
	}
	return nil
}
