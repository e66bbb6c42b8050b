package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftplan/internal/config"
	"github.com/claude/liftplan/internal/importer"
	"github.com/claude/liftplan/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to session export directory (required)")
	statePath := flag.String("state", "", "directory for the import state db (defaults to the export directory)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftplan-import -config config.yaml -path /path/to/exports [-state dir] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Open the local state db that remembers processed files
	stateDir := *statePath
	if stateDir == "" {
		stateDir = *exportPath
	}
	state, err := importer.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Run import
	imp := importer.New(db, state, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_read", stats.SessionsRead,
		"performances_inserted", stats.PerformancesInserted,
		"performances_duplicated", stats.PerformancesDuplicated,
		"histories_recomputed", stats.HistoriesRecomputed,
	)
}
