// liftplan-mcp serves LiftPlan data to MCP clients over stdio. In remote mode
// it proxies the REST API of a running server; in local mode it opens the
// database directly and serves a read-only view.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftplan/internal/config"
	"github.com/claude/liftplan/internal/mcp"
	"github.com/claude/liftplan/internal/service"
	"github.com/claude/liftplan/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remoteURL := flag.String("url", "", "base URL of a running LiftPlan server (remote mode)")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ds, cleanup, err := buildDataSource(*remoteURL, *configPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "liftplan-mcp: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "liftplan-mcp: %v\n", err)
		os.Exit(1)
	}
}

func buildDataSource(remoteURL, configPath string, log *slog.Logger) (mcp.DataSource, func(), error) {
	if remoteURL != "" {
		return mcp.NewHTTPClient(remoteURL), func() {}, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting database: %w", err)
	}

	arena, err := db.LoadAll(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("loading state: %w", err)
	}

	// Read-only: no saver, no write-through.
	svc := service.New(arena, nil, nil, log)
	return mcp.NewLocalSource(svc), db.Close, nil
}
