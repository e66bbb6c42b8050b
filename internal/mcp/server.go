package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftPlan workout prescription server. Query training plans, pending progression suggestions, logged exercise performances, and per-exercise statistics."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetPendingSuggestions, Handler: h.getPendingSuggestions},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetPerformances, Handler: h.getPerformances},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resReviewQueue, Handler: h.reviewQueue},
		server.ServerResource{Resource: resPlanCatalog, Handler: h.planCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resReviewQueue = mcp.NewResource(
	"liftplan://review_queue",
	"Review Queue",
	mcp.WithResourceDescription("All pending progression suggestions across plans, grouped per exercise the way the review UI presents them"),
	mcp.WithMIMEType("application/json"),
)

var resPlanCatalog = mcp.NewResource(
	"liftplan://plans",
	"Plan Catalog",
	mcp.WithResourceDescription("All training plans with their titles and favorite status"),
	mcp.WithMIMEType("application/json"),
)
