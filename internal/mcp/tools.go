package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List all training plans with their titles, notes, and favorite status."),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Get one training plan with its full exercise prescriptions and prescribed sets."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
)

var toolGetPendingSuggestions = mcp.NewTool("get_pending_suggestions",
	mcp.WithDescription("Get progression suggestions awaiting review for a plan. Flat by default; grouped returns the per-exercise review hierarchy with set-level and exercise-level groups."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
	mcp.WithBoolean("grouped", mcp.Description("Return the grouped review hierarchy instead of a flat list. Defaults to false.")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Get cached statistics for one exercise: personal records, recent averages, typical set/rep patterns, strength trend, and chart points."),
	mcp.WithString("catalog_id", mcp.Required(), mcp.Description("Exercise catalog id (e.g. 'barbell_bench_press')")),
)

var toolGetPerformances = mcp.NewTool("get_performances",
	mcp.WithDescription("Get logged performances for one exercise, most recent first. Each performance carries its performed sets with weight, reps, rest, and completion."),
	mcp.WithString("catalog_id", mcp.Required(), mcp.Description("Exercise catalog id")),
)

// --- Tool handlers ---

func (h *handlers) listPlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.Plans(ctx)
	if err != nil {
		h.log.Error("mcp list_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plans)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid plan_id: " + err.Error()), nil
	}

	detail, err := h.ds.PlanDetail(ctx, id)
	if err != nil {
		h.log.Error("mcp get_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if detail == nil {
		return mcp.NewToolResultError("plan not found"), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPendingSuggestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid plan_id: " + err.Error()), nil
	}

	var payload any
	if req.GetBool("grouped", false) {
		payload, err = h.ds.GroupedSuggestions(ctx, id)
	} else {
		payload, err = h.ds.PendingSuggestions(ctx, id)
	}
	if err != nil {
		h.log.Error("mcp get_pending_suggestions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalogID, err := req.RequireString("catalog_id")
	if err != nil {
		return mcp.NewToolResultError("catalog_id parameter is required"), nil
	}

	history, err := h.ds.ExerciseHistory(ctx, catalogID)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(history)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPerformances(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalogID, err := req.RequireString("catalog_id")
	if err != nil {
		return mcp.NewToolResultError("catalog_id parameter is required"), nil
	}

	perfs, err := h.ds.Performances(ctx, catalogID)
	if err != nil {
		h.log.Error("mcp get_performances", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(perfs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
