package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) reviewQueue(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.ds.Plans(ctx)
	if err != nil {
		return nil, err
	}

	queue := make([]map[string]any, 0, len(plans))
	for _, p := range plans {
		sections, err := h.ds.GroupedSuggestions(ctx, p.ID)
		if err != nil {
			h.log.Warn("review_queue: grouping failed", "plan", p.ID, "error", err)
			continue
		}
		if len(sections) == 0 {
			continue
		}
		queue = append(queue, map[string]any{
			"plan_id":    p.ID,
			"plan_title": p.Title,
			"exercises":  sections,
		})
	}

	data, err := json.Marshal(queue)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) planCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.ds.Plans(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(plans)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
