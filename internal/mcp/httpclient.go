package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/service"
	"github.com/claude/liftplan/internal/suggest"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftPlan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) Plans(ctx context.Context) ([]models.Plan, error) {
	body, err := c.get(ctx, "/api/v1/plans", nil)
	if err != nil {
		return nil, err
	}

	var plans []models.Plan
	if err := json.Unmarshal(body, &plans); err != nil {
		return nil, fmt.Errorf("httpclient: decode plans: %w", err)
	}
	return plans, nil
}

func (c *HTTPClient) PlanDetail(ctx context.Context, id uuid.UUID) (*service.PlanDetail, error) {
	body, err := c.get(ctx, "/api/v1/plans/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var detail service.PlanDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) PendingSuggestions(ctx context.Context, planID uuid.UUID) ([]models.Suggestion, error) {
	body, err := c.get(ctx, "/api/v1/plans/"+planID.String()+"/suggestions", nil)
	if err != nil {
		return nil, err
	}

	var sugs []models.Suggestion
	if err := json.Unmarshal(body, &sugs); err != nil {
		return nil, fmt.Errorf("httpclient: decode suggestions: %w", err)
	}
	return sugs, nil
}

func (c *HTTPClient) GroupedSuggestions(ctx context.Context, planID uuid.UUID) ([]suggest.ExerciseSection, error) {
	body, err := c.get(ctx, "/api/v1/plans/"+planID.String()+"/suggestions/grouped", nil)
	if err != nil {
		return nil, err
	}

	var sections []suggest.ExerciseSection
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, fmt.Errorf("httpclient: decode grouped suggestions: %w", err)
	}
	return sections, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, catalogID string) (models.ExerciseHistory, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+url.PathEscape(catalogID)+"/history", nil)
	if err != nil {
		return models.ExerciseHistory{}, err
	}

	var history models.ExerciseHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return models.ExerciseHistory{}, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return history, nil
}

func (c *HTTPClient) Performances(ctx context.Context, catalogID string) ([]models.Performance, error) {
	params := url.Values{}
	params.Set("catalog_id", catalogID)

	body, err := c.get(ctx, "/api/v1/performances", params)
	if err != nil {
		return nil, err
	}

	var perfs []models.Performance
	if err := json.Unmarshal(body, &perfs); err != nil {
		return nil, fmt.Errorf("httpclient: decode performances: %w", err)
	}
	return perfs, nil
}
