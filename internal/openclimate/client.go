// Package openclimate implements the client for the OpenClimate actor
// API, which serves emissions-reduction pledges per actor.
package openclimate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openclimate-tools/climateview/internal/cache"
	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/util"
	"github.com/openclimate-tools/climateview/internal/worker"
)

const defaultBaseURL = "https://openclimate.network"

// Client fetches pledge data with read-through caching
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	limiter    *worker.Limiter
	ttl        time.Duration
}

// NewClient creates a pledge API client. The cache and limiter are
// injected; pass cache.NopCache{} to disable memoization.
func NewClient(cfg *model.Config, c cache.Cache, limiter *worker.Limiter) *Client {
	baseURL := strings.TrimRight(cfg.API.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: util.NewHTTPClient(cfg.HTTP),
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		cache:      c,
		limiter:    limiter,
		ttl:        cfg.Cache.DiskTTL,
	}
}

// The API wraps pledges in {"data": {"targets": [...]}}. Numeric fields
// arrive as numbers or quoted strings depending on the upstream source,
// so they decode through flexible types.
type actorResponse struct {
	Data struct {
		Targets []apiTarget `json:"targets"`
	} `json:"data"`
}

type apiTarget struct {
	BaselineYear flexInt   `json:"baseline_year"`
	TargetValue  flexFloat `json:"target_value"`
	TargetType   string    `json:"target_type"`
	TargetYear   flexInt   `json:"target_year"`
}

// Pledges returns the pledges on record for an actor, in API order.
// An actor without pledges yields an empty slice, not an error.
func (c *Client) Pledges(ctx context.Context, actorID string) ([]model.Pledge, error) {
	key := cache.Key("pledges", c.baseURL, actorID)
	body, found := c.cache.Get(key)
	if !found {
		var err error
		body, err = c.fetch(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(key, body, c.ttl); err != nil {
			return nil, fmt.Errorf("cache pledges: %w", err)
		}
	}

	var parsed actorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode actor %s: %w", actorID, err)
	}

	pledges := make([]model.Pledge, 0, len(parsed.Data.Targets))
	for _, t := range parsed.Data.Targets {
		pledges = append(pledges, model.Pledge{
			BaselineYear: int(t.BaselineYear),
			TargetValue:  float64(t.TargetValue),
			TargetType:   t.TargetType,
			TargetYear:   int(t.TargetYear),
		})
	}
	return pledges, nil
}

func (c *Client) fetch(ctx context.Context, actorID string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v1/actor/%s", c.baseURL, actorID)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch actor %s: %w", actorID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("actor %s: unexpected status: %d %s", actorID, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// flexInt decodes from a JSON number, a quoted integer, or a quoted
// float ("2005.0").
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse %q as year: %w", s, err)
	}
	*f = flexInt(v)
	return nil
}

// flexFloat decodes from a JSON number or a quoted number
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse %q as number: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}
