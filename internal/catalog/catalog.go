// Package catalog implements the client for the intake-style remote
// catalog: a master YAML file naming datasets and the CSV files behind
// them (emissions inventories and actor name tables).
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openclimate-tools/climateview/internal/cache"
	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/util"
	"github.com/openclimate-tools/climateview/internal/worker"
)

// Catalog fetches and parses remote datasets with read-through caching
type Catalog struct {
	masterURL  string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	limiter    *worker.Limiter
	ttl        time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	sources map[string]source
}

type master struct {
	Sources map[string]source `yaml:"sources"`
}

type source struct {
	Description string `yaml:"description"`
	Driver      string `yaml:"driver"`
	Args        struct {
		URLPath string `yaml:"urlpath"`
	} `yaml:"args"`
}

// New creates a catalog client for the given master URL
func New(cfg *model.Config, c cache.Cache, limiter *worker.Limiter, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		masterURL:  cfg.Catalog.MasterURL,
		httpClient: util.NewHTTPClient(cfg.HTTP),
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		cache:      c,
		limiter:    limiter,
		ttl:        cfg.Cache.DiskTTL,
		logger:     logger,
	}
}

// Open fetches and parses the master catalog. Called implicitly by the
// Read methods; explicit calls are useful to surface catalog errors early.
func (c *Catalog) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sources != nil {
		return nil
	}

	body, err := c.fetch(ctx, c.masterURL)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	var m master
	if err := yaml.Unmarshal(body, &m); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(m.Sources) == 0 {
		return fmt.Errorf("catalog %s lists no sources", c.masterURL)
	}

	c.sources = m.Sources
	return nil
}

// DatasetURL resolves a dataset name to the URL behind it
func (c *Catalog) DatasetURL(ctx context.Context, name string) (string, error) {
	if err := c.Open(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	src, ok := c.sources[name]
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("dataset %q not in catalog", name)
	}
	return src.Args.URLPath, nil
}

// ReadEmissions fetches the named dataset and parses emissions rows.
// Rows that fail to parse are skipped, not fatal; total fetch failure is.
func (c *Catalog) ReadEmissions(ctx context.Context, name string) ([]model.EmissionsRecord, error) {
	body, err := c.readDataset(ctx, name)
	if err != nil {
		return nil, err
	}

	records, skipped, err := parseEmissionsCSV(body)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	if skipped > 0 {
		c.logger.Warn("skipped unparseable rows", "dataset", name, "rows", skipped)
	}
	return records, nil
}

// ReadActors fetches the named name table and returns id -> display name
func (c *Catalog) ReadActors(ctx context.Context, name string) (map[string]string, error) {
	body, err := c.readDataset(ctx, name)
	if err != nil {
		return nil, err
	}

	names, skipped, err := parseActorCSV(body)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	if skipped > 0 {
		c.logger.Warn("skipped unparseable rows", "dataset", name, "rows", skipped)
	}
	return names, nil
}

func (c *Catalog) readDataset(ctx context.Context, name string) ([]byte, error) {
	url, err := c.DatasetURL(ctx, name)
	if err != nil {
		return nil, err
	}
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", name, err)
	}
	return body, nil
}

// fetch retrieves a URL through the injected cache
func (c *Catalog) fetch(ctx context.Context, url string) ([]byte, error) {
	key := cache.Key("catalog", url)
	if body, found := c.cache.Get(key); found {
		return body, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if err := c.cache.Set(key, body, c.ttl); err != nil {
		return nil, fmt.Errorf("cache dataset: %w", err)
	}
	return body, nil
}
