// Package dataset exposes the data-access facade the computations and
// the dashboard run against: pledges from the OpenClimate API, emissions
// and actor names from the catalog, all memoized through the injected
// cache.
package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openclimate-tools/climateview/internal/cache"
	"github.com/openclimate-tools/climateview/internal/catalog"
	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/openclimate"
	"github.com/openclimate-tools/climateview/internal/worker"
)

// Service composes the catalog and pledge API clients
type Service struct {
	cfg     *model.Config
	catalog *catalog.Catalog
	api     *openclimate.Client
	logger  *slog.Logger
}

// NewService wires the clients with a shared cache and rate limiter
func NewService(cfg *model.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}
	limiter := worker.NewLimiter(cfg.HTTP.RatePerSecond, cfg.HTTP.RateBurst)

	return &Service{
		cfg:     cfg,
		catalog: catalog.New(cfg, store, limiter, logger),
		api:     openclimate.NewClient(cfg, store, limiter),
		logger:  logger,
	}, nil
}

// Pledges returns the pledges on record for an actor, API order preserved
func (s *Service) Pledges(ctx context.Context, actorID string) ([]model.Pledge, error) {
	return s.api.Pledges(ctx, actorID)
}

// Emissions returns the rows of a named inventory dataset
func (s *Service) Emissions(ctx context.Context, dataset string) ([]model.EmissionsRecord, error) {
	return s.catalog.ReadEmissions(ctx, dataset)
}

// NationalEmissions returns the configured national inventory
func (s *Service) NationalEmissions(ctx context.Context) ([]model.EmissionsRecord, error) {
	return s.catalog.ReadEmissions(ctx, s.cfg.Catalog.National)
}

// ActorNames returns the country name table (id -> display name)
func (s *Service) ActorNames(ctx context.Context) (map[string]string, error) {
	return s.catalog.ReadActors(ctx, s.cfg.Catalog.Countries)
}

// SubnationalSource maps a national actor to the dataset holding its
// subnational inventory; ok is false for actors with no configured source.
func (s *Service) SubnationalSource(actorID string) (string, bool) {
	name, ok := s.cfg.Catalog.Sources[actorID]
	return name, ok
}

// prefetchJob loads one dataset through the cache
type prefetchJob struct {
	name string
	run  func(ctx context.Context) error
}

type prefetchResult struct {
	name string
	err  error
}

func (r *prefetchResult) GetError() error { return r.err }

func (j *prefetchJob) Execute(ctx context.Context) worker.Result {
	return &prefetchResult{name: j.name, err: j.run(ctx)}
}

// Warm prefetches every configured dataset so first requests against the
// dashboard are served from cache. Individual failures are logged and
// returned combined; partial warm-up is usable.
func (s *Service) Warm(ctx context.Context) error {
	jobs := []*prefetchJob{
		{name: s.cfg.Catalog.National, run: func(ctx context.Context) error {
			_, err := s.catalog.ReadEmissions(ctx, s.cfg.Catalog.National)
			return err
		}},
		{name: s.cfg.Catalog.Countries, run: func(ctx context.Context) error {
			_, err := s.catalog.ReadActors(ctx, s.cfg.Catalog.Countries)
			return err
		}},
	}
	for _, dataset := range s.cfg.Catalog.Sources {
		name := dataset
		jobs = append(jobs, &prefetchJob{name: name, run: func(ctx context.Context) error {
			_, err := s.catalog.ReadEmissions(ctx, name)
			return err
		}})
	}

	pool := worker.NewPool(s.cfg.Concurrency.PrefetchWorkers)
	pool.Start()
	for _, job := range jobs {
		pool.Submit(job)
	}

	var failed int
	for _, result := range pool.Wait() {
		if err := result.GetError(); err != nil {
			failed++
			if r, ok := result.(*prefetchResult); ok {
				s.logger.Warn("prefetch failed", "dataset", r.name, "error", err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("prefetch: %d of %d datasets failed", failed, len(jobs))
	}

	s.logger.Info("datasets prefetched", "count", len(jobs))
	return nil
}
