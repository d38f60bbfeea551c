// Package view assembles chart-ready view models from fetched data:
// per-actor time series with derived targets, and national-vs-subnational
// reconciliations.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/openclimate-tools/climateview/internal/chart"
	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/series"
)

// Builder turns dataset queries into chart inputs
type Builder struct {
	svc    *dataset.Service
	logger *slog.Logger
}

// NewBuilder creates a view builder over the dataset service
func NewBuilder(svc *dataset.Service, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{svc: svc, logger: logger}
}

// Timeseries builds one ActorSeries per requested national actor. A
// missing pledge or baseline year drops that actor's target line but
// never the actor itself; an unknown actor is an error.
func (b *Builder) Timeseries(ctx context.Context, actorIDs []string) ([]chart.ActorSeries, error) {
	records, err := b.svc.NationalEmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load national inventory: %w", err)
	}
	names, err := b.svc.ActorNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load actor names: %w", err)
	}

	actors := make([]chart.ActorSeries, 0, len(actorIDs))
	for _, id := range actorIDs {
		rows := series.Filter(records, id)
		if len(rows) == 0 {
			return nil, fmt.Errorf("actor %q has no rows in the national inventory", id)
		}

		actor := chart.ActorSeries{
			ID:     id,
			Label:  displayName(names, id),
			Series: series.FromRecords(rows),
		}

		pledges, err := b.svc.Pledges(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load pledges: %w", err)
		}
		target, err := series.TargetForActor(id, rows, pledges)
		switch {
		case err == nil:
			actor.Target = target
		case errors.Is(err, series.ErrNoPledges), errors.Is(err, series.ErrMissingBaselineYear):
			b.logger.Debug("skipping target line", "actor", id, "reason", err)
		default:
			return nil, err
		}

		actors = append(actors, actor)
	}
	return actors, nil
}

// Reconciliation holds everything the reconciliation views plot
type Reconciliation struct {
	Actor       string
	Label       string
	National    series.Series
	Subnational []chart.ActorSeries
	SubTotal    series.Series
	Difference  series.Series
}

// Reconcile builds the national series, the summed subnational series,
// and their year-wise difference for one national actor.
func (b *Builder) Reconcile(ctx context.Context, actorID string) (*Reconciliation, error) {
	source, ok := b.svc.SubnationalSource(actorID)
	if !ok {
		return nil, fmt.Errorf("no subnational inventory configured for actor %q", actorID)
	}

	records, err := b.svc.NationalEmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load national inventory: %w", err)
	}
	national := series.FromRecords(series.Filter(records, actorID))
	if len(national) == 0 {
		return nil, fmt.Errorf("actor %q has no rows in the national inventory", actorID)
	}

	subRecords, err := b.svc.Emissions(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load subnational inventory: %w", err)
	}

	names, err := b.svc.ActorNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load actor names: %w", err)
	}

	subTotal := series.AggregateByYear(subRecords)

	return &Reconciliation{
		Actor:       actorID,
		Label:       displayName(names, actorID),
		National:    national,
		Subnational: groupByActor(subRecords),
		SubTotal:    subTotal,
		Difference:  series.Reconcile(national, subTotal),
	}, nil
}

// groupByActor splits inventory rows into one series per actor, sorted
// by actor id for stable rendering.
func groupByActor(records []model.EmissionsRecord) []chart.ActorSeries {
	byActor := make(map[string][]model.EmissionsRecord)
	for _, r := range records {
		byActor[r.Actor] = append(byActor[r.Actor], r)
	}

	ids := make([]string, 0, len(byActor))
	for id := range byActor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]chart.ActorSeries, 0, len(ids))
	for _, id := range ids {
		out = append(out, chart.ActorSeries{
			ID:     id,
			Series: series.FromRecords(byActor[id]),
		})
	}
	return out
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
