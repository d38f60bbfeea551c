// Package series implements the pure computations over emissions data:
// target-emissions levels derived from pledges, by-year aggregation of
// subnational inventories, and reconciliation against national totals.
package series

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openclimate-tools/climateview/internal/model"
)

// ErrMissingBaselineYear is returned when a pledge's baseline year has no
// row in the actor's emissions series. Callers skip the target line and
// keep rendering.
var ErrMissingBaselineYear = errors.New("baseline year absent from emissions series")

// ErrNoPledges is returned when an actor has no pledge on record.
// Callers skip target computation entirely.
var ErrNoPledges = errors.New("actor has no pledges")

// Series maps year to total emissions (tonnes CO2e)
type Series map[int]float64

// FromRecords builds a Series from inventory rows belonging to a single
// actor. If records contains rows for several actors, filter first.
func FromRecords(records []model.EmissionsRecord) Series {
	s := make(Series, len(records))
	for _, r := range records {
		s[r.Year] = r.TotalEmissions
	}
	return s
}

// Filter returns the rows belonging to the given actor
func Filter(records []model.EmissionsRecord, actorID string) []model.EmissionsRecord {
	var out []model.EmissionsRecord
	for _, r := range records {
		if r.Actor == actorID {
			out = append(out, r)
		}
	}
	return out
}

// Years returns the years of the series in ascending order
func (s Series) Years() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Max returns the largest value in the series, or 0 for an empty series
func (s Series) Max() float64 {
	var max float64
	for _, v := range s {
		if v > max {
			max = v
		}
	}
	return max
}

// Scale returns a copy of the series with every value multiplied by factor
func (s Series) Scale(factor float64) Series {
	out := make(Series, len(s))
	for y, v := range s {
		out[y] = v * factor
	}
	return out
}

// ComputeTarget computes the absolute target-emissions level implied by a
// percentage reduction pledge against the baseline year's emissions:
//
//	target = series[baselineYear] * (100 - targetPercent) / 100
//
// Returns ErrMissingBaselineYear when the series has no row for the
// baseline year.
func ComputeTarget(s Series, baselineYear int, targetPercent float64) (float64, error) {
	if targetPercent < 0 || targetPercent > 100 {
		return 0, fmt.Errorf("target percent %v out of range [0,100]", targetPercent)
	}
	baseline, ok := s[baselineYear]
	if !ok {
		return 0, fmt.Errorf("year %d: %w", baselineYear, ErrMissingBaselineYear)
	}
	return baseline * (100 - targetPercent) / 100, nil
}

// TargetForActor derives an actor's target level from its pledges and
// emissions rows. Only the first pledge is used; ordering from the source
// API is authoritative.
func TargetForActor(actorID string, records []model.EmissionsRecord, pledges []model.Pledge) (*model.Target, error) {
	if len(pledges) == 0 {
		return nil, fmt.Errorf("actor %s: %w", actorID, ErrNoPledges)
	}
	pledge := pledges[0]

	s := FromRecords(Filter(records, actorID))
	level, err := ComputeTarget(s, pledge.BaselineYear, pledge.TargetValue)
	if err != nil {
		return nil, fmt.Errorf("actor %s: %w", actorID, err)
	}

	return &model.Target{
		Actor:         actorID,
		BaselineYear:  pledge.BaselineYear,
		TargetPercent: pledge.TargetValue,
		Baseline:      s[pledge.BaselineYear],
		Level:         level,
	}, nil
}

// AggregateByYear groups emissions rows by year and sums total emissions.
// The result has one entry per distinct year in the input; input ordering
// is irrelevant.
func AggregateByYear(records []model.EmissionsRecord) Series {
	s := make(Series)
	for _, r := range records {
		s[r.Year] += r.TotalEmissions
	}
	return s
}

// Reconcile subtracts the aggregated subnational series from the national
// series pointwise. Years missing from either side are excluded from the
// result, never zero-filled.
func Reconcile(national, aggregated Series) Series {
	diff := make(Series)
	for year, total := range national {
		sub, ok := aggregated[year]
		if !ok {
			continue
		}
		diff[year] = total - sub
	}
	return diff
}
