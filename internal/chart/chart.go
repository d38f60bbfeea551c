// Package chart renders the dashboard's line charts: emissions time
// series with pledge target levels, national-vs-subnational totals, and
// the reconciliation difference.
package chart

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/series"
)

const (
	chartWidth  = 720
	chartHeight = 720
	yAxisLabel  = "Emissions (GtCO2e)"
)

// subnationalGrey matches the muted per-province line color
var subnationalGrey = drawing.Color{R: 204, G: 204, B: 204, A: 255}

// ActorSeries is one plotted actor: its emissions series in tonnes and
// an optional derived target. A nil Target means no target line.
type ActorSeries struct {
	ID     string
	Label  string
	Series series.Series
	Target *model.Target
}

// rendererFor maps a config format string to a go-chart renderer
func rendererFor(format string) (chart.RendererProvider, error) {
	switch format {
	case "", "png":
		return chart.PNG, nil
	case "svg":
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("unknown chart format %q", format)
	}
}

// RenderTimeseries draws one line per actor plus a dashed target-level
// line for each actor that has one.
func RenderTimeseries(w io.Writer, format string, actors []ActorSeries) error {
	renderer, err := rendererFor(format)
	if err != nil {
		return err
	}

	var plotted []chart.Series
	var ymax float64

	for i, actor := range actors {
		if len(actor.Series) == 0 {
			continue
		}

		scaled := actor.Series.Scale(model.TonnesToGigatonnes)
		if m := scaled.Max(); m > ymax {
			ymax = m
		}

		xs, ys := points(scaled)
		plotted = append(plotted, chart.ContinuousSeries{
			Name:    actor.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 2,
				StrokeColor: chart.GetDefaultColor(i),
			},
		})

		if actor.Target != nil {
			years := actor.Series.Years()
			lastYear := years[len(years)-1]
			if actor.Target.BaselineYear < lastYear {
				level := actor.Target.Level * model.TonnesToGigatonnes
				plotted = append(plotted, chart.ContinuousSeries{
					Name:    fmt.Sprintf("%s target level", actor.Label),
					XValues: []float64{float64(actor.Target.BaselineYear), float64(lastYear)},
					YValues: []float64{level, level},
					Style: chart.Style{
						StrokeWidth:     2,
						StrokeColor:     chart.GetDefaultColor(i),
						StrokeDashArray: []float64{5, 5},
					},
				})
			}
		}
	}

	if len(plotted) == 0 {
		return fmt.Errorf("no series to plot")
	}

	graph := baseChart(plotted, 0, ymax)
	return graph.Render(renderer, w)
}

// RenderReconciliation draws the national total against the summed
// subnational series.
func RenderReconciliation(w io.Writer, format string, label string, national, subnationalTotal series.Series) error {
	renderer, err := rendererFor(format)
	if err != nil {
		return err
	}
	if len(national) == 0 {
		return fmt.Errorf("no national series to plot")
	}

	scaledNational := national.Scale(model.TonnesToGigatonnes)
	xs, ys := points(scaledNational)
	plotted := []chart.Series{chart.ContinuousSeries{
		Name:    label,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeWidth: 2, StrokeColor: chart.GetDefaultColor(0)},
	}}

	if len(subnationalTotal) > 0 {
		xs, ys := points(subnationalTotal.Scale(model.TonnesToGigatonnes))
		plotted = append(plotted, chart.ContinuousSeries{
			Name:    "Sum of Subnationals",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth:     2,
				StrokeColor:     chart.GetDefaultColor(1),
				StrokeDashArray: []float64{5, 5},
			},
		})
	}

	graph := baseChart(plotted, 0, scaledNational.Max())
	return graph.Render(renderer, w)
}

// RenderDifference draws each subnational series in grey behind the
// national-minus-subnational difference, with a symmetric y range around
// a zero reference line.
func RenderDifference(w io.Writer, format string, subnational []ActorSeries, difference series.Series) error {
	renderer, err := rendererFor(format)
	if err != nil {
		return err
	}
	if len(difference) == 0 {
		return fmt.Errorf("no overlapping years to plot")
	}

	scaledDiff := difference.Scale(model.TonnesToGigatonnes)
	ymax := absMax(scaledDiff)

	var plotted []chart.Series
	for i, actor := range subnational {
		if len(actor.Series) < 2 {
			continue
		}
		scaled := actor.Series.Scale(model.TonnesToGigatonnes)
		if m := scaled.Max(); m > ymax {
			ymax = m
		}
		xs, ys := points(scaled)
		s := chart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeWidth: 1, StrokeColor: subnationalGrey},
		}
		// label the grey bundle once
		if i == 0 {
			s.Name = "Subnational"
		}
		plotted = append(plotted, s)
	}

	years := scaledDiff.Years()
	plotted = append(plotted, chart.ContinuousSeries{
		XValues: []float64{float64(years[0]), float64(years[len(years)-1])},
		YValues: []float64{0, 0},
		Style:   chart.Style{StrokeWidth: 1, StrokeColor: drawing.ColorBlack},
	})

	xs, ys := points(scaledDiff)
	plotted = append(plotted, chart.ContinuousSeries{
		Name:    "Difference",
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeWidth: 2, StrokeColor: chart.GetDefaultColor(0)},
	})

	graph := baseChart(plotted, -ymax, ymax)
	return graph.Render(renderer, w)
}

func baseChart(plotted []chart.Series, ymin, ymax float64) chart.Chart {
	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name:           "Year",
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  yAxisLabel,
			Range: &chart.ContinuousRange{Min: ymin, Max: ymax},
		},
		Series: plotted,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// points converts a series to sorted x/y slices
func points(s series.Series) ([]float64, []float64) {
	years := s.Years()
	xs := make([]float64, len(years))
	ys := make([]float64, len(years))
	for i, y := range years {
		xs[i] = float64(y)
		ys[i] = s[y]
	}
	return xs, ys
}

func absMax(s series.Series) float64 {
	var max float64
	for _, v := range s {
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}
