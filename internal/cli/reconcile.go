package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclimate-tools/climateview/internal/chart"
	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/llm"
	"github.com/openclimate-tools/climateview/internal/view"
)

var (
	reconcileActor  string
	reconcileJSON   string
	reconcileChart  string
	differenceChart string
	llmEnabled      bool
	llmModel        string
	llmBaseURL      string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare summed subnational emissions to the national total",
	Long: `Reconcile sums the subnational inventory configured for a country
and subtracts it from the national total, year by year. Years missing
from either inventory are excluded.

Example:
  climateview reconcile --actor CA
  climateview reconcile --actor US --json report.json --diff-chart diff.png
  climateview reconcile --actor CA --llm`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileActor, "actor", "", "national actor code")
	reconcileCmd.Flags().StringVar(&reconcileJSON, "json", "", "write the report as JSON to this path")
	reconcileCmd.Flags().StringVar(&reconcileChart, "chart", "", "write the national-vs-subnational chart to this path")
	reconcileCmd.Flags().StringVar(&differenceChart, "diff-chart", "", "write the difference chart to this path")
	reconcileCmd.Flags().BoolVar(&llmEnabled, "llm", false, "append an LLM narrative summary (needs OPENAI_API_KEY)")
	reconcileCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	reconcileCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "OpenAI-compatible API base URL")
	_ = reconcileCmd.MarkFlagRequired("actor")
}

type reconcileReport struct {
	Actor string         `json:"actor"`
	Name  string         `json:"name"`
	Years []reconcileRow `json:"years"`
}

type reconcileRow struct {
	Year       int     `json:"year"`
	National   float64 `json:"national"`
	SubTotal   float64 `json:"subnational_total"`
	Difference float64 `json:"difference"`
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if llmEnabled {
		cfg.LLM.Provider = "openai"
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		if llmBaseURL != "" {
			cfg.LLM.BaseURL = llmBaseURL
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := cliLogger()
	svc, err := dataset.NewService(cfg, logger)
	if err != nil {
		return err
	}

	rec, err := view.NewBuilder(svc, logger).Reconcile(ctx, reconcileActor)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	report := reconcileReport{Actor: rec.Actor, Name: rec.Label}
	for _, year := range rec.Difference.Years() {
		report.Years = append(report.Years, reconcileRow{
			Year:       year,
			National:   rec.National[year],
			SubTotal:   rec.SubTotal[year],
			Difference: rec.Difference[year],
		})
	}

	printReport(report)

	if reconcileJSON != "" {
		if err := writeJSON(reconcileJSON, report); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", reconcileJSON)
	}
	if reconcileChart != "" {
		if err := renderToFile(reconcileChart, func(f *os.File) error {
			return chart.RenderReconciliation(f, cfg.Output.Format, rec.Label, rec.National, rec.SubTotal)
		}); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", reconcileChart)
	}
	if differenceChart != "" {
		if err := renderToFile(differenceChart, func(f *os.File) error {
			return chart.RenderDifference(f, cfg.Output.Format, rec.Subnational, rec.Difference)
		}); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", differenceChart)
	}

	if llmEnabled {
		summarizer, err := llm.NewSummarizer(cfg.LLM)
		if err != nil {
			return err
		}
		summary, err := summarizer.Summarize(ctx, rec)
		if err != nil {
			// the table already printed; a failed narrative is a warning
			fmt.Fprintf(os.Stderr, "Warning: LLM summary failed: %v\n", err)
		} else {
			fmt.Printf("\n%s\n", summary)
		}
	}

	return nil
}

func printReport(report reconcileReport) {
	fmt.Printf("Reconciliation for %s (%s), tonnes CO2e\n\n", report.Name, report.Actor)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "year\tnational\tsubnational\tdifference\t")
	for _, row := range report.Years {
		fmt.Fprintf(w, "%d\t%.0f\t%.0f\t%.0f\t\n", row.Year, row.National, row.SubTotal, row.Difference)
	}
	_ = w.Flush()
}

func writeJSON(path string, report reconcileReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

func renderToFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
