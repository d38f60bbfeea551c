package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclimate-tools/climateview/internal/chart"
	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/view"
)

var (
	plotActors  []string
	plotOut     string
	plotFormat  string
	plotTimeout time.Duration
	noCache     bool
)

// plotCmd represents the plot command
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render a country emissions chart with pledge target levels",
	Long: `Plot fetches the national inventory and each selected actor's
pledges, then renders one emissions line per actor plus a dashed target
level where a pledge exists.

Example:
  climateview plot --actors CA
  climateview plot --actors CA,DE --format svg --out emissions.svg`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringSliceVar(&plotActors, "actors", nil, "actor codes to plot (comma separated)")
	plotCmd.Flags().StringVar(&plotOut, "out", "emissions.png", "output chart path")
	plotCmd.Flags().StringVar(&plotFormat, "format", "", "chart format (png or svg; default from config)")
	plotCmd.Flags().DurationVar(&plotTimeout, "timeout", 2*time.Minute, "overall fetch timeout")
	plotCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	_ = plotCmd.MarkFlagRequired("actors")
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if plotFormat != "" {
		cfg.Output.Format = plotFormat
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), plotTimeout)
	defer cancel()

	logger := cliLogger()
	svc, err := dataset.NewService(cfg, logger)
	if err != nil {
		return err
	}

	actors, err := view.NewBuilder(svc, logger).Timeseries(ctx, plotActors)
	if err != nil {
		return fmt.Errorf("build timeseries: %w", err)
	}

	f, err := os.Create(plotOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := chart.RenderTimeseries(f, cfg.Output.Format, actors); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	fmt.Printf("Wrote %s\n", plotOut)
	return nil
}
