package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclimate-tools/climateview/internal/dashboard"
	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/logging"
)

var (
	servePort int
	serveEnv  string
	noWarm    bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Serve the interactive dashboard: an HTML selection page, chart
image endpoints, and a JSON API for actors and reconciliation data.

Example:
  climateview serve --port 4000
  climateview serve --no-warm`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveEnv, "env", "", "environment name (development|staging|production)")
	serveCmd.Flags().BoolVar(&noWarm, "no-warm", false, "skip dataset prefetch on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveEnv != "" {
		cfg.Server.Env = serveEnv
	}

	logger := logging.New(os.Stdout, slog.LevelInfo, true)

	svc, err := dataset.NewService(cfg, logger)
	if err != nil {
		return err
	}

	if !noWarm {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := svc.Warm(ctx); err != nil {
			// requests fetch on demand; a cold start is degraded, not broken
			logger.Warn("dataset prefetch incomplete", "error", err)
		}
		cancel()
	}

	return dashboard.NewServer(cfg, svc, logger).ListenAndServe()
}
