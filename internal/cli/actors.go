package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclimate-tools/climateview/internal/dataset"
)

// actorsCmd represents the actors command
var actorsCmd = &cobra.Command{
	Use:   "actors",
	Short: "List known actor codes and display names",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		svc, err := dataset.NewService(cfg, cliLogger())
		if err != nil {
			return err
		}

		names, err := svc.ActorNames(ctx)
		if err != nil {
			return fmt.Errorf("load actor names: %w", err)
		}

		ids := make([]string, 0, len(names))
		for id := range names {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, id := range ids {
			suffix := ""
			if _, ok := svc.SubnationalSource(id); ok {
				suffix = "(subnational inventory available)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, names[id], suffix)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(actorsCmd)
}
