package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/config"
	"github.com/MikeSquared-Agency/wayfarer/internal/intent"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

func newPlanCmd() *cobra.Command {
	var (
		hours  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:       "plan day|restaurants|explore",
		Short:     "Answer one place question and exit",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"day", "restaurants", "explore"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if hours <= 0 {
				return fmt.Errorf("--hours must be positive, got %d", hours)
			}
			cfg := config.Load()
			setupLogging(cfg.LogLevel, os.Stderr)

			var places catalog.Catalog = catalog.Default()
			if cfg.DatabaseURL != "" {
				db, err := store.New(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				places = db
			}

			plan, err := answer(ctx, newPlanner(cfg, places), args[0], hours)
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), plan, asJSON)
		},
	}
	cmd.Flags().IntVar(&hours, "hours", intent.DefaultExploreHours, "time budget for explore")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the structured plan")
	return cmd
}

func answer(ctx context.Context, p *assistant.Planner, what string, hours int) (assistant.Plan, error) {
	switch what {
	case "day":
		return p.PlanDay(ctx)
	case "restaurants":
		return p.FindRestaurants(ctx)
	case "explore":
		return p.PlanExploration(ctx, hours)
	}
	return assistant.Plan{}, fmt.Errorf("unknown plan %q", what)
}

func printPlan(w io.Writer, plan assistant.Plan, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, plan.Response)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
