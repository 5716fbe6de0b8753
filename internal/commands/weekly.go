package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danhoward/aio-engine/internal/config"
)

// NewWeeklyCmd creates the weekly command.
func NewWeeklyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Refresh metrics for active experiments",
		Long: `Pulls fresh search metrics for every active experiment, evaluates
those whose measurement window has matured, and scans for alert conditions.
No new experiments are started.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeekly(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would happen without writing anything")
	return cmd
}

func runWeekly(dryRun bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.Default()
	sched, st, err := buildScheduler(cfg, dryRun, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer func() { _ = st.Stop(ctx) }()

	color.Cyan("Starting weekly measurement...")
	res, err := sched.RunWeekly(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("weekly measurement: %w", err)
	}

	printRunSummary(res)
	return nil
}
