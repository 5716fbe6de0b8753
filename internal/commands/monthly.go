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

// NewMonthlyCmd creates the monthly command.
func NewMonthlyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Run the full monthly review",
		Long: `Analyzes every page with search data, evaluates experiments whose
measurement window has matured, starts new experiments on the top-ranked
opportunities, and writes a run report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonthly(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would happen without writing anything")
	return cmd
}

func runMonthly(dryRun bool) error {
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

	color.Cyan("Starting monthly review...")
	res, err := sched.RunMonthly(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("monthly review: %w", err)
	}

	printRunSummary(res)
	return nil
}
