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

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score all pages and rank opportunities",
		Long: `Scores every page with search data and prints the ranked opportunity
list. Nothing is changed in the CMS and no experiments are started.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip saving score snapshots")
	return cmd
}

func runAnalyze(dryRun bool) error {
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

	color.Cyan("Analyzing pages...")
	res, err := sched.RunAnalysis(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	printRunSummary(res)
	return nil
}
