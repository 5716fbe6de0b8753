package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danhoward/aio-engine/internal/config"
	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var pageURL string

	cmd := &cobra.Command{
		Use:   "status [page-url]",
		Short: "Show experiment status and learned patterns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				pageURL = args[0]
			}
			return runStatus(pageURL)
		},
	}
	return cmd
}

func runStatus(pageURL string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer func() { _ = st.Stop(ctx) }()

	if pageURL != "" {
		return showPageStatus(ctx, st, pageURL)
	}
	return showOverallStatus(ctx, st)
}

func showOverallStatus(ctx context.Context, st store.Store) error {
	exps, err := st.GetAllExperiments(ctx)
	if err != nil {
		return fmt.Errorf("listing experiments: %w", err)
	}

	if len(exps) == 0 {
		fmt.Println("No experiments yet.")
		return nil
	}

	summary := store.Summarize(exps)
	bold := color.New(color.Bold)

	_, _ = bold.Println("Experiment summary:")
	fmt.Printf("  Active:       %d\n", summary.Active)
	fmt.Printf("  Completed:    %d\n", summary.Completed)
	fmt.Printf("  Success rate: %.0f%%\n", summary.SuccessRate*100)
	for outcome, n := range summary.Outcomes {
		fmt.Printf("    %-14s %d\n", outcome, n)
	}

	now := time.Now().UTC()
	var active []types.Experiment
	for _, exp := range exps {
		if exp.Status == types.ExperimentActive {
			active = append(active, exp)
		}
	}
	if len(active) > 0 {
		fmt.Println()
		_, _ = bold.Println("Active experiments:")
		for _, exp := range active {
			age := int(now.Sub(exp.CreatedAt).Hours() / 24)
			fmt.Printf("  %-50s %3dd  %s\n", exp.PageURL, age, exp.ChangesSummary)
		}
	}

	perf, err := st.GetPerformanceByElement(ctx)
	if err != nil {
		return fmt.Errorf("loading element performance: %w", err)
	}
	if len(perf) > 0 {
		fmt.Println()
		_, _ = bold.Println("Performance by element:")
		for _, p := range perf {
			fmt.Printf("  %-20s total=%-3d improved=%-3d worsened=%-3d success=%.0f%%\n",
				p.ElementKind, p.Total, p.Improved, p.Worsened, p.SuccessRate*100)
		}
	}

	patterns, err := st.GetSuccessfulPatterns(ctx)
	if err != nil {
		return fmt.Errorf("loading patterns: %w", err)
	}
	if len(patterns) > 0 {
		fmt.Println()
		_, _ = bold.Println("Winning patterns:")
		for _, p := range patterns {
			color.Green("  %s (n=%d, %.0f%% improved)", p.ChangesSummary, p.Count, p.SuccessRate*100)
		}
	}
	fmt.Println()
	return nil
}

func showPageStatus(ctx context.Context, st store.Store, pageURL string) error {
	exps, err := st.GetExperimentsForPage(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("loading page experiments: %w", err)
	}

	bold := color.New(color.Bold)
	_, _ = bold.Printf("Page: %s\n", pageURL)

	if len(exps) == 0 {
		fmt.Println("  No experiments for this page.")
		return nil
	}

	for _, exp := range exps {
		fmt.Println()
		fmt.Printf("  %s  created %s\n", exp.ID, exp.CreatedAt.Format("2006-01-02"))
		fmt.Printf("    Changes:    %s\n", exp.ChangesSummary)
		fmt.Printf("    Hypothesis: %s\n", exp.Hypothesis)
		switch {
		case exp.Outcome == types.OutcomeImproved:
			color.Green("    Outcome:    %s", exp.Outcome)
		case exp.Outcome == types.OutcomeWorsened:
			color.Red("    Outcome:    %s", exp.Outcome)
		case exp.Outcome != "":
			fmt.Printf("    Outcome:    %s\n", exp.Outcome)
		default:
			color.Yellow("    Outcome:    pending")
		}
		if exp.OutcomeNotes != "" {
			fmt.Printf("    Notes:      %s\n", exp.OutcomeNotes)
		}
	}

	scores, err := st.GetScoreHistory(ctx, pageURL, 5)
	if err != nil {
		return fmt.Errorf("loading score history: %w", err)
	}
	if len(scores) > 0 {
		fmt.Println()
		_, _ = bold.Println("  Recent scores:")
		for _, s := range scores {
			fmt.Printf("    %s  %d\n", s.Date, s.TotalScore)
		}
	}
	return nil
}
