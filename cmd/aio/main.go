package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danhoward/aio-engine/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "aio",
		Short: "Opportunity scoring and experiment lifecycle engine for AI-answer visibility",
		Long: `Aio scores page structure against the elements AI answer engines cite,
ranks optimization opportunities by traffic and structural gaps, and runs
each change as a tracked experiment: frozen pre-metrics, a measurement
window, and a classified outcome.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewAnalyzeCmd(),
		commands.NewMonthlyCmd(),
		commands.NewWeeklyCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
