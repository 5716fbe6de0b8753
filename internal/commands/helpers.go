// Package commands implements the CLI subcommands for the aio binary.
package commands

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/danhoward/aio-engine/internal/alert"
	"github.com/danhoward/aio-engine/internal/generator"
	"github.com/danhoward/aio-engine/internal/orchestrator"
	"github.com/danhoward/aio-engine/internal/report"
	"github.com/danhoward/aio-engine/internal/scoring"
	"github.com/danhoward/aio-engine/internal/searchconsole"
	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/internal/store/dynamodb"
	"github.com/danhoward/aio-engine/internal/wordpress"
	"github.com/danhoward/aio-engine/pkg/types"
)

// newStore creates the configured DynamoDB store.
func newStore(cfg *types.ProjectConfig) (store.Store, error) {
	return dynamodb.New(cfg.DynamoDB)
}

// newReportStore creates the report destination: S3 when a bucket is
// configured, a local directory otherwise.
func newReportStore(cfg *types.ProjectConfig) (report.Store, error) {
	if cfg.Reports.S3Bucket != "" {
		return report.NewS3Store(cfg.Reports.S3Bucket, cfg.Reports.S3Prefix)
	}
	return report.NewFileStore(cfg.Reports.Dir)
}

// siteHost extracts the host from the configured base URL. Scoring rules use
// it to tell internal links from external ones.
func siteHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing site.baseUrl: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("site.baseUrl %q has no host", baseURL)
	}
	return u.Host, nil
}

// buildScheduler wires the full collaborator set from project config. The
// caller owns the returned store and must Stop it.
func buildScheduler(cfg *types.ProjectConfig, dryRun bool, logger *slog.Logger) (*orchestrator.Scheduler, store.Store, error) {
	st, err := newStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating store: %w", err)
	}

	host, err := siteHost(cfg.Site.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	scorer, err := scoring.New(scoring.DefaultRules(host), cfg.Thresholds.OptimizationThreshold)
	if err != nil {
		return nil, nil, fmt.Errorf("building scorer: %w", err)
	}

	metricsAPI, err := searchconsole.New(cfg.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("creating metrics client: %w", err)
	}
	cms, err := wordpress.New(cfg.CMS)
	if err != nil {
		return nil, nil, fmt.Errorf("creating CMS client: %w", err)
	}
	gen, err := generator.New(cfg.Generator)
	if err != nil {
		return nil, nil, fmt.Errorf("creating generator client: %w", err)
	}

	dispatcher, err := alert.NewDispatcher(cfg.Alerts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating alert dispatcher: %w", err)
	}

	reports, err := newReportStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating report store: %w", err)
	}

	sched := orchestrator.New(orchestrator.Deps{
		Store:      st,
		Metrics:    metricsAPI,
		CMS:        cms,
		Generator:  gen,
		Scorer:     scorer,
		Reports:    reports,
		Dispatcher: dispatcher,
		Thresholds: cfg.Thresholds,
		Logger:     logger,
		DryRun:     dryRun,
	})
	return sched, st, nil
}

// printRunSummary renders the outcome of an orchestrated run.
func printRunSummary(res *orchestrator.RunResult) {
	rep := res.Report
	bold := color.New(color.Bold)

	fmt.Println()
	if rep.DryRun {
		color.Yellow("DRY RUN - no changes were written")
	}
	_, _ = bold.Println("Run summary:")
	fmt.Printf("  Pages analyzed:      %d\n", rep.PagesAnalyzed)
	fmt.Printf("  Opportunities found: %d\n", rep.OpportunitiesFound)
	fmt.Printf("  Experiments started: %d\n", len(rep.ExperimentsStarted))
	fmt.Printf("  Experiments evaluated: %d\n", len(rep.Evaluated))
	if rep.PagesFailed > 0 {
		color.Red("  Pages failed:        %d", rep.PagesFailed)
	}

	for _, exp := range rep.ExperimentsStarted {
		color.Green("  + %s (%s)", exp.PageURL, exp.ChangesSummary)
	}
	for _, exp := range rep.Evaluated {
		switch exp.Outcome {
		case types.OutcomeImproved:
			color.Green("  = %s -> %s", exp.PageURL, exp.Outcome)
		case types.OutcomeWorsened:
			color.Red("  = %s -> %s", exp.PageURL, exp.Outcome)
		default:
			fmt.Printf("  = %s -> %s\n", exp.PageURL, exp.Outcome)
		}
	}
	for _, a := range rep.Alerts {
		switch a.Level {
		case types.AlertLevelError:
			color.Red("  ! %s: %s", a.PageSlug, a.Message)
		case types.AlertLevelWarning:
			color.Yellow("  ! %s: %s", a.PageSlug, a.Message)
		default:
			color.Cyan("  ! %s: %s", a.PageSlug, a.Message)
		}
	}

	if len(res.Opportunities) > 0 {
		fmt.Println()
		_, _ = bold.Println("Top opportunities:")
		for i, opp := range res.Opportunities {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(res.Opportunities)-i)
				break
			}
			fmt.Printf("  %2d. %-50s score=%-6d impressions=%d missing=%s\n",
				i+1, opp.PageURL, opp.OpportunityScore, opp.Impressions,
				strings.Join(opp.Score.MissingElements, ","))
		}
		fmt.Println()
		fmt.Printf("  Potential: %d pages, %d impressions, avg structure %.1f\n",
			res.Impact.PageCount, res.Impact.TotalImpressions, res.Impact.AvgCurrentScore)
	}

	if res.ReportPath != "" {
		fmt.Println()
		fmt.Printf("Report written to %s\n", res.ReportPath)
	}
}

const runTimeout = 30 * time.Minute
