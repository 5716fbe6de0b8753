package orchestrator

import (
	"context"
	"time"

	"github.com/danhoward/aio-engine/internal/metrics"
	"github.com/danhoward/aio-engine/internal/ranking"
	"github.com/danhoward/aio-engine/internal/report"
	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// RunResult is what one orchestrated run produced, including the rendered
// report and where it was saved.
type RunResult struct {
	Report        types.RunReport
	Opportunities []types.PageSnapshot
	Impact        types.Impact
	ReportBody    string
	ReportPath    string
}

// RunMonthly executes the full review: analyze every page, evaluate ready
// experiments, optimize the top candidates, scan for alerts, and write the
// report. The run always completes; per-page failures are counted, not fatal.
func (s *Scheduler) RunMonthly(ctx context.Context, now time.Time) (*RunResult, error) {
	rep := types.RunReport{DryRun: s.dryRun, StartedAt: now}

	pages, failed, err := s.AnalyzePages(ctx, now)
	if err != nil {
		return nil, err
	}
	rep.PagesAnalyzed = len(pages)
	rep.PagesFailed = failed

	opportunities := s.Opportunities(pages)
	rep.OpportunitiesFound = len(opportunities)

	evaluated, err := s.EvaluateReady(ctx, now)
	if err != nil {
		return nil, err
	}
	rep.Evaluated = evaluated

	started, optFailed, err := s.SelectAndOptimize(ctx, now, opportunities)
	if err != nil {
		return nil, err
	}
	rep.ExperimentsStarted = started
	rep.PagesFailed += optFailed

	alerts, err := s.ScanAlerts(ctx, now)
	if err != nil {
		return nil, err
	}
	rep.Alerts = alerts

	return s.finishRun(ctx, rep, opportunities)
}

// RunWeekly executes the measurement pass: refresh post metrics for active
// experiments, evaluate the ready ones, and scan for alerts.
func (s *Scheduler) RunWeekly(ctx context.Context, now time.Time) (*RunResult, error) {
	rep := types.RunReport{DryRun: s.dryRun, StartedAt: now}

	updated, err := s.RefreshActiveMetrics(ctx, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("active metrics refreshed", "updated", updated)

	evaluated, err := s.EvaluateReady(ctx, now)
	if err != nil {
		return nil, err
	}
	rep.Evaluated = evaluated

	alerts, err := s.ScanAlerts(ctx, now)
	if err != nil {
		return nil, err
	}
	rep.Alerts = alerts

	return s.finishRun(ctx, rep, nil)
}

// RunAnalysis scores every page and reports opportunities without touching
// experiments or the CMS.
func (s *Scheduler) RunAnalysis(ctx context.Context, now time.Time) (*RunResult, error) {
	rep := types.RunReport{DryRun: s.dryRun, StartedAt: now}

	pages, failed, err := s.AnalyzePages(ctx, now)
	if err != nil {
		return nil, err
	}
	rep.PagesAnalyzed = len(pages)
	rep.PagesFailed = failed

	opportunities := s.Opportunities(pages)
	rep.OpportunitiesFound = len(opportunities)

	return s.finishRun(ctx, rep, opportunities)
}

// finishRun renders the report and saves it unless this is a dry run.
func (s *Scheduler) finishRun(ctx context.Context, rep types.RunReport, opportunities []types.PageSnapshot) (*RunResult, error) {
	impact := ranking.CalculateImpact(opportunities)

	var summary types.ExperimentSummary
	all, err := s.store.GetAllExperiments(ctx)
	if err != nil {
		s.logger.Error("failed to load experiment summary", "error", err)
	} else {
		summary = store.Summarize(all)
	}

	body := report.Build(rep, opportunities, impact, summary)
	result := &RunResult{
		Report:        rep,
		Opportunities: opportunities,
		Impact:        impact,
		ReportBody:    body,
	}

	if s.reports == nil || s.dryRun {
		return result, nil
	}
	path, err := s.reports.Save(ctx, report.Filename(rep.StartedAt), body)
	if err != nil {
		s.logger.Error("failed to save report", "error", err)
		return result, nil
	}
	metrics.ReportsWritten.Add(1)
	result.ReportPath = path
	return result, nil
}
