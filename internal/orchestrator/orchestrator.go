// Package orchestrator sequences the engine's batch runs: analyze, evaluate,
// optimize, alert, report.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/danhoward/aio-engine/internal/alert"
	"github.com/danhoward/aio-engine/internal/evaluator"
	"github.com/danhoward/aio-engine/internal/implement"
	"github.com/danhoward/aio-engine/internal/lifecycle"
	"github.com/danhoward/aio-engine/internal/metrics"
	"github.com/danhoward/aio-engine/internal/ranking"
	"github.com/danhoward/aio-engine/internal/report"
	"github.com/danhoward/aio-engine/internal/scoring"
	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// Collaborator circuit names.
const (
	collabCMS       = "cms"
	collabGenerator = "generator"
	collabMetrics   = "metrics"
)

// MetricsProvider supplies page-level search metrics for a date window.
type MetricsProvider interface {
	Window(now time.Time) types.DateRange
	GetPageMetrics(ctx context.Context, pageURL string, r types.DateRange) (*types.PageMetrics, error)
	GetAllPages(ctx context.Context, r types.DateRange) ([]types.PageRow, error)
}

// PageStore reads and writes page content in the CMS.
type PageStore interface {
	FetchBySlug(ctx context.Context, slug string) (*types.Page, error)
	UpdateContent(ctx context.Context, id int64, content string) error
}

// ContentGenerator produces structural elements for a page's missing kinds.
// It may omit elements it fails to generate.
type ContentGenerator interface {
	GenerateElements(ctx context.Context, title, content string, missing []string) (types.GenerationResult, error)
}

// Deps collects the Scheduler's collaborators and core components.
type Deps struct {
	Store      store.Store
	Metrics    MetricsProvider
	CMS        PageStore
	Generator  ContentGenerator
	Scorer     *scoring.Scorer
	Reports    report.Store // optional
	Dispatcher *alert.Dispatcher
	Thresholds types.Thresholds
	Logger     *slog.Logger
	DryRun     bool
}

// Scheduler drives the experiment lifecycle. One logical run executes its
// steps strictly sequentially; a single page's failure never aborts the run.
type Scheduler struct {
	store      store.Store
	metricsAPI MetricsProvider
	cms        PageStore
	generator  ContentGenerator
	scorer     *scoring.Scorer
	ranker     *ranking.Ranker
	gate       *ranking.Gate
	evaluator  *evaluator.Evaluator
	watcher    *alert.Watcher
	dispatcher *alert.Dispatcher
	breaker    *CircuitBreaker
	reports    report.Store
	thresholds types.Thresholds
	logger     *slog.Logger
	dryRun     bool
}

// New creates a new Scheduler.
func New(deps Deps) *Scheduler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:      deps.Store,
		metricsAPI: deps.Metrics,
		cms:        deps.CMS,
		generator:  deps.Generator,
		scorer:     deps.Scorer,
		ranker:     ranking.New(deps.Thresholds),
		gate:       ranking.NewGate(deps.Thresholds.MinDaysBetweenChanges),
		evaluator:  evaluator.New(deps.Thresholds),
		watcher:    alert.NewWatcher(deps.Thresholds),
		dispatcher: deps.Dispatcher,
		breaker:    NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		reports:    deps.Reports,
		thresholds: deps.Thresholds,
		logger:     logger,
		dryRun:     deps.DryRun,
	}
}

// AnalyzePages fetches every page with search data in the current window,
// scores its structure, and records eligibility. Pages below the impression
// floor are skipped outright. Returns the scored pages and the number of
// pages that failed.
func (s *Scheduler) AnalyzePages(ctx context.Context, now time.Time) ([]types.PageSnapshot, int, error) {
	window := s.metricsAPI.Window(now)
	rows, err := s.metricsAPI.GetAllPages(ctx, window)
	if err != nil {
		metrics.MetricsFetchFailures.Add(1)
		return nil, 0, fmt.Errorf("fetching page listing: %w", err)
	}

	var (
		pages  []types.PageSnapshot
		failed int
	)
	for _, row := range rows {
		if ctx.Err() != nil {
			return pages, failed, ctx.Err()
		}
		if row.Impressions < s.thresholds.MinImpressionsForAnalysis {
			metrics.PagesSkipped.Add(1)
			continue
		}

		snap, ok := s.analyzePage(ctx, row, now, window)
		if !ok {
			failed++
			continue
		}
		if snap == nil {
			continue
		}
		pages = append(pages, *snap)
		metrics.PagesAnalyzed.Add(1)
	}
	return pages, failed, nil
}

// analyzePage scores one page. Returns (nil, true) when the page is simply
// absent from the CMS, (nil, false) on collaborator failure.
func (s *Scheduler) analyzePage(ctx context.Context, row types.PageRow, now time.Time, window types.DateRange) (*types.PageSnapshot, bool) {
	slug := slugFromURL(row.PageURL)

	if !s.breaker.Allow(collabCMS) {
		s.logger.Warn("cms circuit open, skipping page", "page", slug)
		return nil, false
	}
	page, err := s.cms.FetchBySlug(ctx, slug)
	if err != nil {
		s.breaker.RecordFailure(collabCMS)
		s.logger.Error("failed to fetch page", "page", slug, "error", err)
		return nil, false
	}
	s.breaker.RecordSuccess(collabCMS)
	if page == nil {
		s.logger.Debug("page not in cms, skipping", "page", slug)
		return nil, true
	}

	result := s.scorer.Score(page.Content, page.RawContent)

	if !s.dryRun {
		snap := scoring.Snapshot(row.PageURL, slug, now.Format("2006-01-02"), result)
		if err := s.store.SaveScoreSnapshot(ctx, snap); err != nil {
			s.logger.Warn("failed to save score snapshot", "page", slug, "error", err)
		} else {
			metrics.ScoreSnapshotsSaved.Add(1)
		}
	}

	last, err := s.store.GetLastExperimentForPage(ctx, row.PageURL)
	if err != nil {
		s.logger.Error("failed to load last experiment", "page", slug, "error", err)
		return nil, false
	}

	var (
		lastCreated *time.Time
		daysSince   *int
	)
	if last != nil {
		lastCreated = &last.CreatedAt
		d := ranking.DaysSince(last.CreatedAt, now)
		daysSince = &d
	}

	return &types.PageSnapshot{
		PageURL:                 row.PageURL,
		PageSlug:                slug,
		PostID:                  page.ID,
		Title:                   page.Title,
		Content:                 page.Content,
		PageMetrics:             row.PageMetrics,
		Score:                   result,
		OpportunityScore:        ranking.OpportunityScore(row.Impressions, result),
		Eligible:                s.gate.IsEligible(lastCreated, now),
		DaysSinceLastExperiment: daysSince,
	}, true
}

// Opportunities ranks scored pages into the capped candidate list.
func (s *Scheduler) Opportunities(pages []types.PageSnapshot) []types.PageSnapshot {
	opps := s.ranker.Rank(pages, s.thresholds.MaxExperimentsPerMonth)
	metrics.OpportunitiesFound.Add(int64(len(opps)))
	return opps
}

// RefreshActiveMetrics fetches current metrics for every active experiment
// and stores them as the post snapshot. Returns the number updated.
func (s *Scheduler) RefreshActiveMetrics(ctx context.Context, now time.Time) (int, error) {
	active, err := s.store.GetActiveExperiments(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing active experiments: %w", err)
	}

	window := s.metricsAPI.Window(now)
	updated := 0
	for _, exp := range active {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		if !s.breaker.Allow(collabMetrics) {
			s.logger.Warn("metrics circuit open, skipping refresh", "experimentID", exp.ID)
			continue
		}
		pm, err := s.metricsAPI.GetPageMetrics(ctx, exp.PageURL, window)
		if err != nil {
			s.breaker.RecordFailure(collabMetrics)
			metrics.MetricsFetchFailures.Add(1)
			s.logger.Error("failed to fetch metrics", "page", exp.PageSlug, "error", err)
			continue
		}
		s.breaker.RecordSuccess(collabMetrics)
		if pm == nil {
			continue
		}

		post := types.MetricsSnapshot{
			PageMetrics:    *pm,
			StructureScore: exp.Pre.StructureScore,
			Range:          window,
		}
		if s.dryRun {
			updated++
			continue
		}
		if err := s.store.UpdatePostMetrics(ctx, exp.ID, post, "", ""); err != nil {
			s.logger.Error("failed to store post metrics", "experimentID", exp.ID, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}

// EvaluateReady runs the evaluator over every active experiment and persists
// outcomes for those that are ready or past the evaluation deadline. Returns
// the experiments that received an outcome this pass.
func (s *Scheduler) EvaluateReady(ctx context.Context, now time.Time) ([]types.Experiment, error) {
	active, err := s.store.GetActiveExperiments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active experiments: %w", err)
	}

	var evaluated []types.Experiment
	for _, exp := range active {
		if ctx.Err() != nil {
			return evaluated, ctx.Err()
		}
		if !lifecycle.ReadyForEvaluation(exp, now, s.thresholds) {
			continue
		}
		result := s.evaluator.Evaluate(exp, now)
		if result.Outcome == "" {
			continue
		}

		if !s.dryRun {
			if err := s.store.UpdatePostMetrics(ctx, exp.ID, *exp.Post, result.Outcome, result.Notes); err != nil {
				metrics.EvaluationErrors.Add(1)
				s.logger.Error("failed to persist outcome", "experimentID", exp.ID, "error", err)
				continue
			}
		}
		exp.Outcome = result.Outcome
		exp.OutcomeNotes = result.Notes
		exp.Status = types.ExperimentCompleted
		evaluated = append(evaluated, exp)
		metrics.ExperimentsEvaluated.Add(1)
		s.logger.Info("experiment evaluated", "experimentID", exp.ID,
			"page", exp.PageSlug, "outcome", result.Outcome, "reason", result.Reason)
	}
	return evaluated, nil
}

// ScanAlerts checks every active experiment with post metrics for early
// significant deviations and dispatches any alerts found.
func (s *Scheduler) ScanAlerts(ctx context.Context, now time.Time) ([]types.Alert, error) {
	active, err := s.store.GetActiveExperiments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active experiments: %w", err)
	}

	alerts := s.watcher.Scan(active, now)
	if len(alerts) > 0 && s.dispatcher != nil {
		s.dispatcher.DispatchAll(ctx, alerts)
		metrics.AlertsDispatched.Add(int64(len(alerts)))
	}
	return alerts, nil
}

// SelectAndOptimize walks the ranked opportunities, generates content for
// each, writes it to the CMS, and records an experiment per successful write.
// The monthly cap is enforced across runs via the store's creation count.
// Each candidate is attempted at most once; failures skip to the next.
func (s *Scheduler) SelectAndOptimize(ctx context.Context, now time.Time, opportunities []types.PageSnapshot) ([]types.Experiment, int, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := s.store.CountExperimentsSince(ctx, monthStart)
	if err != nil {
		return nil, 0, fmt.Errorf("counting experiments this month: %w", err)
	}
	remaining := s.thresholds.MaxExperimentsPerMonth - used
	if remaining <= 0 {
		s.logger.Warn("monthly experiment cap reached", "cap", s.thresholds.MaxExperimentsPerMonth)
		return nil, 0, nil
	}

	window := s.metricsAPI.Window(now)
	var (
		started []types.Experiment
		failed  int
	)
	for _, opp := range opportunities {
		if ctx.Err() != nil {
			return started, failed, ctx.Err()
		}
		if len(started) >= remaining {
			s.logger.Warn("hit monthly safety limit", "cap", s.thresholds.MaxExperimentsPerMonth)
			break
		}

		exp, ok := s.optimizePage(ctx, now, opp, window)
		if !ok {
			failed++
			continue
		}
		if exp != nil {
			started = append(started, *exp)
		}
	}
	return started, failed, nil
}

// optimizePage runs one candidate end to end. Returns (nil, true) when the
// page is skipped without error (nothing generated), (nil, false) on failure.
func (s *Scheduler) optimizePage(ctx context.Context, now time.Time, opp types.PageSnapshot, window types.DateRange) (*types.Experiment, bool) {
	if !s.breaker.Allow(collabGenerator) {
		s.logger.Warn("generator circuit open, skipping page", "page", opp.PageSlug)
		return nil, false
	}
	gen, err := s.generator.GenerateElements(ctx, opp.Title, opp.Content, opp.Score.MissingElements)
	if err != nil {
		s.breaker.RecordFailure(collabGenerator)
		metrics.GenerationFailures.Add(1)
		s.logger.Error("content generation failed", "page", opp.PageSlug, "error", err)
		return nil, false
	}
	s.breaker.RecordSuccess(collabGenerator)
	if len(gen.Elements) == 0 {
		s.logger.Info("no content generated, skipping", "page", opp.PageSlug)
		return nil, true
	}

	kinds := strings.Join(gen.Kinds(), ", ")
	exp := types.Experiment{
		PageURL:  opp.PageURL,
		PageSlug: opp.PageSlug,
		PostID:   opp.PostID,
		Pre: types.MetricsSnapshot{
			PageMetrics:    opp.PageMetrics,
			StructureScore: opp.Score.TotalScore,
			Range:          window,
		},
		ChangesSummary: kinds,
		Hypothesis:     fmt.Sprintf("Adding %s to improve AI citation likelihood", kinds),
		CreatedAt:      now,
	}

	if s.dryRun {
		s.logger.Info("dry run: would optimize page", "page", opp.PageSlug, "changes", kinds)
		return &exp, true
	}

	newContent, applied := implement.Apply(opp.Content, gen.Elements)

	if !s.breaker.Allow(collabCMS) {
		s.logger.Warn("cms circuit open, skipping page", "page", opp.PageSlug)
		return nil, false
	}
	if err := s.cms.UpdateContent(ctx, opp.PostID, newContent); err != nil {
		s.breaker.RecordFailure(collabCMS)
		metrics.CMSWriteFailures.Add(1)
		s.logger.Error("cms write failed", "page", opp.PageSlug, "error", err)
		return nil, false
	}
	s.breaker.RecordSuccess(collabCMS)

	id, err := s.store.CreateExperiment(ctx, exp)
	if err != nil {
		s.logger.Error("failed to create experiment", "page", opp.PageSlug, "error", err)
		return nil, false
	}
	exp.ID = id
	exp.Status = types.ExperimentActive
	metrics.ExperimentsCreated.Add(1)

	for _, el := range applied {
		content := el.Markup
		if content == "" {
			content = el.Text
		}
		if _, err := s.store.LogChange(ctx, types.Change{
			ExperimentID:   id,
			Type:           types.ChangeInsert,
			ElementKind:    el.Kind,
			ElementContent: content,
			InsertionPoint: el.InsertionPoint,
			CreatedAt:      now,
		}); err != nil {
			s.logger.Error("failed to log change", "experimentID", id, "element", el.Kind, "error", err)
		}
	}

	s.logger.Info("experiment started", "experimentID", id, "page", opp.PageSlug, "changes", kinds)
	return &exp, true
}

// slugFromURL extracts the last path segment of a page URL.
func slugFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return strings.Trim(path.Base(pageURL), "/")
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}
