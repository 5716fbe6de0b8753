// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	PagesAnalyzed        = expvar.NewInt("pages_analyzed")
	PagesSkipped         = expvar.NewInt("pages_skipped")
	OpportunitiesFound   = expvar.NewInt("opportunities_found")
	ExperimentsCreated   = expvar.NewInt("experiments_created")
	ExperimentsEvaluated = expvar.NewInt("experiments_evaluated")
	EvaluationErrors     = expvar.NewInt("evaluation_errors")
	AlertsDispatched     = expvar.NewInt("alerts_dispatched")
	GenerationFailures   = expvar.NewInt("generation_failures")
	CMSWriteFailures     = expvar.NewInt("cms_write_failures")
	MetricsFetchFailures = expvar.NewInt("metrics_fetch_failures")
	ScoreSnapshotsSaved  = expvar.NewInt("score_snapshots_saved")
	ReportsWritten       = expvar.NewInt("reports_written")
)
