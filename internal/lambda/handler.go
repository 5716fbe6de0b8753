package lambda

import (
	"context"
	"fmt"
	"time"

	"github.com/danhoward/aio-engine/internal/orchestrator"
)

// RunRequest is the input to the scheduled-run handler. The EventBridge
// schedule target injects the action in its payload.
type RunRequest struct {
	Action string `json:"action"` // "monthly", "weekly", "analyze"
}

// RunResponse summarizes what the run did.
type RunResponse struct {
	Action             string `json:"action"`
	PagesAnalyzed      int    `json:"pagesAnalyzed"`
	OpportunitiesFound int    `json:"opportunitiesFound"`
	ExperimentsStarted int    `json:"experimentsStarted"`
	Evaluated          int    `json:"evaluated"`
	Alerts             int    `json:"alerts"`
	PagesFailed        int    `json:"pagesFailed"`
	DryRun             bool   `json:"dryRun"`
	ReportPath         string `json:"reportPath,omitempty"`
}

// HandleRun executes one scheduled run.
func (d *Deps) HandleRun(ctx context.Context, req RunRequest) (RunResponse, error) {
	now := time.Now().UTC()
	d.Logger.Info("scheduled run starting", "action", req.Action)

	var (
		res *orchestrator.RunResult
		err error
	)
	switch req.Action {
	case "monthly":
		res, err = d.Scheduler.RunMonthly(ctx, now)
	case "weekly":
		res, err = d.Scheduler.RunWeekly(ctx, now)
	case "analyze":
		res, err = d.Scheduler.RunAnalysis(ctx, now)
	default:
		return RunResponse{}, fmt.Errorf("unknown action %q", req.Action)
	}
	if err != nil {
		d.Logger.Error("scheduled run failed", "action", req.Action, "error", err)
		return RunResponse{}, err
	}

	resp := RunResponse{
		Action:             req.Action,
		PagesAnalyzed:      res.Report.PagesAnalyzed,
		OpportunitiesFound: res.Report.OpportunitiesFound,
		ExperimentsStarted: len(res.Report.ExperimentsStarted),
		Evaluated:          len(res.Report.Evaluated),
		Alerts:             len(res.Report.Alerts),
		PagesFailed:        res.Report.PagesFailed,
		DryRun:             res.Report.DryRun,
		ReportPath:         res.ReportPath,
	}
	d.Logger.Info("scheduled run finished",
		"action", req.Action,
		"analyzed", resp.PagesAnalyzed,
		"started", resp.ExperimentsStarted,
		"evaluated", resp.Evaluated,
		"failed", resp.PagesFailed)
	return resp, nil
}
