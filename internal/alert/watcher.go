package alert

import (
	"fmt"
	"time"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Watcher scans active experiments for early significant deviations. Its
// thresholds are independent of the evaluator's outcome thresholds: they are
// tuned for early warning, not final judgment.
type Watcher struct {
	thresholds types.Thresholds
}

// NewWatcher creates a Watcher with the given thresholds.
func NewWatcher(thresholds types.Thresholds) *Watcher {
	return &Watcher{thresholds: thresholds}
}

// Scan recomputes alerts for the given experiments. Experiments without post
// metrics or with a recorded outcome are skipped. Alerts are transient;
// nothing here is persisted.
func (w *Watcher) Scan(exps []types.Experiment, now time.Time) []types.Alert {
	var alerts []types.Alert
	for _, exp := range exps {
		if a := w.check(exp, now); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

func (w *Watcher) check(exp types.Experiment, now time.Time) *types.Alert {
	if exp.Status != types.ExperimentActive || exp.Outcome != "" || exp.Post == nil {
		return nil
	}
	if exp.Pre.Impressions == 0 {
		return nil
	}

	changePct := float64(exp.Post.Impressions-exp.Pre.Impressions) / float64(exp.Pre.Impressions)

	switch {
	case changePct <= w.thresholds.AlertDeclineThreshold:
		return &types.Alert{
			Kind:         types.AlertDecline,
			Level:        types.AlertLevelWarning,
			ExperimentID: exp.ID,
			PageSlug:     exp.PageSlug,
			ChangePct:    changePct,
			Message: fmt.Sprintf("impressions down %.1f%% since changes on %s (%d to %d), consider reverting",
				-changePct*100, exp.CreatedAt.Format("2006-01-02"), exp.Pre.Impressions, exp.Post.Impressions),
			Timestamp: now,
		}
	case changePct >= w.thresholds.AlertSuccessThreshold:
		return &types.Alert{
			Kind:         types.AlertSuccess,
			Level:        types.AlertLevelInfo,
			ExperimentID: exp.ID,
			PageSlug:     exp.PageSlug,
			ChangePct:    changePct,
			Message: fmt.Sprintf("impressions up %.1f%% since changes on %s (%d to %d)",
				changePct*100, exp.CreatedAt.Format("2006-01-02"), exp.Pre.Impressions, exp.Post.Impressions),
			Timestamp: now,
		}
	}
	return nil
}
