// Package evaluator classifies experiment outcomes from pre/post metrics.
package evaluator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danhoward/aio-engine/internal/lifecycle"
	"github.com/danhoward/aio-engine/pkg/types"
)

// Evaluator classifies one experiment's outcome using percentage-change
// thresholds. Evaluation never fails: absent or thin data routes to
// awaiting-data or insufficient-volume, not an error.
type Evaluator struct {
	thresholds types.Thresholds
}

// New creates an Evaluator with the given thresholds.
func New(thresholds types.Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate runs the outcome state machine over one experiment. The caller
// decides persistence: an insufficient-volume result is only terminal once
// the experiment is past its evaluation deadline.
func (e *Evaluator) Evaluate(exp types.Experiment, now time.Time) types.EvaluationResult {
	th := e.thresholds

	switch lifecycle.Stage(exp, now, th) {
	case types.StageAwaitingData:
		days := lifecycle.DaysSinceCreated(exp, now)
		reason := fmt.Sprintf("experiment is %d days old, needs %d before evaluation", days, th.MinDaysForEvaluation)
		if exp.Post == nil {
			reason = "no post-change metrics available yet"
		}
		return types.EvaluationResult{
			Stage:  types.StageAwaitingData,
			Reason: reason,
		}

	case types.StageInsufficientVolume:
		reason := fmt.Sprintf("only %d post-change impressions, need %d for a reliable verdict",
			exp.Post.Impressions, th.MinPostChangeImpressions)
		if lifecycle.PastDeadline(exp, now, th) {
			// Forced terminal: too old to keep waiting, too thin to trust a
			// threshold call either way.
			reason += fmt.Sprintf("; evaluation window of %d days exceeded, closing as inconclusive",
				th.MaxDaysForEvaluation)
		}
		impressionPct := pctChange(float64(exp.Pre.Impressions), float64(exp.Post.Impressions))
		ctrPct := pctChange(exp.Pre.CTR, exp.Post.CTR)
		return types.EvaluationResult{
			Stage:               types.StageInsufficientVolume,
			Outcome:             types.OutcomeInconclusive,
			ImpressionChangePct: impressionPct,
			CTRChangePct:        ctrPct,
			Reason:              reason,
			Notes:               e.buildNotes(exp, types.OutcomeInconclusive, impressionPct, ctrPct, false),
		}
	}

	impressionPct := pctChange(float64(exp.Pre.Impressions), float64(exp.Post.Impressions))
	ctrPct := pctChange(exp.Pre.CTR, exp.Post.CTR)
	positionChange := exp.Post.Position - exp.Pre.Position
	confounded := math.Abs(positionChange) > th.PositionChangeThreshold

	var outcome types.Outcome
	switch {
	case impressionPct >= th.ImprovementThreshold:
		outcome = types.OutcomeImproved
	case impressionPct <= th.WorsenedThreshold:
		outcome = types.OutcomeWorsened
	default:
		outcome = types.OutcomeNoChange
	}

	reason := fmt.Sprintf("impressions changed %+.1f%% (%d to %d)",
		impressionPct*100, exp.Pre.Impressions, exp.Post.Impressions)
	if confounded {
		if positionChange < 0 {
			reason += fmt.Sprintf("; position improved by %.1f, which may explain the impression change independently of the structural edit", -positionChange)
		} else {
			reason += fmt.Sprintf("; position declined by %.1f, which may explain the impression change independently of the structural edit", positionChange)
		}
	}

	return types.EvaluationResult{
		Stage:               types.StageReady,
		Outcome:             outcome,
		ImpressionChangePct: impressionPct,
		CTRChangePct:        ctrPct,
		PositionChange:      positionChange,
		PositionConfounded:  confounded,
		Reason:              reason,
		Notes:               e.buildNotes(exp, outcome, impressionPct, ctrPct, confounded),
	}
}

// buildNotes renders the free-text rationale stored with the outcome.
func (e *Evaluator) buildNotes(exp types.Experiment, outcome types.Outcome, impressionPct, ctrPct float64, confounded bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Changes: %s\n", exp.ChangesSummary)
	fmt.Fprintf(&b, "Outcome: %s\n", outcome)
	if exp.Post != nil {
		fmt.Fprintf(&b, "Impressions: %d to %d (%+.1f%%)\n", exp.Pre.Impressions, exp.Post.Impressions, impressionPct*100)
		fmt.Fprintf(&b, "CTR: %.2f%% to %.2f%% (%+.1f%%)\n", exp.Pre.CTR*100, exp.Post.CTR*100, ctrPct*100)
	}
	if confounded {
		b.WriteString("Warning: position moved beyond the confound threshold; the outcome cannot be attributed to the structural change alone\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// pctChange returns (post-pre)/pre, treating a zero baseline as total gain
// when post is positive and no change otherwise.
func pctChange(pre, post float64) float64 {
	if pre == 0 {
		if post > 0 {
			return 1.0
		}
		return 0
	}
	return (post - pre) / pre
}
