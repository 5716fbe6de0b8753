package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danhoward/aio-engine/pkg/types"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func experiment(ageDays int, preImpressions int, post *types.MetricsSnapshot) types.Experiment {
	return types.Experiment{
		ID:             "e1",
		PageURL:        "https://example.com/p/",
		PageSlug:       "p",
		ChangesSummary: "faq_schema, definition_block",
		Hypothesis:     "structure helps",
		Pre: types.MetricsSnapshot{
			PageMetrics: types.PageMetrics{Impressions: preImpressions, CTR: 0.05, Position: 8.0},
		},
		Post:      post,
		Status:    types.ExperimentActive,
		CreatedAt: testNow.AddDate(0, 0, -ageDays),
	}
}

func post(impressions int, ctr, position float64) *types.MetricsSnapshot {
	return &types.MetricsSnapshot{
		PageMetrics: types.PageMetrics{Impressions: impressions, CTR: ctr, Position: position},
	}
}

func TestEvaluate_OutcomeThresholds(t *testing.T) {
	e := New(types.DefaultThresholds())

	tests := []struct {
		name    string
		pre     int
		post    int
		outcome types.Outcome
		pct     float64
	}{
		{"improved at boundary", 1000, 1100, types.OutcomeImproved, 0.10},
		{"just below improvement", 1000, 1099, types.OutcomeNoChange, 0.099},
		{"worsened at boundary", 1000, 900, types.OutcomeWorsened, -0.10},
		{"just above worsened", 1000, 901, types.OutcomeNoChange, -0.099},
		{"large gain", 1000, 2000, types.OutcomeImproved, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := experiment(45, tt.pre, post(tt.post, 0.05, 8.0))
			res := e.Evaluate(exp, testNow)

			assert.Equal(t, types.StageReady, res.Stage)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.InDelta(t, tt.pct, res.ImpressionChangePct, 1e-9)
			assert.False(t, res.PositionConfounded)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestEvaluate_AwaitingData(t *testing.T) {
	e := New(types.DefaultThresholds())

	// No post metrics.
	res := e.Evaluate(experiment(45, 1000, nil), testNow)
	assert.Equal(t, types.StageAwaitingData, res.Stage)
	assert.Empty(t, res.Outcome)
	assert.Contains(t, res.Reason, "no post-change metrics")

	// Too young even with metrics.
	res = e.Evaluate(experiment(15, 1000, post(1200, 0.05, 8.0)), testNow)
	assert.Equal(t, types.StageAwaitingData, res.Stage)
	assert.Empty(t, res.Outcome)
	assert.Contains(t, res.Reason, "15 days old")
}

func TestEvaluate_InsufficientVolume(t *testing.T) {
	e := New(types.DefaultThresholds())

	// 49 impressions is below the floor of 50 regardless of percentage.
	res := e.Evaluate(experiment(45, 10, post(49, 0.05, 8.0)), testNow)
	assert.Equal(t, types.StageInsufficientVolume, res.Stage)
	assert.Equal(t, types.OutcomeInconclusive, res.Outcome)
	assert.Contains(t, res.Reason, "only 49 post-change impressions")
	assert.NotContains(t, res.Reason, "window")
}

func TestEvaluate_ForcedInconclusivePastDeadline(t *testing.T) {
	e := New(types.DefaultThresholds())

	res := e.Evaluate(experiment(121, 1000, post(30, 0.05, 8.0)), testNow)
	assert.Equal(t, types.StageInsufficientVolume, res.Stage)
	assert.Equal(t, types.OutcomeInconclusive, res.Outcome)
	assert.Contains(t, res.Reason, "window of 120 days exceeded")
}

func TestEvaluate_PositionConfound(t *testing.T) {
	e := New(types.DefaultThresholds())

	// Position improved 8.0 -> 4.5, movement of 3.5 exceeds the 2.0 threshold.
	exp := experiment(45, 1000, post(1400, 0.05, 4.5))
	res := e.Evaluate(exp, testNow)

	assert.Equal(t, types.OutcomeImproved, res.Outcome)
	assert.True(t, res.PositionConfounded)
	assert.InDelta(t, -3.5, res.PositionChange, 1e-9)
	assert.Contains(t, res.Reason, "position improved by 3.5")
	assert.Contains(t, res.Notes, "Warning: position moved")

	// Position declined.
	exp = experiment(45, 1000, post(700, 0.05, 11.0))
	res = e.Evaluate(exp, testNow)
	assert.Equal(t, types.OutcomeWorsened, res.Outcome)
	assert.True(t, res.PositionConfounded)
	assert.Contains(t, res.Reason, "position declined by 3.0")

	// Small movement is not a confound.
	exp = experiment(45, 1000, post(1200, 0.05, 6.5))
	res = e.Evaluate(exp, testNow)
	assert.False(t, res.PositionConfounded)
}

func TestEvaluate_ZeroBaseline(t *testing.T) {
	e := New(types.DefaultThresholds())

	// Zero pre, positive post counts as total gain.
	res := e.Evaluate(experiment(45, 0, post(200, 0.05, 8.0)), testNow)
	assert.Equal(t, types.OutcomeImproved, res.Outcome)
	assert.InDelta(t, 1.0, res.ImpressionChangePct, 1e-9)

	// Zero pre, zero post is no change, not a division error.
	res = e.Evaluate(experiment(45, 0, post(60, 0.0, 8.0)), testNow)
	assert.InDelta(t, 0.0, res.CTRChangePct, 1e-9)
}

func TestEvaluate_NotesContent(t *testing.T) {
	e := New(types.DefaultThresholds())

	res := e.Evaluate(experiment(45, 1000, post(1250, 0.06, 8.0)), testNow)
	assert.Contains(t, res.Notes, "Changes: faq_schema, definition_block")
	assert.Contains(t, res.Notes, "Outcome: improved")
	assert.Contains(t, res.Notes, "Impressions: 1000 to 1250 (+25.0%)")
	assert.Contains(t, res.Notes, "CTR: 5.00% to 6.00%")
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	th := types.DefaultThresholds()
	th.ImprovementThreshold = 0.50
	e := New(th)

	// +25% is improvement by default but not at a 50% bar.
	res := e.Evaluate(experiment(45, 1000, post(1250, 0.05, 8.0)), testNow)
	assert.Equal(t, types.OutcomeNoChange, res.Outcome)
}
