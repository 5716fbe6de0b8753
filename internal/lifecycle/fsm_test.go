package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from types.ExperimentStatus
		to   types.ExperimentStatus
		want bool
	}{
		{"active to completed", types.ExperimentActive, types.ExperimentCompleted, true},
		{"completed to completed", types.ExperimentCompleted, types.ExperimentCompleted, true},
		{"completed to active", types.ExperimentCompleted, types.ExperimentActive, false},
		{"active to active", types.ExperimentActive, types.ExperimentActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransition(t *testing.T) {
	require.NoError(t, Transition(types.ExperimentActive, types.ExperimentCompleted))

	err := Transition(types.ExperimentCompleted, types.ExperimentActive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(types.Experiment{}))
	assert.True(t, IsTerminal(types.Experiment{Outcome: types.OutcomeImproved}))
	assert.True(t, IsTerminal(types.Experiment{Outcome: types.OutcomeInconclusive}))
}

func TestStage(t *testing.T) {
	th := types.DefaultThresholds()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	post := func(impressions int) *types.MetricsSnapshot {
		return &types.MetricsSnapshot{PageMetrics: types.PageMetrics{Impressions: impressions}}
	}
	exp := func(ageDays int, p *types.MetricsSnapshot) types.Experiment {
		return types.Experiment{
			CreatedAt: now.AddDate(0, 0, -ageDays),
			Post:      p,
		}
	}

	tests := []struct {
		name string
		exp  types.Experiment
		want types.EvaluationStage
	}{
		{"no post metrics", exp(45, nil), types.StageAwaitingData},
		{"too young", exp(29, post(1000)), types.StageAwaitingData},
		{"exactly min days", exp(30, post(1000)), types.StageReady},
		{"below volume floor", exp(45, post(49)), types.StageInsufficientVolume},
		{"at volume floor", exp(45, post(50)), types.StageReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stage(tt.exp, now, th))
		})
	}
}

func TestReadyForEvaluation(t *testing.T) {
	th := types.DefaultThresholds()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	post := func(impressions int) *types.MetricsSnapshot {
		return &types.MetricsSnapshot{PageMetrics: types.PageMetrics{Impressions: impressions}}
	}
	exp := func(ageDays int, p *types.MetricsSnapshot) types.Experiment {
		return types.Experiment{CreatedAt: now.AddDate(0, 0, -ageDays), Post: p}
	}

	// Sufficient volume after the minimum window.
	assert.True(t, ReadyForEvaluation(exp(30, post(100)), now, th))

	// Thin data before the deadline stays pending.
	assert.False(t, ReadyForEvaluation(exp(60, post(10)), now, th))

	// Thin data past the deadline must be resolved.
	assert.True(t, ReadyForEvaluation(exp(120, post(10)), now, th))

	// No post metrics at all, even past the deadline.
	assert.False(t, ReadyForEvaluation(exp(120, nil), now, th))

	assert.True(t, PastDeadline(exp(120, nil), now, th))
	assert.False(t, PastDeadline(exp(119, nil), now, th))
}
