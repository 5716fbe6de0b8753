package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

var scanNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func activeExp(id string, pre, post int) types.Experiment {
	exp := types.Experiment{
		ID:       id,
		PageSlug: id,
		Pre: types.MetricsSnapshot{
			PageMetrics: types.PageMetrics{Impressions: pre},
		},
		Status:    types.ExperimentActive,
		CreatedAt: scanNow.AddDate(0, 0, -14),
	}
	if post >= 0 {
		exp.Post = &types.MetricsSnapshot{
			PageMetrics: types.PageMetrics{Impressions: post},
		}
	}
	return exp
}

func TestScan_DeclineThreshold(t *testing.T) {
	w := NewWatcher(types.DefaultThresholds())

	tests := []struct {
		name  string
		pre   int
		post  int
		kind  types.AlertKind
		fires bool
	}{
		{"30% drop fires", 200, 140, types.AlertDecline, true},
		{"25% drop fires at boundary", 200, 150, types.AlertDecline, true},
		{"20% drop does not fire", 200, 160, "", false},
		{"30% gain fires at boundary", 200, 260, types.AlertSuccess, true},
		{"40% gain fires", 200, 280, types.AlertSuccess, true},
		{"29% gain does not fire", 200, 258, "", false},
		{"flat does not fire", 200, 200, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := w.Scan([]types.Experiment{activeExp("e", tt.pre, tt.post)}, scanNow)
			if !tt.fires {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.kind, alerts[0].Kind)
			assert.Equal(t, "e", alerts[0].ExperimentID)
			assert.NotEmpty(t, alerts[0].Message)
		})
	}
}

func TestScan_SkipsIneligibleExperiments(t *testing.T) {
	w := NewWatcher(types.DefaultThresholds())

	noPost := activeExp("no-post", 200, -1)

	evaluated := activeExp("evaluated", 200, 100)
	evaluated.Outcome = types.OutcomeWorsened
	evaluated.Status = types.ExperimentCompleted

	zeroBaseline := activeExp("zero-pre", 0, 500)

	alerts := w.Scan([]types.Experiment{noPost, evaluated, zeroBaseline}, scanNow)
	assert.Empty(t, alerts)
}

func TestScan_LevelsAndChangePct(t *testing.T) {
	w := NewWatcher(types.DefaultThresholds())

	alerts := w.Scan([]types.Experiment{
		activeExp("down", 400, 200),
		activeExp("up", 100, 150),
	}, scanNow)
	require.Len(t, alerts, 2)

	assert.Equal(t, types.AlertLevelWarning, alerts[0].Level)
	assert.InDelta(t, -0.5, alerts[0].ChangePct, 1e-9)
	assert.Contains(t, alerts[0].Message, "consider reverting")

	assert.Equal(t, types.AlertLevelInfo, alerts[1].Level)
	assert.InDelta(t, 0.5, alerts[1].ChangePct, 1e-9)
	assert.Equal(t, scanNow, alerts[1].Timestamp)
}

func TestScan_CustomThresholds(t *testing.T) {
	th := types.DefaultThresholds()
	th.AlertDeclineThreshold = -0.50
	w := NewWatcher(th)

	// A 30% drop is not alarming at a 50% bar.
	alerts := w.Scan([]types.Experiment{activeExp("e", 200, 140)}, scanNow)
	assert.Empty(t, alerts)
}
