package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
site:
  baseUrl: https://example.com
dynamodb:
  tableName: aio-experiments
  region: us-east-1
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, types.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, 3, cfg.Metrics.DataLagDays)
	assert.Equal(t, 28, cfg.Metrics.WindowDays)
	assert.Equal(t, "reports", cfg.Reports.Dir)
}

func TestLoadOverridesThresholds(t *testing.T) {
	dir := writeConfig(t, `
site:
  baseUrl: https://example.com
dynamodb:
  tableName: aio-experiments
thresholds:
  minDaysBetweenChanges: 45
  optimizationThreshold: 5
  maxExperimentsPerMonth: 10
  improvementThreshold: 0.2
  worsenedThreshold: -0.2
  alertDeclineThreshold: -0.5
  alertSuccessThreshold: 0.5
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Thresholds.MinDaysBetweenChanges)
	assert.Equal(t, 5, cfg.Thresholds.OptimizationThreshold)
	assert.Equal(t, 0.2, cfg.Thresholds.ImprovementThreshold)
	// Untouched thresholds keep their defaults.
	assert.Equal(t, 50, cfg.Thresholds.MinPostChangeImpressions)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing site",
			content: "dynamodb:\n  tableName: t\n",
			wantErr: "site.baseUrl",
		},
		{
			name:    "missing dynamodb",
			content: "site:\n  baseUrl: https://example.com\n",
			wantErr: "dynamodb config",
		},
		{
			name: "missing table name",
			content: `
site:
  baseUrl: https://example.com
dynamodb:
  region: us-east-1
`,
			wantErr: "tableName",
		},
		{
			name: "webhook sink without url",
			content: `
site:
  baseUrl: https://example.com
dynamodb:
  tableName: t
alerts:
  - type: webhook
`,
			wantErr: "requires url",
		},
		{
			name: "positive worsened threshold",
			content: `
site:
  baseUrl: https://example.com
dynamodb:
  tableName: t
thresholds:
  worsenedThreshold: 0.1
`,
			wantErr: "worsenedThreshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.content)
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
