// Package config handles loading and validation of aio.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/danhoward/aio-engine/pkg/types"
)

// FileName is the project configuration file looked up in the working directory.
const FileName = "aio.yaml"

// Load reads and parses aio.yaml from the given directory. Thresholds missing
// from the file take their defaults; zero is never a silently valid threshold.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &types.ProjectConfig{Thresholds: types.DefaultThresholds()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *types.ProjectConfig) {
	if cfg.Metrics.DataLagDays == 0 {
		cfg.Metrics.DataLagDays = 3
	}
	if cfg.Metrics.WindowDays == 0 {
		cfg.Metrics.WindowDays = 28
	}
	if cfg.Reports.Dir == "" && cfg.Reports.S3Bucket == "" {
		cfg.Reports.Dir = "reports"
	}
}

func validate(cfg *types.ProjectConfig) error {
	if cfg.Site.BaseURL == "" {
		return fmt.Errorf("site.baseUrl is required")
	}
	if cfg.DynamoDB == nil {
		return fmt.Errorf("dynamodb config is required")
	}
	if cfg.DynamoDB.TableName == "" {
		return fmt.Errorf("dynamodb.tableName is required")
	}
	t := cfg.Thresholds
	if t.OptimizationThreshold <= 0 {
		return fmt.Errorf("thresholds.optimizationThreshold must be positive")
	}
	if t.MaxExperimentsPerMonth <= 0 {
		return fmt.Errorf("thresholds.maxExperimentsPerMonth must be positive")
	}
	if t.MinDaysForEvaluation > t.MaxDaysForEvaluation {
		return fmt.Errorf("thresholds.minDaysForEvaluation exceeds maxDaysForEvaluation")
	}
	if t.ImprovementThreshold <= 0 {
		return fmt.Errorf("thresholds.improvementThreshold must be positive")
	}
	if t.WorsenedThreshold >= 0 {
		return fmt.Errorf("thresholds.worsenedThreshold must be negative")
	}
	if t.AlertDeclineThreshold >= 0 {
		return fmt.Errorf("thresholds.alertDeclineThreshold must be negative")
	}
	if t.AlertSuccessThreshold <= 0 {
		return fmt.Errorf("thresholds.alertSuccessThreshold must be positive")
	}
	for _, s := range cfg.Alerts {
		switch s.Type {
		case types.SinkConsole:
		case types.SinkFile:
			if s.Path == "" {
				return fmt.Errorf("alert sink %q requires path", s.Type)
			}
		case types.SinkWebhook:
			if s.URL == "" {
				return fmt.Errorf("alert sink %q requires url", s.Type)
			}
		case types.SinkSNS:
			if s.TopicARN == "" {
				return fmt.Errorf("alert sink %q requires topicArn", s.Type)
			}
		default:
			return fmt.Errorf("unknown alert sink type %q", s.Type)
		}
	}
	return nil
}
