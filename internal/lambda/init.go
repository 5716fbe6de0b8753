// Package lambda provides environment-driven initialization and handlers for
// the serverless deployment, where EventBridge schedules trigger the monthly
// and weekly runs.
package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/danhoward/aio-engine/internal/alert"
	"github.com/danhoward/aio-engine/internal/generator"
	"github.com/danhoward/aio-engine/internal/orchestrator"
	"github.com/danhoward/aio-engine/internal/report"
	"github.com/danhoward/aio-engine/internal/scoring"
	"github.com/danhoward/aio-engine/internal/searchconsole"
	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/internal/store/dynamodb"
	"github.com/danhoward/aio-engine/internal/wordpress"
	"github.com/danhoward/aio-engine/pkg/types"
)

// Deps holds shared dependencies for Lambda handlers.
type Deps struct {
	Store     store.Store
	Scheduler *orchestrator.Scheduler
	Logger    *slog.Logger
}

// Init creates shared dependencies from environment variables.
// Reads: TABLE_NAME, AWS_REGION, SITE_BASE_URL, METRICS_BASE_URL,
// METRICS_TOKEN, CMS_BASE_URL, CMS_USERNAME, CMS_APP_PASSWORD,
// GENERATOR_BASE_URL, GENERATOR_MODEL, SNS_TOPIC_ARN, REPORTS_BUCKET,
// REPORTS_PREFIX, DRY_RUN
func Init(ctx context.Context) (*Deps, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	tableName := os.Getenv("TABLE_NAME")
	region := os.Getenv("AWS_REGION")
	if tableName == "" {
		return nil, fmt.Errorf("TABLE_NAME environment variable required")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION environment variable required")
	}

	siteBaseURL := os.Getenv("SITE_BASE_URL")
	if siteBaseURL == "" {
		return nil, fmt.Errorf("SITE_BASE_URL environment variable required")
	}
	u, err := url.Parse(siteBaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("SITE_BASE_URL %q is not a valid URL", siteBaseURL)
	}

	st, err := dynamodb.New(&types.DynamoDBConfig{
		TableName: tableName,
		Region:    region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating DynamoDB store: %w", err)
	}

	thresholds := types.DefaultThresholds()
	scorer, err := scoring.New(scoring.DefaultRules(u.Host), thresholds.OptimizationThreshold)
	if err != nil {
		return nil, fmt.Errorf("building scorer: %w", err)
	}

	metricsAPI, err := searchconsole.New(types.MetricsAPIConfig{
		BaseURL: os.Getenv("METRICS_BASE_URL"),
		Token:   os.Getenv("METRICS_TOKEN"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating metrics client: %w", err)
	}
	cms, err := wordpress.New(types.CMSConfig{
		BaseURL:     envOrDefault("CMS_BASE_URL", siteBaseURL),
		Username:    os.Getenv("CMS_USERNAME"),
		AppPassword: os.Getenv("CMS_APP_PASSWORD"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating CMS client: %w", err)
	}
	gen, err := generator.New(types.GeneratorConfig{
		BaseURL: os.Getenv("GENERATOR_BASE_URL"),
		Model:   os.Getenv("GENERATOR_MODEL"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator client: %w", err)
	}

	var sinks []types.SinkConfig
	if topicARN := os.Getenv("SNS_TOPIC_ARN"); topicARN != "" {
		sinks = append(sinks, types.SinkConfig{Type: types.SinkSNS, TopicARN: topicARN})
	}
	dispatcher, err := alert.NewDispatcher(sinks)
	if err != nil {
		return nil, fmt.Errorf("creating alert dispatcher: %w", err)
	}

	var reports report.Store
	if bucket := os.Getenv("REPORTS_BUCKET"); bucket != "" {
		reports, err = report.NewS3Store(bucket, os.Getenv("REPORTS_PREFIX"))
		if err != nil {
			return nil, fmt.Errorf("creating report store: %w", err)
		}
	}

	sched := orchestrator.New(orchestrator.Deps{
		Store:      st,
		Metrics:    metricsAPI,
		CMS:        cms,
		Generator:  gen,
		Scorer:     scorer,
		Reports:    reports,
		Dispatcher: dispatcher,
		Thresholds: thresholds,
		Logger:     logger,
		DryRun:     os.Getenv("DRY_RUN") == "true",
	})

	return &Deps{
		Store:     st,
		Scheduler: sched,
		Logger:    logger,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
