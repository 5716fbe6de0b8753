package lambda

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_MissingTableName(t *testing.T) {
	t.Setenv("TABLE_NAME", "")
	t.Setenv("AWS_REGION", "us-east-1")

	_, err := Init(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TABLE_NAME")
}

func TestInit_MissingRegion(t *testing.T) {
	t.Setenv("TABLE_NAME", "aio-test")
	t.Setenv("AWS_REGION", "")

	_, err := Init(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_REGION")
}

func TestInit_MissingSiteBaseURL(t *testing.T) {
	t.Setenv("TABLE_NAME", "aio-test")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("SITE_BASE_URL", "")

	_, err := Init(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SITE_BASE_URL")
}

func TestInit_BadSiteBaseURL(t *testing.T) {
	t.Setenv("TABLE_NAME", "aio-test")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("SITE_BASE_URL", "example.com")

	_, err := Init(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SITE_BASE_URL")
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_KEY", "custom")
	assert.Equal(t, "custom", envOrDefault("TEST_KEY", "fallback"))

	t.Setenv("TEST_KEY", "")
	assert.Equal(t, "fallback", envOrDefault("TEST_KEY", "fallback"))
}
