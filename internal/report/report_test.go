package report

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

var startedAt = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func sampleRun() types.RunReport {
	return types.RunReport{
		PagesAnalyzed:      120,
		OpportunitiesFound: 8,
		ExperimentsStarted: []types.Experiment{
			{PageSlug: "hard-conversations", ChangesSummary: "faq_schema, definition_block"},
		},
		Evaluated: []types.Experiment{
			{PageSlug: "find-your-purpose", Outcome: types.OutcomeImproved, OutcomeNotes: "Impressions: 1000 to 1300 (+30.0%)"},
		},
		Alerts: []types.Alert{
			{Kind: types.AlertDecline, PageSlug: "older-post", Message: "impressions down 28.0%"},
		},
		PagesFailed: 2,
		StartedAt:   startedAt,
	}
}

func TestBuild_Sections(t *testing.T) {
	opportunities := []types.PageSnapshot{
		{
			PageSlug:         "hard-conversations",
			PageMetrics:      types.PageMetrics{Impressions: 5000},
			Score:            types.ScoreResult{TotalScore: 2, MaxScore: 10, MissingElements: []string{"has_faq_schema", "has_table"}},
			OpportunityScore: 40000,
		},
	}
	impact := types.Impact{PageCount: 1, TotalImpressions: 5000, AvgCurrentScore: 2, AvgImprovementPotential: 8, MaxScore: 10}
	summary := types.ExperimentSummary{
		Active: 3, Completed: 5,
		Outcomes:    map[types.Outcome]int{types.OutcomeImproved: 3, types.OutcomeWorsened: 1, types.OutcomeInconclusive: 1},
		SuccessRate: 0.75,
	}

	md := Build(sampleRun(), opportunities, impact, summary)

	assert.Contains(t, md, "# AI Overview Optimization Report")
	assert.Contains(t, md, "Pages analyzed: 120")
	assert.Contains(t, md, "Pages failed (skipped): 2")
	assert.Contains(t, md, "average score 2.0 of 10")
	assert.Contains(t, md, "| hard-conversations | 5000 | 2/10 | 40000 | has_faq_schema, has_table |")
	assert.Contains(t, md, "**find-your-purpose**: improved")
	assert.Contains(t, md, "[DECLINE] older-post")
	assert.Contains(t, md, "Success rate: 75%")
	assert.NotContains(t, md, "Dry run")
}

func TestBuild_DryRunBanner(t *testing.T) {
	r := sampleRun()
	r.DryRun = true
	md := Build(r, nil, types.Impact{}, types.ExperimentSummary{})
	assert.Contains(t, md, "Dry run")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "aio-report-2025-06-01-0930.md", Filename(startedAt))
}

func TestFileStore_Save(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	path, err := fs.Save(context.Background(), "r.md", "# Report")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(data))
}

type mockS3 struct {
	inputs []*s3.PutObjectInput
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.inputs = append(m.inputs, input)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	mock := &mockS3{}
	s, err := NewS3Store("reports-bucket", "aio/", WithS3Client(mock))
	require.NoError(t, err)

	uri, err := s.Save(context.Background(), "r.md", "# Report")
	require.NoError(t, err)
	assert.Equal(t, "s3://reports-bucket/aio/r.md", uri)

	require.Len(t, mock.inputs, 1)
	assert.Equal(t, "aio/r.md", *mock.inputs[0].Key)
	assert.Equal(t, "text/markdown", *mock.inputs[0].ContentType)
}
