package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

func exp(id, summary string, outcome types.Outcome) types.Experiment {
	status := types.ExperimentActive
	if outcome != "" {
		status = types.ExperimentCompleted
	}
	return types.Experiment{ID: id, ChangesSummary: summary, Outcome: outcome, Status: status}
}

func TestAggregatePatterns(t *testing.T) {
	exps := []types.Experiment{
		exp("1", "faq_schema, definition", types.OutcomeImproved),
		exp("2", "faq_schema, definition", types.OutcomeImproved),
		exp("3", "faq_schema, definition", types.OutcomeWorsened),
		exp("4", "table", types.OutcomeNoChange),
		exp("5", "table", types.OutcomeNoChange),
		exp("6", "citations", types.OutcomeImproved),
		exp("7", "lists", ""), // unevaluated, excluded
	}

	stats := AggregatePatterns(exps)
	require.Len(t, stats, 2)

	// Largest qualifying group first.
	assert.Equal(t, "faq_schema, definition", stats[0].ChangesSummary)
	assert.Equal(t, 3, stats[0].Count)
	assert.InDelta(t, 2.0/3.0, stats[0].SuccessRate, 1e-9)

	assert.Equal(t, "citations", stats[1].ChangesSummary)
	assert.Equal(t, 1, stats[1].Count)

	// "table" has 0% improved and must not appear.
	for _, s := range stats {
		assert.NotEqual(t, "table", s.ChangesSummary)
	}
}

func TestAggregatePatterns_ExactlyHalfExcluded(t *testing.T) {
	exps := []types.Experiment{
		exp("1", "faq", types.OutcomeImproved),
		exp("2", "faq", types.OutcomeWorsened),
	}
	assert.Empty(t, AggregatePatterns(exps))
}

func TestAggregateElementPerformance(t *testing.T) {
	exps := []types.Experiment{
		exp("e1", "a", types.OutcomeImproved),
		exp("e2", "b", types.OutcomeWorsened),
		exp("e3", "c", types.OutcomeNoChange),
		exp("e4", "d", ""), // unevaluated
	}
	changes := []types.Change{
		{ExperimentID: "e1", ElementKind: "faq_schema"},
		{ExperimentID: "e1", ElementKind: "definition_block"},
		{ExperimentID: "e2", ElementKind: "faq_schema"},
		{ExperimentID: "e3", ElementKind: "faq_schema"},
		{ExperimentID: "e4", ElementKind: "table"},      // parent unevaluated
		{ExperimentID: "ghost", ElementKind: "orphans"}, // no parent
	}

	perf := AggregateElementPerformance(exps, changes)
	require.Len(t, perf, 2)

	assert.Equal(t, "faq_schema", perf[0].ElementKind)
	assert.Equal(t, 3, perf[0].Total)
	assert.Equal(t, 1, perf[0].Improved)
	assert.Equal(t, 1, perf[0].Worsened)
	assert.Equal(t, 1, perf[0].NoChange)
	assert.InDelta(t, 1.0/3.0, perf[0].SuccessRate, 1e-9)

	assert.Equal(t, "definition_block", perf[1].ElementKind)
	assert.Equal(t, 1, perf[1].Total)
	assert.InDelta(t, 1.0, perf[1].SuccessRate, 1e-9)
}

func TestSummarize(t *testing.T) {
	exps := []types.Experiment{
		exp("1", "a", types.OutcomeImproved),
		exp("2", "b", types.OutcomeImproved),
		exp("3", "c", types.OutcomeWorsened),
		exp("4", "d", types.OutcomeInconclusive),
		exp("5", "e", ""),
		exp("6", "f", ""),
	}

	sum := Summarize(exps)
	assert.Equal(t, 2, sum.Active)
	assert.Equal(t, 4, sum.Completed)
	assert.Equal(t, 2, sum.Outcomes[types.OutcomeImproved])
	assert.Equal(t, 1, sum.Outcomes[types.OutcomeWorsened])
	assert.Equal(t, 1, sum.Outcomes[types.OutcomeInconclusive])
	// Inconclusive excluded from the denominator.
	assert.InDelta(t, 2.0/3.0, sum.SuccessRate, 1e-9)
}

func TestValidateNewExperiment(t *testing.T) {
	valid := types.Experiment{PageURL: "https://x/p", ChangesSummary: "faq", Hypothesis: "h"}
	require.NoError(t, ValidateNewExperiment(valid))

	tests := []struct {
		name  string
		mut   func(*types.Experiment)
		field string
	}{
		{"empty page url", func(e *types.Experiment) { e.PageURL = "" }, "pageUrl"},
		{"empty changes summary", func(e *types.Experiment) { e.ChangesSummary = "" }, "changesSummary"},
		{"empty hypothesis", func(e *types.Experiment) { e.Hypothesis = "" }, "hypothesis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mut(&e)
			err := ValidateNewExperiment(e)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
