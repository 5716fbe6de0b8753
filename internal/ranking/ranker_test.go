package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danhoward/aio-engine/pkg/types"
)

func page(slug string, impressions, score, maxScore int, eligible bool) types.PageSnapshot {
	p := types.PageSnapshot{
		PageURL:  "https://example.com/" + slug + "/",
		PageSlug: slug,
		Score: types.ScoreResult{
			TotalScore:        score,
			MaxScore:          maxScore,
			NeedsOptimization: score < 3,
		},
		Eligible: eligible,
	}
	p.Impressions = impressions
	p.OpportunityScore = OpportunityScore(impressions, p.Score)
	return p
}

func TestOpportunityScore(t *testing.T) {
	score := types.ScoreResult{TotalScore: 2, MaxScore: 10}
	assert.Equal(t, 8000, OpportunityScore(1000, score))
	assert.Equal(t, 0, OpportunityScore(0, score))

	// Monotone in impressions and in missing points.
	assert.Greater(t, OpportunityScore(2000, score), OpportunityScore(1000, score))
	lower := types.ScoreResult{TotalScore: 5, MaxScore: 10}
	assert.Greater(t, OpportunityScore(1000, score), OpportunityScore(1000, lower))
}

func TestRankFilters(t *testing.T) {
	r := New(types.DefaultThresholds())

	pages := []types.PageSnapshot{
		page("good-score", 1000, 8, 10, true),   // no optimization needed
		page("low-opportunity", 10, 1, 10, true), // 90 < 500
		page("ineligible", 1000, 1, 10, false),
		page("candidate", 1000, 1, 10, true),
	}

	ranked := r.Rank(pages, 0)
	assert.Len(t, ranked, 1)
	assert.Equal(t, "candidate", ranked[0].PageSlug)
}

func TestRankOrderingAndStability(t *testing.T) {
	r := New(types.DefaultThresholds())

	pages := []types.PageSnapshot{
		page("middle", 800, 1, 10, true),
		page("tied-a", 500, 0, 10, true),
		page("top", 2000, 2, 10, true),
		page("tied-b", 500, 0, 10, true),
	}

	first := r.Rank(pages, 0)
	assert.Equal(t, []string{"top", "middle", "tied-a", "tied-b"},
		slugs(first))

	// Identical input yields identical order.
	second := r.Rank(pages, 0)
	assert.Equal(t, slugs(first), slugs(second))
}

func TestRankTruncatesToCap(t *testing.T) {
	th := types.DefaultThresholds()
	th.MaxExperimentsPerMonth = 3
	r := New(th)

	var pages []types.PageSnapshot
	for i := 0; i < 10; i++ {
		pages = append(pages, page(string(rune('a'+i)), 1000+i, 1, 10, true))
	}

	assert.Len(t, r.Rank(pages, 0), 3)
	assert.Len(t, r.Rank(pages, 5), 5)
	assert.Len(t, r.Rank(pages, 100), 10)
}

func TestCalculateImpact(t *testing.T) {
	opportunities := []types.PageSnapshot{
		page("a", 1000, 2, 10, true),
		page("b", 500, 1, 10, true),
	}

	impact := CalculateImpact(opportunities)
	assert.Equal(t, 2, impact.PageCount)
	assert.Equal(t, 1500, impact.TotalImpressions)
	assert.Equal(t, 1000*8+500*9, impact.TotalOpportunityScore)
	assert.Equal(t, 1.5, impact.AvgCurrentScore)
	assert.Equal(t, 8.5, impact.AvgImprovementPotential)
	assert.Equal(t, 10, impact.MaxScore)
}

func TestCalculateImpactEmpty(t *testing.T) {
	impact := CalculateImpact(nil)
	assert.Equal(t, types.Impact{}, impact)
}

func TestGateEligibility(t *testing.T) {
	g := NewGate(30)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, g.IsEligible(nil, now), "no prior experiment")

	at29 := now.AddDate(0, 0, -29)
	assert.False(t, g.IsEligible(&at29, now), "29 days is inside the cooldown")

	at30 := now.AddDate(0, 0, -30)
	assert.True(t, g.IsEligible(&at30, now), "30 days boundary is inclusive")

	at90 := now.AddDate(0, 0, -90)
	assert.True(t, g.IsEligible(&at90, now))
}

func slugs(pages []types.PageSnapshot) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.PageSlug
	}
	return out
}
