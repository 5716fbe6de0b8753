// Package ranking orders scored pages by optimization opportunity and gates
// re-optimization behind a cooldown window.
package ranking

import (
	"math"
	"sort"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Ranker filters and orders scored pages into a capped candidate list.
type Ranker struct {
	thresholds types.Thresholds
}

// New creates a Ranker.
func New(thresholds types.Thresholds) *Ranker {
	return &Ranker{thresholds: thresholds}
}

// OpportunityScore is impressions times missing structure points. A priority
// metric, not a probability.
func OpportunityScore(impressions int, score types.ScoreResult) int {
	return impressions * (score.MaxScore - score.TotalScore)
}

// Rank filters pages to those needing optimization, meeting the minimum
// opportunity score, and eligible for change, then sorts descending by
// opportunity score and truncates to maxResults. The sort is stable: ties
// keep input order, so identical inputs always produce identical output.
// maxResults <= 0 means the configured monthly cap.
func (r *Ranker) Rank(pages []types.PageSnapshot, maxResults int) []types.PageSnapshot {
	if maxResults <= 0 {
		maxResults = r.thresholds.MaxExperimentsPerMonth
	}

	var opportunities []types.PageSnapshot
	for _, p := range pages {
		if !p.Score.NeedsOptimization {
			continue
		}
		if p.OpportunityScore < r.thresholds.MinOpportunityScore {
			continue
		}
		if !p.Eligible {
			continue
		}
		opportunities = append(opportunities, p)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].OpportunityScore > opportunities[j].OpportunityScore
	})

	if len(opportunities) > maxResults {
		opportunities = opportunities[:maxResults]
	}
	return opportunities
}

// CalculateImpact aggregates the potential of a candidate list. Pure
// aggregate: it does no filtering of its own.
func CalculateImpact(opportunities []types.PageSnapshot) types.Impact {
	impact := types.Impact{PageCount: len(opportunities)}
	if len(opportunities) == 0 {
		return impact
	}

	scoreSum, maxScore := 0, 0
	for _, o := range opportunities {
		impact.TotalImpressions += o.Impressions
		impact.TotalOpportunityScore += o.OpportunityScore
		scoreSum += o.Score.TotalScore
		maxScore = o.Score.MaxScore
	}

	avg := float64(scoreSum) / float64(len(opportunities))
	impact.AvgCurrentScore = round1(avg)
	impact.AvgImprovementPotential = round1(float64(maxScore) - avg)
	impact.MaxScore = maxScore
	return impact
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
