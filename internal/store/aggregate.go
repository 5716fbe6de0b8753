package store

import (
	"sort"

	"github.com/danhoward/aio-engine/pkg/types"
)

// AggregatePatterns groups completed experiments by changes summary and keeps
// groups where more than half improved, ordered by group size descending.
// Pure; backends feed it their full experiment listing.
func AggregatePatterns(exps []types.Experiment) []types.PatternStat {
	type group struct {
		count    int
		improved int
		order    int
	}
	groups := make(map[string]*group)
	order := 0
	for _, exp := range exps {
		if exp.Outcome == "" {
			continue
		}
		g, ok := groups[exp.ChangesSummary]
		if !ok {
			g = &group{order: order}
			order++
			groups[exp.ChangesSummary] = g
		}
		g.count++
		if exp.Outcome == types.OutcomeImproved {
			g.improved++
		}
	}

	var stats []types.PatternStat
	for summary, g := range groups {
		rate := float64(g.improved) / float64(g.count)
		if rate <= 0.5 {
			continue
		}
		stats = append(stats, types.PatternStat{
			ChangesSummary: summary,
			Count:          g.count,
			SuccessRate:    rate,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return groups[stats[i].ChangesSummary].order < groups[stats[j].ChangesSummary].order
	})
	return stats
}

// AggregateElementPerformance joins change rows with their parent experiments
// and tallies outcomes per element kind. Kinds are ordered by total count
// descending.
func AggregateElementPerformance(exps []types.Experiment, changes []types.Change) []types.ElementPerformance {
	outcomes := make(map[string]types.Outcome, len(exps))
	for _, exp := range exps {
		outcomes[exp.ID] = exp.Outcome
	}

	perf := make(map[string]*types.ElementPerformance)
	var kinds []string
	for _, c := range changes {
		outcome, ok := outcomes[c.ExperimentID]
		if !ok || outcome == "" {
			continue
		}
		p, ok := perf[c.ElementKind]
		if !ok {
			p = &types.ElementPerformance{ElementKind: c.ElementKind}
			perf[c.ElementKind] = p
			kinds = append(kinds, c.ElementKind)
		}
		p.Total++
		switch outcome {
		case types.OutcomeImproved:
			p.Improved++
		case types.OutcomeWorsened:
			p.Worsened++
		case types.OutcomeNoChange:
			p.NoChange++
		}
	}

	result := make([]types.ElementPerformance, 0, len(kinds))
	for _, kind := range kinds {
		p := perf[kind]
		if p.Total > 0 {
			p.SuccessRate = float64(p.Improved) / float64(p.Total)
		}
		result = append(result, *p)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total > result[j].Total
	})
	return result
}

// Summarize tallies experiment statuses and outcomes into one aggregate view.
func Summarize(exps []types.Experiment) types.ExperimentSummary {
	sum := types.ExperimentSummary{Outcomes: make(map[types.Outcome]int)}
	classified := 0
	for _, exp := range exps {
		switch exp.Status {
		case types.ExperimentCompleted:
			sum.Completed++
		default:
			sum.Active++
		}
		if exp.Outcome != "" {
			sum.Outcomes[exp.Outcome]++
			if exp.Outcome != types.OutcomeInconclusive {
				classified++
			}
		}
	}
	if classified > 0 {
		sum.SuccessRate = float64(sum.Outcomes[types.OutcomeImproved]) / float64(classified)
	}
	return sum
}
