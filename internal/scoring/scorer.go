// Package scoring evaluates page content against a weighted structural rule set.
package scoring

import (
	"fmt"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Scorer scores content against a fixed ordered rule set. Pure: no I/O, no
// side effects, deterministic given the two content strings.
type Scorer struct {
	rules     []Rule
	maxScore  int
	threshold int
}

// New creates a Scorer. threshold is the score below which a page needs
// optimization.
func New(rules []Rule, threshold int) (*Scorer, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one rule is required")
	}
	max := 0
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name == "" || r.Detect == nil || r.Points <= 0 {
			return nil, fmt.Errorf("rule %q is incomplete", r.Name)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
		max += r.Points
	}
	return &Scorer{rules: rules, maxScore: max, threshold: threshold}, nil
}

// MaxScore returns the sum of all rule weights.
func (s *Scorer) MaxScore() int { return s.maxScore }

// Rules returns the rule set in declaration order.
func (s *Scorer) Rules() []Rule { return s.rules }

// Score evaluates the rendered content plus an optional raw (unrendered)
// representation of the same page. The two are concatenated so a marker
// present in either form counts: rendering pipelines can hide markup that is
// still present in the source form.
func (s *Scorer) Score(content, rawContent string) types.ScoreResult {
	full := content
	if rawContent != "" {
		full = content + " " + rawContent
	}

	result := types.ScoreResult{
		MaxScore: s.maxScore,
		Elements: make(map[string]types.ElementDetail, len(s.rules)),
	}

	for _, rule := range s.rules {
		if rule.Detect(full) {
			result.Elements[rule.Name] = types.ElementDetail{
				Present:     true,
				Points:      rule.Points,
				Description: rule.Description,
			}
			result.TotalScore += rule.Points
			continue
		}
		result.Elements[rule.Name] = types.ElementDetail{
			Present:     false,
			Points:      rule.Points,
			Description: rule.Description,
		}
		result.MissingElements = append(result.MissingElements, rule.Name)
	}

	result.NeedsOptimization = result.TotalScore < s.threshold
	return result
}

// Snapshot converts a score result into an append-only history record.
func Snapshot(pageURL, pageSlug, date string, result types.ScoreResult) types.ScoreSnapshot {
	elements := make(map[string]bool, len(result.Elements))
	for name, detail := range result.Elements {
		elements[name] = detail.Present
	}
	return types.ScoreSnapshot{
		PageURL:    pageURL,
		PageSlug:   pageSlug,
		Date:       date,
		TotalScore: result.TotalScore,
		Elements:   elements,
	}
}
