// Package report renders run results as Markdown and archives them.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Build renders a full Markdown report for one run: what was analyzed, which
// experiments started, which were evaluated, and what the watcher flagged.
func Build(r types.RunReport, opportunities []types.PageSnapshot, impact types.Impact, summary types.ExperimentSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI Overview Optimization Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.StartedAt.Format("2006-01-02 15:04 MST"))
	if r.DryRun {
		b.WriteString("**Dry run: no content was written and no experiments were recorded.**\n\n")
	}

	fmt.Fprintf(&b, "## Run Summary\n\n")
	fmt.Fprintf(&b, "- Pages analyzed: %d\n", r.PagesAnalyzed)
	fmt.Fprintf(&b, "- Opportunities found: %d\n", r.OpportunitiesFound)
	fmt.Fprintf(&b, "- Experiments started: %d\n", len(r.ExperimentsStarted))
	fmt.Fprintf(&b, "- Experiments evaluated: %d\n", len(r.Evaluated))
	fmt.Fprintf(&b, "- Alerts: %d\n", len(r.Alerts))
	if r.PagesFailed > 0 {
		fmt.Fprintf(&b, "- Pages failed (skipped): %d\n", r.PagesFailed)
	}
	b.WriteString("\n")

	if len(opportunities) > 0 {
		b.WriteString("## Top Opportunities\n\n")
		fmt.Fprintf(&b, "Potential: %d pages, %d total impressions, average score %.1f of %d with %.1f points of headroom.\n\n",
			impact.PageCount, impact.TotalImpressions, impact.AvgCurrentScore, impact.MaxScore, impact.AvgImprovementPotential)
		b.WriteString("| Page | Impressions | Score | Opportunity | Missing |\n")
		b.WriteString("|------|------------:|------:|------------:|---------|\n")
		for _, o := range opportunities {
			fmt.Fprintf(&b, "| %s | %d | %d/%d | %d | %s |\n",
				o.PageSlug, o.Impressions, o.Score.TotalScore, o.Score.MaxScore,
				o.OpportunityScore, strings.Join(o.Score.MissingElements, ", "))
		}
		b.WriteString("\n")
	}

	if len(r.ExperimentsStarted) > 0 {
		b.WriteString("## Experiments Started\n\n")
		for _, exp := range r.ExperimentsStarted {
			fmt.Fprintf(&b, "- **%s**: %s\n", exp.PageSlug, exp.ChangesSummary)
		}
		b.WriteString("\n")
	}

	if len(r.Evaluated) > 0 {
		b.WriteString("## Experiments Evaluated\n\n")
		for _, exp := range r.Evaluated {
			fmt.Fprintf(&b, "- **%s**: %s\n", exp.PageSlug, exp.Outcome)
			if exp.OutcomeNotes != "" {
				fmt.Fprintf(&b, "  - %s\n", strings.ReplaceAll(exp.OutcomeNotes, "\n", "\n  - "))
			}
		}
		b.WriteString("\n")
	}

	if len(r.Alerts) > 0 {
		b.WriteString("## Alerts\n\n")
		for _, a := range r.Alerts {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", strings.ToUpper(string(a.Kind)), a.PageSlug, a.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Experiment History\n\n")
	fmt.Fprintf(&b, "- Active: %d\n", summary.Active)
	fmt.Fprintf(&b, "- Completed: %d\n", summary.Completed)
	for _, outcome := range []types.Outcome{types.OutcomeImproved, types.OutcomeWorsened, types.OutcomeNoChange, types.OutcomeInconclusive} {
		if n := summary.Outcomes[outcome]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", outcome, n)
		}
	}
	if summary.Completed > 0 {
		fmt.Fprintf(&b, "- Success rate: %.0f%%\n", summary.SuccessRate*100)
	}

	return b.String()
}

// Filename returns the canonical report name for a run.
func Filename(startedAt time.Time) string {
	return fmt.Sprintf("aio-report-%s.md", startedAt.UTC().Format("2006-01-02-1504"))
}
