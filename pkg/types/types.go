package types

import "time"

// PageMetrics is one page's search performance over a date range.
type PageMetrics struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// DateRange is an inclusive date window, formatted "2006-01-02".
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MetricsSnapshot freezes a page's metrics and structure score at a point in
// the experiment lifecycle (pre at creation, post at measurement).
type MetricsSnapshot struct {
	PageMetrics
	StructureScore int       `json:"structureScore"`
	Range          DateRange `json:"range"`
}

// PageRow is one row of the metrics provider's all-pages listing.
type PageRow struct {
	PageURL string `json:"pageUrl"`
	PageMetrics
}

// ElementDetail records one rule's result within a score.
type ElementDetail struct {
	Present     bool   `json:"present"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// ScoreResult is the outcome of scoring a page's content against the rule set.
type ScoreResult struct {
	TotalScore        int                      `json:"totalScore"`
	MaxScore          int                      `json:"maxScore"`
	Elements          map[string]ElementDetail `json:"elements"`
	MissingElements   []string                 `json:"missingElements"`
	NeedsOptimization bool                     `json:"needsOptimization"`
}

// PageSnapshot is a scored page combined with its search metrics and
// eligibility. Transient: produced during analysis, never persisted as-is.
type PageSnapshot struct {
	PageURL  string `json:"pageUrl"`
	PageSlug string `json:"pageSlug"`
	PostID   int64  `json:"postId"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	PageMetrics
	Score                   ScoreResult `json:"score"`
	OpportunityScore        int         `json:"opportunityScore"`
	Eligible                bool        `json:"eligible"`
	DaysSinceLastExperiment *int        `json:"daysSinceLastExperiment,omitempty"`
}

// Impact aggregates the potential of a set of opportunities.
type Impact struct {
	PageCount               int     `json:"pageCount"`
	TotalImpressions        int     `json:"totalImpressions"`
	TotalOpportunityScore   int     `json:"totalOpportunityScore"`
	AvgCurrentScore         float64 `json:"avgCurrentScore"`
	AvgImprovementPotential float64 `json:"avgImprovementPotential"`
	MaxScore                int     `json:"maxScore"`
}

// Experiment is one tracked attempt to add structural elements to one page.
// It is the permanent audit trail: created at optimization time with frozen
// pre-metrics, updated when post-metrics arrive and when an outcome is
// classified, never deleted.
type Experiment struct {
	ID             string           `json:"id"`
	PageURL        string           `json:"pageUrl"`
	PageSlug       string           `json:"pageSlug"`
	PostID         int64            `json:"postId"`
	Pre            MetricsSnapshot  `json:"pre"`
	ChangesSummary string           `json:"changesSummary"`
	Hypothesis     string           `json:"hypothesis"`
	Post           *MetricsSnapshot `json:"post,omitempty"`
	Outcome        Outcome          `json:"outcome,omitempty"`
	OutcomeNotes   string           `json:"outcomeNotes,omitempty"`
	Status         ExperimentStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	EvaluatedAt    *time.Time       `json:"evaluatedAt,omitempty"`
}

// Change is one element applied within an experiment. Owned exclusively by
// its parent experiment.
type Change struct {
	ID             string     `json:"id"`
	ExperimentID   string     `json:"experimentId"`
	Type           ChangeType `json:"type"`
	ElementKind    string     `json:"elementKind"`
	ElementContent string     `json:"elementContent"`
	InsertionPoint string     `json:"insertionPoint,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ScoreSnapshot is an append-only historical record of one page's structure
// score on a given date.
type ScoreSnapshot struct {
	PageURL    string          `json:"pageUrl"`
	PageSlug   string          `json:"pageSlug"`
	Date       string          `json:"date"`
	TotalScore int             `json:"totalScore"`
	Elements   map[string]bool `json:"elements"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// EvaluationResult is the outcome of running the evaluator over one
// experiment. Stage says how far evaluation got; Outcome is set only when the
// stage produced a classification.
type EvaluationResult struct {
	Stage               EvaluationStage `json:"stage"`
	Outcome             Outcome         `json:"outcome,omitempty"`
	ImpressionChangePct float64         `json:"impressionChangePct"`
	CTRChangePct        float64         `json:"ctrChangePct"`
	PositionChange      float64         `json:"positionChange"`
	PositionConfounded  bool            `json:"positionConfounded"`
	Reason              string          `json:"reason"`
	Notes               string          `json:"notes,omitempty"`
}

// Alert is an early-warning signal about an active experiment. Not persisted;
// recomputed on every scan.
type Alert struct {
	Kind         AlertKind  `json:"kind"`
	Level        AlertLevel `json:"level"`
	ExperimentID string     `json:"experimentId"`
	PageSlug     string     `json:"pageSlug"`
	ChangePct    float64    `json:"changePct"`
	Message      string     `json:"message"`
	Timestamp    time.Time  `json:"timestamp"`
}

// GeneratedElement is one structural element produced by the content
// generator, ready for insertion.
type GeneratedElement struct {
	Kind           string `json:"kind"`
	Text           string `json:"text"`
	Markup         string `json:"markup"`
	InsertionPoint string `json:"insertionPoint,omitempty"`
}

// GenerationResult holds the elements the generator produced. The generator
// may omit elements it failed to produce; each element is independently
// present or absent.
type GenerationResult struct {
	Elements []GeneratedElement `json:"elements"`
}

// Kinds returns the element kinds present in the result, in order.
func (g GenerationResult) Kinds() []string {
	kinds := make([]string, 0, len(g.Elements))
	for _, e := range g.Elements {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Page is the CMS representation of a post.
type Page struct {
	ID         int64  `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	RawContent string `json:"rawContent,omitempty"`
}

// PatternStat is one group of experiments sharing a changes summary, used for
// pattern mining over past results.
type PatternStat struct {
	ChangesSummary string  `json:"changesSummary"`
	Count          int     `json:"count"`
	SuccessRate    float64 `json:"successRate"`
}

// ElementPerformance aggregates outcomes per element kind across all
// evaluated experiments.
type ElementPerformance struct {
	ElementKind string  `json:"elementKind"`
	Total       int     `json:"total"`
	Improved    int     `json:"improved"`
	Worsened    int     `json:"worsened"`
	NoChange    int     `json:"noChange"`
	SuccessRate float64 `json:"successRate"`
}

// ExperimentSummary is the aggregate view of all experiments.
type ExperimentSummary struct {
	Active      int             `json:"active"`
	Completed   int             `json:"completed"`
	Outcomes    map[Outcome]int `json:"outcomes"`
	SuccessRate float64         `json:"successRate"`
}

// RunReport tallies what one orchestrated run did, for reporting and logging.
type RunReport struct {
	PagesAnalyzed      int          `json:"pagesAnalyzed"`
	OpportunitiesFound int          `json:"opportunitiesFound"`
	ExperimentsStarted []Experiment `json:"experimentsStarted"`
	Evaluated          []Experiment `json:"evaluated"`
	Alerts             []Alert      `json:"alerts"`
	PagesFailed        int          `json:"pagesFailed"`
	DryRun             bool         `json:"dryRun"`
	StartedAt          time.Time    `json:"startedAt"`
}
