// Package store defines the experiment store contract and its error taxonomy.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Store is the authoritative record of every optimization attempt. Experiments
// are append-only at creation with targeted field updates afterwards; nothing
// is ever deleted.
type Store interface {
	// Start initializes the backend (connectivity check, optional table
	// creation). Stop releases any held resources.
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Ping(ctx context.Context) error

	// CreateExperiment inserts a new experiment with status=active and no
	// outcome. Returns ValidationError if the changes summary or hypothesis
	// is empty.
	CreateExperiment(ctx context.Context, exp types.Experiment) (string, error)

	// GetExperiment fetches one experiment by id. Returns NotFoundError if
	// the id does not exist.
	GetExperiment(ctx context.Context, id string) (*types.Experiment, error)

	// GetActiveExperiments returns experiments with status=active and no
	// outcome, newest first.
	GetActiveExperiments(ctx context.Context) ([]types.Experiment, error)

	// GetAllExperiments returns every experiment, newest first.
	GetAllExperiments(ctx context.Context) ([]types.Experiment, error)

	// GetExperimentsForPage returns a page's full experiment history, newest
	// first.
	GetExperimentsForPage(ctx context.Context, pageURL string) ([]types.Experiment, error)

	// GetLastExperimentForPage returns the newest experiment for a page, or
	// nil if the page has never been experimented on.
	GetLastExperimentForPage(ctx context.Context, pageURL string) (*types.Experiment, error)

	// CountExperimentsSince counts experiments created at or after the given
	// time. Used to enforce the monthly creation cap across runs.
	CountExperimentsSince(ctx context.Context, since time.Time) (int, error)

	// UpdatePostMetrics records post-change metrics and, when outcome is
	// non-empty, the classification: status flips to completed and
	// evaluatedAt is stamped. Idempotent; repeated calls overwrite.
	UpdatePostMetrics(ctx context.Context, id string, post types.MetricsSnapshot, outcome types.Outcome, notes string) error

	// LogChange inserts a child change row. Returns NotFoundError if the
	// parent experiment does not exist.
	LogChange(ctx context.Context, change types.Change) (string, error)

	// GetChanges returns an experiment's changes in insertion order.
	GetChanges(ctx context.Context, experimentID string) ([]types.Change, error)

	// SaveScoreSnapshot appends one structure-score observation to a page's
	// score history. Never updated in place.
	SaveScoreSnapshot(ctx context.Context, snap types.ScoreSnapshot) error

	// GetScoreHistory returns a page's score snapshots, newest first.
	GetScoreHistory(ctx context.Context, pageURL string, limit int) ([]types.ScoreSnapshot, error)

	// GetSuccessfulPatterns groups completed experiments by changes summary,
	// keeping groups where more than half improved, largest groups first.
	GetSuccessfulPatterns(ctx context.Context) ([]types.PatternStat, error)

	// GetPerformanceByElement aggregates outcome counts per element kind
	// across all evaluated experiments.
	GetPerformanceByElement(ctx context.Context) ([]types.ElementPerformance, error)
}

// ValidationError reports malformed input to a store operation. Never
// coerced; the operation fails outright.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to a nonexistent experiment or page.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// ValidateNewExperiment enforces the creation invariants shared by every
// backend.
func ValidateNewExperiment(exp types.Experiment) error {
	if exp.PageURL == "" {
		return &ValidationError{Field: "pageUrl", Reason: "must not be empty"}
	}
	if exp.ChangesSummary == "" {
		return &ValidationError{Field: "changesSummary", Reason: "must not be empty"}
	}
	if exp.Hypothesis == "" {
		return &ValidationError{Field: "hypothesis", Reason: "must not be empty"}
	}
	return nil
}
