// Package lifecycle implements the experiment state machine.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Transition table: from -> allowed tos. Completed experiments may return to
// active only through re-evaluation overwriting an outcome, which is modeled
// as completed -> completed.
var validTransitions = map[types.ExperimentStatus][]types.ExperimentStatus{
	types.ExperimentActive:    {types.ExperimentCompleted},
	types.ExperimentCompleted: {types.ExperimentCompleted},
}

// CanTransition checks if moving between experiment statuses is valid.
func CanTransition(from, to types.ExperimentStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates a status change, returning an error if invalid.
func Transition(from, to types.ExperimentStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal reports whether an experiment has a recorded outcome.
func IsTerminal(exp types.Experiment) bool {
	return exp.Outcome != ""
}

// DaysSinceCreated returns whole days since the experiment was created.
func DaysSinceCreated(exp types.Experiment, now time.Time) int {
	return int(now.Sub(exp.CreatedAt).Hours() / 24)
}

// Stage places an experiment in its evaluation stage for this pass:
//
//   - awaiting-data: no post metrics yet, or younger than minDays
//   - insufficient-volume: post metrics present but below the volume floor
//   - ready: enough data for a threshold verdict
//
// Missing data is a state here, never an error.
func Stage(exp types.Experiment, now time.Time, th types.Thresholds) types.EvaluationStage {
	if exp.Post == nil || DaysSinceCreated(exp, now) < th.MinDaysForEvaluation {
		return types.StageAwaitingData
	}
	if exp.Post.Impressions < th.MinPostChangeImpressions {
		return types.StageInsufficientVolume
	}
	return types.StageReady
}

// PastDeadline reports whether the experiment has exceeded the maximum
// evaluation window and must be forced to a terminal outcome.
func PastDeadline(exp types.Experiment, now time.Time, th types.Thresholds) bool {
	return DaysSinceCreated(exp, now) >= th.MaxDaysForEvaluation
}

// ReadyForEvaluation reports whether an evaluation pass should persist a
// verdict for this experiment: old enough, has post metrics, and either has
// sufficient volume or is past the deadline.
func ReadyForEvaluation(exp types.Experiment, now time.Time, th types.Thresholds) bool {
	switch Stage(exp, now, th) {
	case types.StageReady:
		return true
	case types.StageInsufficientVolume:
		return PastDeadline(exp, now, th)
	default:
		return false
	}
}
