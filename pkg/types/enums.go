// Package types defines the public domain types for the AIO structure optimization engine.
package types

// Outcome classifies the measured result of an experiment.
type Outcome string

// Outcome values enumerate the possible experiment results. An empty Outcome
// means the experiment has not been evaluated yet.
const (
	OutcomeImproved     Outcome = "improved"
	OutcomeWorsened     Outcome = "worsened"
	OutcomeNoChange     Outcome = "no_change"
	OutcomeInconclusive Outcome = "inconclusive"
)

// ExperimentStatus represents the lifecycle state of an experiment.
type ExperimentStatus string

// ExperimentStatus values. Experiments are created active and become
// completed when an outcome is recorded. They are never deleted.
const (
	ExperimentActive    ExperimentStatus = "active"
	ExperimentCompleted ExperimentStatus = "completed"
)

// EvaluationStage is the state an experiment occupies within a single
// evaluation pass.
type EvaluationStage string

// EvaluationStage values.
const (
	StageAwaitingData       EvaluationStage = "awaiting-data"
	StageInsufficientVolume EvaluationStage = "insufficient-volume"
	StageReady              EvaluationStage = "ready"
)

// ChangeType classifies how an element was applied to a page.
type ChangeType string

// ChangeType values. Only insertion is performed today; the enum exists so
// replacements can be recorded without a schema change.
const (
	ChangeInsert ChangeType = "insert"
)

// AlertKind classifies an early-warning alert on an active experiment.
type AlertKind string

// AlertKind values.
const (
	AlertDecline AlertKind = "decline"
	AlertSuccess AlertKind = "success"
)

// AlertLevel is the severity attached to a dispatched alert.
type AlertLevel string

const (
	AlertLevelError   AlertLevel = "error"
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelInfo    AlertLevel = "info"
)

// SinkType defines the alert sink backend.
type SinkType string

// SinkType values enumerate the supported alert sink backends.
const (
	SinkConsole SinkType = "console"
	SinkFile    SinkType = "file"
	SinkWebhook SinkType = "webhook"
	SinkSNS     SinkType = "sns"
)
