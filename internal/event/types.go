// Package event defines the events a debate run publishes while it progresses.
// The session and stage executor publish; the live progress view, the status
// command, and the web job registry subscribe. None of them import each other.
//
// Event type strings follow the "category.action" convention:
//
//	run.started, run.completed, run.failed
//	round.started, round.completed
//	stage.started, stage.retrying, stage.completed
//	synthesis.started, synthesis.completed
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Run Lifecycle Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted when a debate run begins.
type RunStartedEvent struct {
	baseEvent
	RunID       string // Run identifier (output directory name for CLI runs)
	TotalRounds int    // Requested number of rounds
	StartRound  int    // First round to execute (>1 when resuming)
	Resumed     bool   // Whether the run continues from checkpoints
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(runID string, totalRounds, startRound int, resumed bool) RunStartedEvent {
	return RunStartedEvent{
		baseEvent:   newBaseEvent("run.started"),
		RunID:       runID,
		TotalRounds: totalRounds,
		StartRound:  startRound,
		Resumed:     resumed,
	}
}

// RunCompletedEvent is emitted when all rounds and the final synthesis finish.
type RunCompletedEvent struct {
	baseEvent
	RunID        string
	Rounds       int    // Rounds completed
	DissentCount int    // Entries in the dissent register
	FinalPath    string // Path to the final document
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(runID string, rounds, dissentCount int, finalPath string) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent:    newBaseEvent("run.completed"),
		RunID:        runID,
		Rounds:       rounds,
		DissentCount: dissentCount,
		FinalPath:    finalPath,
	}
}

// RunFailedEvent is emitted when a run halts on an unrecoverable error.
// LastRound and LastStage identify the furthest durably completed stage.
type RunFailedEvent struct {
	baseEvent
	RunID     string
	LastRound int
	LastStage string
	Reason    string
}

// NewRunFailedEvent creates a RunFailedEvent.
func NewRunFailedEvent(runID string, lastRound int, lastStage, reason string) RunFailedEvent {
	return RunFailedEvent{
		baseEvent: newBaseEvent("run.failed"),
		RunID:     runID,
		LastRound: lastRound,
		LastStage: lastStage,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Round Events
// -----------------------------------------------------------------------------

// RoundStartedEvent is emitted at the start of each debate round.
type RoundStartedEvent struct {
	baseEvent
	RunID string
	Round int // 1-based round index
	Total int // Total rounds requested
}

// NewRoundStartedEvent creates a RoundStartedEvent.
func NewRoundStartedEvent(runID string, round, total int) RoundStartedEvent {
	return RoundStartedEvent{
		baseEvent: newBaseEvent("round.started"),
		RunID:     runID,
		Round:     round,
		Total:     total,
	}
}

// RoundCompletedEvent is emitted when all three stages of a round succeed.
type RoundCompletedEvent struct {
	baseEvent
	RunID string
	Round int
}

// NewRoundCompletedEvent creates a RoundCompletedEvent.
func NewRoundCompletedEvent(runID string, round int) RoundCompletedEvent {
	return RoundCompletedEvent{
		baseEvent: newBaseEvent("round.completed"),
		RunID:     runID,
		Round:     round,
	}
}

// -----------------------------------------------------------------------------
// Stage Events
// -----------------------------------------------------------------------------

// StageStartedEvent is emitted before a provider call is made for a stage.
type StageStartedEvent struct {
	baseEvent
	RunID    string
	Round    int
	Stage    string // "critique", "factcheck", or "synthesis"
	Provider string
	Model    string
}

// NewStageStartedEvent creates a StageStartedEvent.
func NewStageStartedEvent(runID string, round int, stage, provider, model string) StageStartedEvent {
	return StageStartedEvent{
		baseEvent: newBaseEvent("stage.started"),
		RunID:     runID,
		Round:     round,
		Stage:     stage,
		Provider:  provider,
		Model:     model,
	}
}

// StageRetryingEvent is emitted when a transient provider failure triggers a
// backoff retry, or when a protected-content violation triggers the one
// correction re-prompt.
type StageRetryingEvent struct {
	baseEvent
	RunID   string
	Round   int
	Stage   string
	Attempt int    // attempt number about to run (2 = first retry)
	Reason  string // classification of the failure being retried
}

// NewStageRetryingEvent creates a StageRetryingEvent.
func NewStageRetryingEvent(runID string, round int, stage string, attempt int, reason string) StageRetryingEvent {
	return StageRetryingEvent{
		baseEvent: newBaseEvent("stage.retrying"),
		RunID:     runID,
		Round:     round,
		Stage:     stage,
		Attempt:   attempt,
		Reason:    reason,
	}
}

// StageCompletedEvent is emitted after a stage's result has been durably
// checkpointed. Subscribers may rely on the checkpoint file existing.
type StageCompletedEvent struct {
	baseEvent
	RunID    string
	Round    int
	Stage    string
	Provider string
	Critique string // critique notes extracted from the framed response
}

// NewStageCompletedEvent creates a StageCompletedEvent.
func NewStageCompletedEvent(runID string, round int, stage, provider, critique string) StageCompletedEvent {
	return StageCompletedEvent{
		baseEvent: newBaseEvent("stage.completed"),
		RunID:     runID,
		Round:     round,
		Stage:     stage,
		Provider:  provider,
		Critique:  critique,
	}
}

// -----------------------------------------------------------------------------
// Final Synthesis Events
// -----------------------------------------------------------------------------

// SynthesisStartedEvent is emitted when the final synthesis step begins.
type SynthesisStartedEvent struct {
	baseEvent
	RunID string
}

// NewSynthesisStartedEvent creates a SynthesisStartedEvent.
func NewSynthesisStartedEvent(runID string) SynthesisStartedEvent {
	return SynthesisStartedEvent{
		baseEvent: newBaseEvent("synthesis.started"),
		RunID:     runID,
	}
}

// SynthesisCompletedEvent is emitted when the final document and dissent
// register have been written.
type SynthesisCompletedEvent struct {
	baseEvent
	RunID        string
	DissentCount int
}

// NewSynthesisCompletedEvent creates a SynthesisCompletedEvent.
func NewSynthesisCompletedEvent(runID string, dissentCount int) SynthesisCompletedEvent {
	return SynthesisCompletedEvent{
		baseEvent:    newBaseEvent("synthesis.completed"),
		RunID:        runID,
		DissentCount: dissentCount,
	}
}
