package debate

import "github.com/strategyclub/debate/internal/stage"

// Status represents the current state of a debate run.
type Status string

const (
	// StatusInProgress indicates rounds are executing.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the final document was written.
	StatusCompleted Status = "completed"

	// StatusFailed indicates a stage or the final synthesis failed.
	StatusFailed Status = "failed"
)

// Models selects the model identifier for each debate role.
type Models struct {
	Critique  string
	FactCheck string
	Synthesis string
}

// Options configures a debate run.
type Options struct {
	// RunID identifies the run in logs and events. Defaults to the base
	// name of the output directory.
	RunID string
	// Input is the raw document text, protection markers included.
	Input string
	// Rounds is the number of critique/fact-check/synthesis rounds.
	Rounds int
	// OutputDir receives checkpoints, the debug log, and the final document.
	OutputDir string
	// Resume continues from the furthest checkpointed stage instead of
	// starting at round 1.
	Resume bool
	// Models are the per-role model identifiers.
	Models Models
	// CritiqueLogLimit caps the critique context fed to providers, in
	// characters. Zero uses the default.
	CritiqueLogLimit int
}

// Snapshot is a point-in-time view of a run, safe to poll concurrently
// with the run itself.
type Snapshot struct {
	Status      Status `json:"status"`
	RoundsTotal int    `json:"rounds_total"`
	// LastRound and LastStage identify the furthest durably completed
	// stage. Zero/empty when nothing completed yet.
	LastRound int    `json:"last_round"`
	LastStage string `json:"last_stage,omitempty"`
	// Error holds the failure reason when Status is StatusFailed.
	Error string `json:"error,omitempty"`
}

// Outcome is the result of a completed run.
type Outcome struct {
	// FinalDocument is the synthesized document including the dissent
	// register section.
	FinalDocument string
	// Register is the parsed dissent register.
	Register DissentRegister
	// FinalPath is where the final document was written.
	FinalPath string
	// History holds every stage result of the run, including ones
	// rebuilt from checkpoints on resume.
	History []*stage.Result
}
