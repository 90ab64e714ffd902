package pipeline

import "time"

// Stage describes a phase of one project run.
type Stage string

const (
	// StageLocate is glob expansion over the workspace (no project).
	StageLocate Stage = "locate"
	// StageRun is the tool process.
	StageRun Stage = "run"
	// StageCollect is parsing and formatting of the captured output.
	StageCollect Stage = "collect"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusSkipped marks projects never started because the run failed.
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Event reports progress for a project, or for the whole run when Project
// is empty.
type Event struct {
	Project     string
	Stage       Stage
	Status      Status
	Err         error
	Elapsed     time.Duration
	ExitCode    int
	Annotations int
}

// Sink consumes progress events. Implementations must be goroutine-safe.
type Sink interface {
	OnEvent(Event)
}
