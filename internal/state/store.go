// Package state records pipeline run history in SQLite. It tracks runs and
// the per-stage outcomes within them.
package state

import "time"

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the pipeline (or a single stage).
type Run struct {
	ID          string
	Dataset     string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// StageStatus is the outcome of one stage within a run.
type StageStatus string

const (
	StageStatusSuccess StageStatus = "success"
	StageStatusFailed  StageStatus = "failed"
	StageStatusSkipped StageStatus = "skipped"
)

// StageRun is the recorded outcome of one stage dispatch.
type StageRun struct {
	RunID      string
	Stage      string
	Tool       string
	Status     StageStatus
	ExitCode   int
	DurationMS int64
	Error      string
	StartedAt  time.Time
}

// Store is the persistence interface the engine records runs through.
type Store interface {
	CreateRun(dataset string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	RecordStageRun(sr *StageRun) error
	ListRuns(limit int) ([]*Run, error)
	GetStageRuns(runID string) ([]*StageRun, error)
	Close() error
}
