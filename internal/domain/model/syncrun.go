package model

import "time"

// RunStatus is the recorded outcome of a synchronization run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// SyncSource identifies one remote source referenced by a directive during a
// run.
type SyncSource struct {
	Locator  string
	Branch   string
	Filename string
}

// SyncRun is the audit record of one synchronization attempt against a
// credentials file.
type SyncRun struct {
	ID         int64
	TargetFile string
	Status     RunStatus
	Error      string
	Directives int
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []SyncSource
}
