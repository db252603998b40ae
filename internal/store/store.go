// Package store persists sweep history: one row per run, one row per
// solver job. The summary JSON inside each run directory is the
// authoritative record; the store is the queryable index over it.
package store

import "time"

// DefaultDBPath is the history database location relative to the
// working directory.
const DefaultDBPath = ".optsweep/optsweep.db"

// Run is one sweep invocation.
type Run struct {
	ID         int64
	RunID      string // zero-padded ordinal, e.g. "007"
	Dir        string // run directory under the output root
	ConfigPath string
	StartedAt  string
	FinishedAt string
	Jobs       int
	Failed     int
}

// Job is one solver invocation inside a run.
type Job struct {
	ID         int64
	RunID      int64 // store run row, not the ordinal
	Instance   string
	Name       string // instance display name
	Selector   string
	Family     string
	ExitCode   int
	DurationMS int64
	OutputPath string
	LogPath    string
	Status     string // "ok" | "failed"
	Error      string
}

// Store is the sweep-history interface.
type Store interface {
	CreateRun(r *Run) (int64, error)
	FinishRun(id int64, finishedAt string, jobs, failed int) error
	GetRun(id int64) (*Run, error)
	GetRunByOrdinal(runID string) (*Run, error)
	ListRuns() ([]*Run, error)
	CreateJob(j *Job) (int64, error)
	ListJobsByRun(runID int64) ([]*Job, error)
	Close() error
}

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
