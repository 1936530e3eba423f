package models

import (
	"fmt"
	"time"
)

// RunStatus is the outcome of a sync run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunAborted   RunStatus = "aborted"
	RunFailed    RunStatus = "failed"
)

// ActionKind is the decision taken for one assignment.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
)

// RunAction records what a run did (or would do, in a dry run) for one assignment.
type RunAction struct {
	Position   int
	Kind       ActionKind
	CourseID   int64
	CourseCode string
	Assignment string
	Content    string
	TaskID     string
	Due        string
	Error      string
}

// Failed reports whether the tracker call for this action errored.
func (a RunAction) Failed() bool {
	return a.Error != ""
}

// Run is a journal entry for one execution of the sync.
type Run struct {
	id         string
	status     RunStatus
	dryRun     bool
	created    int
	updated    int
	skipped    int
	failed     int
	err        string
	startedAt  time.Time
	finishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	actions    []RunAction
}

// NewRun creates a running journal entry started at the given time.
func NewRun(startedAt time.Time, dryRun bool) *Run {
	now := time.Now()
	return &Run{
		status:    RunRunning,
		dryRun:    dryRun,
		startedAt: startedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string               { return r.id }
func (r *Run) Status() RunStatus        { return r.status }
func (r *Run) DryRun() bool             { return r.dryRun }
func (r *Run) Created() int             { return r.created }
func (r *Run) Updated() int             { return r.updated }
func (r *Run) Skipped() int             { return r.skipped }
func (r *Run) Failed() int              { return r.failed }
func (r *Run) ErrorMessage() string     { return r.err }
func (r *Run) StartedAt() time.Time     { return r.startedAt }
func (r *Run) FinishedAt() *time.Time   { return r.finishedAt }
func (r *Run) CreatedAt() time.Time     { return r.createdAt }
func (r *Run) UpdatedAt() time.Time     { return r.updatedAt }
func (r *Run) Actions() []RunAction     { return r.actions }
func (r *Run) SetID(id string)          { r.id = id }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetActions(a []RunAction) { r.actions = a }

// SetCounts records the per-kind totals of the run.
func (r *Run) SetCounts(created, updated, skipped, failed int) {
	r.created, r.updated, r.skipped, r.failed = created, updated, skipped, failed
}

// Finish marks the run as complete with the given status and optional error.
func (r *Run) Finish(status RunStatus, finishedAt time.Time, err error) {
	r.status = status
	r.finishedAt = &finishedAt
	if err != nil {
		r.err = err.Error()
	}
}

// Restore sets fields loaded from storage.
func (r *Run) Restore(status RunStatus, errMsg string, finishedAt *time.Time) {
	r.status = status
	r.err = errMsg
	r.finishedAt = finishedAt
}

// Validate checks that the run can be stored.
func (r *Run) Validate() error {
	switch r.status {
	case RunRunning, RunSucceeded, RunPartial, RunAborted, RunFailed:
	default:
		return fmt.Errorf("invalid run status: %q", r.status)
	}
	if r.startedAt.IsZero() {
		return fmt.Errorf("run start time is required")
	}
	if r.created < 0 || r.updated < 0 || r.skipped < 0 || r.failed < 0 {
		return fmt.Errorf("run counters must not be negative")
	}
	return nil
}
