package report

import (
	"context"
	"errors"
	"time"
)

// State is a report job's lifecycle position. Jobs move from Running to
// exactly one terminal state and never back.
type State string

const (
	StateRunning  State = "Running"
	StateComplete State = "Complete"
	StateFailed   State = "Failed"
)

var (
	// ErrJobNotFound indicates an unknown job id.
	ErrJobNotFound = errors.New("report: job not found")
	// ErrNotReady indicates a result request against a still-running job.
	ErrNotReady = errors.New("report: job not ready")
	// ErrJobFinished guards terminal jobs against further transitions.
	ErrJobFinished = errors.New("report: job already finished")
	// ErrJobFailed indicates a result request against a failed job.
	ErrJobFailed = errors.New("report: job failed")
)

// Job is one report generation run.
type Job struct {
	ID          string
	State       State
	CreatedAt   time.Time
	CompletedAt time.Time
	FrozenNow   time.Time
	StoreCount  int
	Warnings    []string
	Error       string
}

// NewJob starts a job in the Running state.
func NewJob(id string, createdAt time.Time) (*Job, error) {
	if id == "" {
		return nil, errors.New("report: empty job id")
	}
	return &Job{ID: id, State: StateRunning, CreatedAt: createdAt.UTC()}, nil
}

// Complete marks the job done with the frozen reference instant and the
// number of stores covered.
func (j *Job) Complete(at, frozenNow time.Time, storeCount int, warnings []string) error {
	if j.State != StateRunning {
		return ErrJobFinished
	}
	j.State = StateComplete
	j.CompletedAt = at.UTC()
	j.FrozenNow = frozenNow.UTC()
	j.StoreCount = storeCount
	j.Warnings = warnings
	return nil
}

// Fail marks the job failed with a human-readable reason.
func (j *Job) Fail(at time.Time, reason string) error {
	if j.State != StateRunning {
		return ErrJobFinished
	}
	j.State = StateFailed
	j.CompletedAt = at.UTC()
	j.Error = reason
	return nil
}

// JobRepository persists jobs and their finished rows.
type JobRepository interface {
	// Create persists a freshly started job.
	Create(ctx context.Context, job *Job) error
	// Get returns a job by id, or ErrJobNotFound.
	Get(ctx context.Context, id string) (*Job, error)
	// Complete atomically persists the terminal job state and its rows.
	Complete(ctx context.Context, job *Job, rows []Row) error
	// Fail persists a failed terminal state.
	Fail(ctx context.Context, job *Job) error
	// Rows returns a completed job's rows ordered by store id.
	Rows(ctx context.Context, id string) ([]Row, error)
}
