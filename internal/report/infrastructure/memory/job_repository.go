package memory

import (
	"context"
	"fmt"
	"sync"

	report "store-monitoring/internal/report/domain"
)

// JobRepository is an in-memory job store for demo/testing.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]report.Job
	rows map[string][]report.Row
}

// NewJobRepository constructs a repository.
func NewJobRepository() *JobRepository {
	return &JobRepository{
		jobs: make(map[string]report.Job),
		rows: make(map[string][]report.Row),
	}
}

// Create persists a freshly started job.
func (r *JobRepository) Create(ctx context.Context, job *report.Job) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("report memory: duplicate job %s", job.ID)
	}
	r.jobs[job.ID] = snapshot(job)
	return nil
}

// Get returns a job by id.
func (r *JobRepository) Get(ctx context.Context, id string) (*report.Job, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, report.ErrJobNotFound
	}
	return &job, nil
}

// Complete persists the terminal state and the finished rows together.
func (r *JobRepository) Complete(ctx context.Context, job *report.Job, rows []report.Row) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return report.ErrJobNotFound
	}
	r.jobs[job.ID] = snapshot(job)
	stored := make([]report.Row, len(rows))
	copy(stored, rows)
	r.rows[job.ID] = stored
	return nil
}

// Fail persists a failed terminal state.
func (r *JobRepository) Fail(ctx context.Context, job *report.Job) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return report.ErrJobNotFound
	}
	r.jobs[job.ID] = snapshot(job)
	return nil
}

// Rows returns a completed job's rows.
func (r *JobRepository) Rows(ctx context.Context, id string) ([]report.Row, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.jobs[id]; !ok {
		return nil, report.ErrJobNotFound
	}
	rows := r.rows[id]
	result := make([]report.Row, len(rows))
	copy(result, rows)
	return result, nil
}

func snapshot(job *report.Job) report.Job {
	stored := *job
	stored.Warnings = append([]string(nil), job.Warnings...)
	return stored
}
