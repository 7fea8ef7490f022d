package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	report "store-monitoring/internal/report/domain"
)

// JobRepository persists report jobs and rows in Postgres.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository constructs a repository around an open database handle.
func NewJobRepository(db *sql.DB) (*JobRepository, error) {
	if db == nil {
		return nil, errors.New("report postgres: nil db")
	}
	return &JobRepository{db: db}, nil
}

// Create inserts a freshly started job.
func (r *JobRepository) Create(ctx context.Context, job *report.Job) error {
	if job == nil {
		return errors.New("report postgres: nil job")
	}
	const query = `
INSERT INTO report_jobs (id, state, created_at)
VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, job.ID, string(job.State), job.CreatedAt); err != nil {
		return fmt.Errorf("report postgres: create job: %w", err)
	}
	return nil
}

// Get returns a job by id, or ErrJobNotFound.
func (r *JobRepository) Get(ctx context.Context, id string) (*report.Job, error) {
	const query = `
SELECT id, state, created_at, completed_at, frozen_now, store_count, warnings, error
FROM report_jobs
WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var job report.Job
	var state string
	var completedAt, frozenNow sql.NullTime
	var storeCount sql.NullInt64
	var warnings, errMsg sql.NullString
	err := row.Scan(&job.ID, &state, &job.CreatedAt, &completedAt, &frozenNow, &storeCount, &warnings, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report postgres: get job: %w", err)
	}

	job.State = report.State(state)
	job.CreatedAt = job.CreatedAt.UTC()
	if completedAt.Valid {
		job.CompletedAt = completedAt.Time.UTC()
	}
	if frozenNow.Valid {
		job.FrozenNow = frozenNow.Time.UTC()
	}
	if storeCount.Valid {
		job.StoreCount = int(storeCount.Int64)
	}
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &job.Warnings); err != nil {
			return nil, fmt.Errorf("report postgres: decode warnings: %w", err)
		}
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

// Complete writes the terminal job state and its rows in one transaction so a
// Complete job can never be observed without its rows.
func (r *JobRepository) Complete(ctx context.Context, job *report.Job, rows []report.Row) error {
	if job == nil {
		return errors.New("report postgres: nil job")
	}
	warnings, err := json.Marshal(job.Warnings)
	if err != nil {
		return fmt.Errorf("report postgres: encode warnings: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("report postgres: begin: %w", err)
	}
	defer tx.Rollback()

	const updateJob = `
UPDATE report_jobs
SET state = $1, completed_at = $2, frozen_now = $3, store_count = $4, warnings = $5
WHERE id = $6`
	result, err := tx.ExecContext(ctx, updateJob,
		string(job.State), job.CompletedAt, job.FrozenNow, job.StoreCount, string(warnings), job.ID)
	if err != nil {
		return fmt.Errorf("report postgres: complete job: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return report.ErrJobNotFound
	}

	const insertRow = `
INSERT INTO report_rows (
	job_id, store_id,
	uptime_last_hour_minutes, uptime_last_day_hours, uptime_last_week_hours,
	downtime_last_hour_minutes, downtime_last_day_hours, downtime_last_week_hours
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, insertRow,
			job.ID, row.StoreID,
			row.UptimeLastHourMinutes, row.UptimeLastDayHours, row.UptimeLastWeekHours,
			row.DowntimeLastHourMinutes, row.DowntimeLastDayHours, row.DowntimeLastWeekHours,
		); err != nil {
			return fmt.Errorf("report postgres: insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("report postgres: commit: %w", err)
	}
	return nil
}

// Fail writes a failed terminal state.
func (r *JobRepository) Fail(ctx context.Context, job *report.Job) error {
	if job == nil {
		return errors.New("report postgres: nil job")
	}
	const query = `
UPDATE report_jobs
SET state = $1, completed_at = $2, error = $3
WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, string(job.State), job.CompletedAt, job.Error, job.ID)
	if err != nil {
		return fmt.Errorf("report postgres: fail job: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return report.ErrJobNotFound
	}
	return nil
}

// Rows returns a job's rows ordered by store id.
func (r *JobRepository) Rows(ctx context.Context, id string) ([]report.Row, error) {
	const query = `
SELECT store_id,
	uptime_last_hour_minutes, uptime_last_day_hours, uptime_last_week_hours,
	downtime_last_hour_minutes, downtime_last_day_hours, downtime_last_week_hours
FROM report_rows
WHERE job_id = $1
ORDER BY store_id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("report postgres: rows query: %w", err)
	}
	defer rows.Close()

	var result []report.Row
	for rows.Next() {
		var row report.Row
		if err := rows.Scan(
			&row.StoreID,
			&row.UptimeLastHourMinutes, &row.UptimeLastDayHours, &row.UptimeLastWeekHours,
			&row.DowntimeLastHourMinutes, &row.DowntimeLastDayHours, &row.DowntimeLastWeekHours,
		); err != nil {
			return nil, fmt.Errorf("report postgres: scan row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report postgres: iterate rows: %w", err)
	}
	return result, nil
}
