package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	observations "store-monitoring/internal/observations/domain"
)

// Repository reads status observations from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository around an open database handle.
func NewRepository(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("observations postgres: nil db")
	}
	return &Repository{db: db}, nil
}

// ListRange returns a store's observations in [from, to) ordered ascending.
func (r *Repository) ListRange(ctx context.Context, storeID string, from, to time.Time) ([]observations.Observation, error) {
	if storeID == "" {
		return nil, observations.ErrEmptyStoreID
	}
	const query = `
SELECT store_id, timestamp_utc, status
FROM store_status
WHERE store_id = $1 AND timestamp_utc >= $2 AND timestamp_utc < $3
ORDER BY timestamp_utc`
	rows, err := r.db.QueryContext(ctx, query, storeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("observations postgres: range query: %w", err)
	}
	defer rows.Close()

	var samples []observations.Observation
	for rows.Next() {
		var sample observations.Observation
		var status string
		if err := rows.Scan(&sample.StoreID, &sample.At, &status); err != nil {
			return nil, fmt.Errorf("observations postgres: scan: %w", err)
		}
		sample.At = sample.At.UTC()
		parsed, err := observations.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("observations postgres: %w", err)
		}
		sample.Status = parsed
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("observations postgres: iterate: %w", err)
	}
	return samples, nil
}

// StoreIDs returns every store id seen in the status feed.
func (r *Repository) StoreIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT store_id FROM store_status ORDER BY store_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("observations postgres: store ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("observations postgres: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("observations postgres: iterate ids: %w", err)
	}
	return ids, nil
}

// MaxTimestamp returns the newest observation time, or the zero time when the
// feed is empty.
func (r *Repository) MaxTimestamp(ctx context.Context) (time.Time, error) {
	const query = `SELECT MAX(timestamp_utc) FROM store_status`
	var max sql.NullTime
	if err := r.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("observations postgres: max timestamp: %w", err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return max.Time.UTC(), nil
}
