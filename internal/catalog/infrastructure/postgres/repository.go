package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	catalog "store-monitoring/internal/catalog/domain"
)

// Repository loads store timezones and business hours from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository around an open database handle.
func NewRepository(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("catalog postgres: nil db")
	}
	return &Repository{db: db}, nil
}

// TimezoneName returns the store's assigned zone name, or "" when the store
// has no row in store_timezones.
func (r *Repository) TimezoneName(ctx context.Context, storeID string) (string, error) {
	if storeID == "" {
		return "", catalog.ErrEmptyStoreID
	}
	const query = `SELECT timezone_str FROM store_timezones WHERE store_id = $1`
	var name string
	err := r.db.QueryRowContext(ctx, query, storeID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog postgres: timezone query: %w", err)
	}
	return name, nil
}

// RulesByStore returns the store's weekly business-hours rules. An empty
// result means the store is treated as open around the clock.
func (r *Repository) RulesByStore(ctx context.Context, storeID string) ([]catalog.Rule, error) {
	if storeID == "" {
		return nil, catalog.ErrEmptyStoreID
	}
	const query = `
SELECT store_id, day_of_week, open_minute, close_minute
FROM business_hours
WHERE store_id = $1
ORDER BY day_of_week, open_minute`
	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("catalog postgres: rules query: %w", err)
	}
	defer rows.Close()

	var rules []catalog.Rule
	for rows.Next() {
		var rule catalog.Rule
		if err := rows.Scan(&rule.StoreID, &rule.Day, &rule.Open, &rule.Close); err != nil {
			return nil, fmt.Errorf("catalog postgres: scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog postgres: iterate rules: %w", err)
	}
	return rules, nil
}
