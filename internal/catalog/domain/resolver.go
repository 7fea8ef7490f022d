package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Repository loads store schedule data.
type Repository interface {
	// TimezoneName returns the store's IANA zone name, or "" when none is assigned.
	TimezoneName(ctx context.Context, storeID string) (string, error)
	// RulesByStore returns all weekly rules for a store; empty means open 24/7.
	RulesByStore(ctx context.Context, storeID string) ([]Rule, error)
}

// Resolver turns a store's schedule and timezone into UTC business intervals.
// Defaults are explicit constructor inputs so tests can override them.
type Resolver struct {
	repo        Repository
	defaultZone *time.Location
}

// NewResolver constructs a Resolver with the given default zone name.
func NewResolver(repo Repository, defaultZone string) (*Resolver, error) {
	if repo == nil {
		return nil, errors.New("catalog resolver: nil repository")
	}
	loc, err := time.LoadLocation(defaultZone)
	if err != nil {
		return nil, fmt.Errorf("catalog resolver: default zone: %w", err)
	}
	return &Resolver{repo: repo, defaultZone: loc}, nil
}

// Resolve returns the merged UTC business-open intervals for a store
// intersecting [from, to). An unresolvable timezone name falls back to the
// default zone and is reported as a warning instead of an error, so one bad
// store never aborts a whole report run.
func (r *Resolver) Resolve(ctx context.Context, storeID string, from, to time.Time) ([]Interval, string, error) {
	if r == nil || r.repo == nil {
		return nil, "", errors.New("catalog resolver: nil")
	}
	if storeID == "" {
		return nil, "", ErrEmptyStoreID
	}

	loc := r.defaultZone
	warning := ""
	name, err := r.repo.TimezoneName(ctx, storeID)
	if err != nil {
		return nil, "", fmt.Errorf("catalog resolver: timezone lookup: %w", err)
	}
	if name != "" {
		parsed, err := time.LoadLocation(name)
		if err != nil {
			warning = fmt.Sprintf("unknown timezone %q, using %s", name, r.defaultZone)
		} else {
			loc = parsed
		}
	}

	rules, err := r.repo.RulesByStore(ctx, storeID)
	if err != nil {
		return nil, "", fmt.Errorf("catalog resolver: rules lookup: %w", err)
	}
	return OpenIntervals(rules, loc, from, to), warning, nil
}
