package observations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is a store's polled operational state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	// ErrEmptyStoreID indicates a missing store identifier.
	ErrEmptyStoreID = errors.New("observations: empty store id")
	// ErrZeroTimestamp indicates a missing observation time.
	ErrZeroTimestamp = errors.New("observations: zero timestamp")
)

// ParseStatus normalizes a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("observations: unknown status %q", raw)
	}
}

// Observation is a single polled status sample for a store.
type Observation struct {
	StoreID string
	At      time.Time
	Status  Status
}

// Validate checks required fields.
func (o Observation) Validate() error {
	if o.StoreID == "" {
		return ErrEmptyStoreID
	}
	if o.At.IsZero() {
		return ErrZeroTimestamp
	}
	if _, err := ParseStatus(string(o.Status)); err != nil {
		return err
	}
	return nil
}

// BuildTimeline sorts observations by time and collapses duplicate timestamps,
// keeping the last sample seen for each instant. Timestamps are normalized to
// UTC so timeline walks compare cleanly against business intervals.
func BuildTimeline(samples []Observation) []Observation {
	if len(samples) == 0 {
		return nil
	}
	ordered := make([]Observation, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

	timeline := ordered[:0]
	for _, sample := range ordered {
		sample.At = sample.At.UTC()
		if n := len(timeline); n > 0 && timeline[n-1].At.Equal(sample.At) {
			timeline[n-1] = sample
			continue
		}
		timeline = append(timeline, sample)
	}
	return timeline
}

// Repository loads status observations.
type Repository interface {
	// ListRange returns a store's observations with At in [from, to), ordered
	// by time ascending.
	ListRange(ctx context.Context, storeID string, from, to time.Time) ([]Observation, error)
	// StoreIDs returns every store id that has at least one observation.
	StoreIDs(ctx context.Context) ([]string, error)
	// MaxTimestamp returns the newest observation time across all stores, or
	// the zero time when no observations exist.
	MaxTimestamp(ctx context.Context) (time.Time, error)
}
