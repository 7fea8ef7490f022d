package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	observations "store-monitoring/internal/observations/domain"
)

// Repository is an in-memory observation store for demo/testing.
type Repository struct {
	mu      sync.RWMutex
	samples map[string][]observations.Observation
	max     time.Time
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{samples: make(map[string][]observations.Observation)}
}

// Add records one observation.
func (r *Repository) Add(sample observations.Observation) error {
	if err := sample.Validate(); err != nil {
		return err
	}
	sample.At = sample.At.UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[sample.StoreID] = append(r.samples[sample.StoreID], sample)
	if sample.At.After(r.max) {
		r.max = sample.At
	}
	return nil
}

// ListRange returns a store's observations in [from, to) ordered ascending.
func (r *Repository) ListRange(ctx context.Context, storeID string, from, to time.Time) ([]observations.Observation, error) {
	_ = ctx
	if storeID == "" {
		return nil, observations.ErrEmptyStoreID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []observations.Observation
	for _, sample := range r.samples[storeID] {
		if sample.At.Before(from) || !sample.At.Before(to) {
			continue
		}
		result = append(result, sample)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].At.Before(result[j].At) })
	return result, nil
}

// StoreIDs returns every store id seen so far, sorted.
func (r *Repository) StoreIDs(ctx context.Context) ([]string, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.samples))
	for id := range r.samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MaxTimestamp returns the newest observation time, or the zero time.
func (r *Repository) MaxTimestamp(ctx context.Context) (time.Time, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.max, nil
}
