package memory

import (
	"context"
	"sync"

	catalog "store-monitoring/internal/catalog/domain"
)

// Repository is an in-memory catalog for demo/testing.
type Repository struct {
	mu    sync.RWMutex
	zones map[string]string
	rules map[string][]catalog.Rule
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{
		zones: make(map[string]string),
		rules: make(map[string][]catalog.Rule),
	}
}

// PutTimezone stores or replaces a store's zone assignment.
func (r *Repository) PutTimezone(storeID, zone string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[storeID] = zone
}

// AddRule appends a weekly rule for a store.
func (r *Repository) AddRule(rule catalog.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.StoreID] = append(r.rules[rule.StoreID], rule)
	return nil
}

// TimezoneName returns the assigned zone name or "".
func (r *Repository) TimezoneName(ctx context.Context, storeID string) (string, error) {
	_ = ctx
	if storeID == "" {
		return "", catalog.ErrEmptyStoreID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.zones[storeID], nil
}

// RulesByStore returns all rules for a store.
func (r *Repository) RulesByStore(ctx context.Context, storeID string) ([]catalog.Rule, error) {
	_ = ctx
	if storeID == "" {
		return nil, catalog.ErrEmptyStoreID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rules := r.rules[storeID]
	result := make([]catalog.Rule, len(rules))
	copy(result, rules)
	return result, nil
}
