package catalog

import "errors"

var (
	// ErrEmptyStoreID indicates a missing store identifier.
	ErrEmptyStoreID = errors.New("catalog: empty store id")
	// ErrInvalidDay indicates a day-of-week outside 0..6.
	ErrInvalidDay = errors.New("catalog: day of week must be in 0..6")
	// ErrInvalidTime indicates a local time outside a single day.
	ErrInvalidTime = errors.New("catalog: local time must be in 0..1440 minutes")
)
