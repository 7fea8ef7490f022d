package report

import "time"

// Windows holds the three reporting horizons anchored at a frozen instant.
// Every horizon is a half-open [start, Now) span in UTC.
type Windows struct {
	Now       time.Time
	HourStart time.Time
	DayStart  time.Time
	WeekStart time.Time
}

// NewWindows anchors the horizons at now, normalized to UTC.
func NewWindows(now time.Time) Windows {
	now = now.UTC()
	return Windows{
		Now:       now,
		HourStart: now.Add(-time.Hour),
		DayStart:  now.Add(-24 * time.Hour),
		WeekStart: now.Add(-7 * 24 * time.Hour),
	}
}
