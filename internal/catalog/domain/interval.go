package catalog

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) span of UTC time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsEmpty reports whether the interval covers no time.
func (i Interval) IsEmpty() bool {
	return !i.End.After(i.Start)
}

// Duration returns the covered span.
func (i Interval) Duration() time.Duration {
	if i.IsEmpty() {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Clip restricts the interval to [from, to).
func (i Interval) Clip(from, to time.Time) Interval {
	start := i.Start
	end := i.End
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	return Interval{Start: start, End: end}
}

// MergeIntervals sorts intervals and coalesces overlapping or adjacent spans.
// Merging an already-merged set returns an equal set.
func MergeIntervals(intervals []Interval) []Interval {
	var spans []Interval
	for _, interval := range intervals {
		if interval.IsEmpty() {
			continue
		}
		spans = append(spans, interval)
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start.Before(spans[j].Start) })

	merged := spans[:1]
	for _, span := range spans[1:] {
		last := &merged[len(merged)-1]
		if !span.Start.After(last.End) {
			if span.End.After(last.End) {
				last.End = span.End
			}
			continue
		}
		merged = append(merged, span)
	}
	return merged
}

// TotalDuration sums the durations of a merged interval set.
func TotalDuration(intervals []Interval) time.Duration {
	var total time.Duration
	for _, interval := range intervals {
		total += interval.Duration()
	}
	return total
}
