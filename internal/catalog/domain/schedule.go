package catalog

import (
	"time"
)

// minutesPerDay bounds local open/close times.
const minutesPerDay = 24 * 60

// Rule is one weekly business-hours entry for a store.
// Day uses the source convention 0=Monday .. 6=Sunday. Open and Close are
// minutes since local midnight; Close <= Open denotes a window that wraps
// past midnight into the following day.
type Rule struct {
	StoreID string
	Day     int
	Open    int
	Close   int
}

// Validate checks rule bounds.
func (r Rule) Validate() error {
	if r.StoreID == "" {
		return ErrEmptyStoreID
	}
	if r.Day < 0 || r.Day > 6 {
		return ErrInvalidDay
	}
	if r.Open < 0 || r.Open > minutesPerDay || r.Close < 0 || r.Close > minutesPerDay {
		return ErrInvalidTime
	}
	return nil
}

// mondayIndex converts Go's Sunday-based weekday to the 0=Monday convention.
func mondayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// OpenIntervals expands weekly rules into merged UTC intervals intersecting
// [from, to). An empty rule set means the store is open around the clock.
// Intervals are built from local wall-clock times in loc, so their UTC length
// shifts on daylight-saving transition days.
func OpenIntervals(rules []Rule, loc *time.Location, from, to time.Time) []Interval {
	if !to.After(from) {
		return nil
	}
	if len(rules) == 0 {
		return []Interval{{Start: from.UTC(), End: to.UTC()}}
	}

	byDay := make(map[int][]Rule, 7)
	for _, rule := range rules {
		byDay[rule.Day] = append(byDay[rule.Day], rule)
	}

	// Start one local day early so a wraparound window opened the previous
	// evening still spills into the horizon.
	localFrom := from.In(loc)
	localTo := to.In(loc)
	day := time.Date(localFrom.Year(), localFrom.Month(), localFrom.Day()-1, 0, 0, 0, 0, loc)
	lastDay := time.Date(localTo.Year(), localTo.Month(), localTo.Day(), 0, 0, 0, 0, loc)

	var intervals []Interval
	for !day.After(lastDay) {
		for _, rule := range byDay[mondayIndex(day.Weekday())] {
			open := localClock(day, rule.Open, loc)
			var close time.Time
			if rule.Close > rule.Open {
				close = localClock(day, rule.Close, loc)
			} else {
				next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
				close = localClock(next, rule.Close, loc)
			}
			clipped := Interval{Start: open.UTC(), End: close.UTC()}.Clip(from.UTC(), to.UTC())
			if !clipped.IsEmpty() {
				intervals = append(intervals, clipped)
			}
		}
		day = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	}
	return MergeIntervals(intervals)
}

func localClock(day time.Time, minuteOfDay int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, loc)
}
