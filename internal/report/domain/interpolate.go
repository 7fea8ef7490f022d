package report

import (
	"time"

	catalog "store-monitoring/internal/catalog/domain"
	observations "store-monitoring/internal/observations/domain"
)

// SeedLookback bounds how far before the week horizon an older observation may
// seed the initial status. Anything staler leaves the leading gap unknown.
const SeedLookback = time.Hour

// segment is a maximal span with one known status.
type segment struct {
	start  time.Time
	end    time.Time
	status observations.Status
}

// Compute walks a store's observation timeline once against its business-open
// intervals and accumulates uptime and downtime for all three windows.
//
// Each observation's status extends forward until the next observation or the
// frozen now. The span before the first usable observation has no known
// status and counts toward neither total. An observation at most SeedLookback
// before the week horizon seeds the status at the horizon itself.
func Compute(intervals []catalog.Interval, timeline []observations.Observation, w Windows) Totals {
	segments := buildSegments(timeline, w)

	var totals Totals
	for _, seg := range segments {
		for _, open := range intervals {
			overlap := open.Clip(seg.start, seg.end)
			if overlap.IsEmpty() {
				continue
			}
			accumulate(&totals.Hour, overlap, w.HourStart, w.Now, seg.status)
			accumulate(&totals.Day, overlap, w.DayStart, w.Now, seg.status)
			accumulate(&totals.Week, overlap, w.WeekStart, w.Now, seg.status)
		}
	}
	return totals
}

func accumulate(tally *Tally, span catalog.Interval, from, to time.Time, status observations.Status) {
	clipped := span.Clip(from, to)
	if clipped.IsEmpty() {
		return
	}
	if status == observations.StatusActive {
		tally.Up += clipped.Duration()
	} else {
		tally.Down += clipped.Duration()
	}
}

// buildSegments converts a sorted timeline into contiguous known-status spans
// clipped to [WeekStart, Now). A sample older than the week horizon is only
// kept as the seed when it falls within SeedLookback of the horizon.
func buildSegments(timeline []observations.Observation, w Windows) []segment {
	usable := timeline[:0:0]
	for _, sample := range timeline {
		if sample.At.Before(w.WeekStart) {
			if w.WeekStart.Sub(sample.At) <= SeedLookback {
				// Later seeds replace earlier ones.
				if n := len(usable); n > 0 && usable[n-1].At.Before(w.WeekStart) {
					usable[n-1] = sample
					continue
				}
				usable = append(usable, sample)
			}
			continue
		}
		if !sample.At.Before(w.Now) {
			break
		}
		usable = append(usable, sample)
	}
	if len(usable) == 0 {
		return nil
	}

	segments := make([]segment, 0, len(usable))
	for i, sample := range usable {
		start := sample.At
		if start.Before(w.WeekStart) {
			start = w.WeekStart
		}
		end := w.Now
		if i+1 < len(usable) {
			end = usable[i+1].At
		}
		if end.After(start) {
			segments = append(segments, segment{start: start, end: end, status: sample.Status})
		}
	}
	return segments
}
