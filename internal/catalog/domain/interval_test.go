package catalog

import (
	"testing"
	"time"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed.UTC()
}

func TestMergeIntervalsCoalescesOverlapAndAdjacency(t *testing.T) {
	in := []Interval{
		{Start: ts(t, "2025-01-01T10:00:00Z"), End: ts(t, "2025-01-01T12:00:00Z")},
		{Start: ts(t, "2025-01-01T11:00:00Z"), End: ts(t, "2025-01-01T13:00:00Z")},
		{Start: ts(t, "2025-01-01T13:00:00Z"), End: ts(t, "2025-01-01T14:00:00Z")},
		{Start: ts(t, "2025-01-01T16:00:00Z"), End: ts(t, "2025-01-01T17:00:00Z")},
	}
	merged := MergeIntervals(in)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged intervals, got %d: %v", len(merged), merged)
	}
	if !merged[0].Start.Equal(ts(t, "2025-01-01T10:00:00Z")) || !merged[0].End.Equal(ts(t, "2025-01-01T14:00:00Z")) {
		t.Fatalf("unexpected first interval: %v", merged[0])
	}
	if got := TotalDuration(merged); got != 5*time.Hour {
		t.Fatalf("expected 5h total, got %v", got)
	}
}

func TestMergeIntervalsIdempotent(t *testing.T) {
	merged := MergeIntervals([]Interval{
		{Start: ts(t, "2025-01-01T09:00:00Z"), End: ts(t, "2025-01-01T10:00:00Z")},
		{Start: ts(t, "2025-01-01T12:00:00Z"), End: ts(t, "2025-01-01T13:00:00Z")},
	})
	again := MergeIntervals(merged)
	if len(again) != len(merged) {
		t.Fatalf("merge not idempotent: %v vs %v", merged, again)
	}
	for i := range merged {
		if !merged[i].Start.Equal(again[i].Start) || !merged[i].End.Equal(again[i].End) {
			t.Fatalf("merge not idempotent at %d: %v vs %v", i, merged[i], again[i])
		}
	}
}

func TestMergeIntervalsDropsEmpty(t *testing.T) {
	at := ts(t, "2025-01-01T09:00:00Z")
	merged := MergeIntervals([]Interval{
		{Start: at, End: at},
		{Start: at.Add(time.Hour), End: at},
	})
	if merged != nil {
		t.Fatalf("expected nil, got %v", merged)
	}
}

func TestClipBounds(t *testing.T) {
	in := Interval{Start: ts(t, "2025-01-01T08:00:00Z"), End: ts(t, "2025-01-01T20:00:00Z")}
	clipped := in.Clip(ts(t, "2025-01-01T10:00:00Z"), ts(t, "2025-01-01T12:00:00Z"))
	if clipped.Duration() != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", clipped.Duration())
	}
	outside := in.Clip(ts(t, "2025-01-02T00:00:00Z"), ts(t, "2025-01-02T01:00:00Z"))
	if !outside.IsEmpty() {
		t.Fatalf("expected empty clip, got %v", outside)
	}
}
