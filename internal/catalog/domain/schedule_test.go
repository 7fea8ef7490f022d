package catalog

import (
	"testing"
	"time"
)

func loadLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return loc
}

func TestOpenIntervalsEmptyRulesMeansAlwaysOpen(t *testing.T) {
	from := ts(t, "2025-01-06T00:00:00Z")
	to := ts(t, "2025-01-07T00:00:00Z")
	got := OpenIntervals(nil, time.UTC, from, to)
	if len(got) != 1 {
		t.Fatalf("expected single interval, got %v", got)
	}
	if !got[0].Start.Equal(from) || !got[0].End.Equal(to) {
		t.Fatalf("expected full horizon, got %v", got[0])
	}
}

func TestOpenIntervalsSimpleWeekday(t *testing.T) {
	chicago := loadLoc(t, "America/Chicago")
	// Monday 2025-01-06, 09:00-17:00 local. Chicago is UTC-6 in January.
	rules := []Rule{{StoreID: "s1", Day: 0, Open: 9 * 60, Close: 17 * 60}}
	from := ts(t, "2025-01-06T00:00:00Z")
	to := ts(t, "2025-01-08T00:00:00Z")
	got := OpenIntervals(rules, chicago, from, to)
	if len(got) != 1 {
		t.Fatalf("expected single interval, got %v", got)
	}
	if !got[0].Start.Equal(ts(t, "2025-01-06T15:00:00Z")) || !got[0].End.Equal(ts(t, "2025-01-06T23:00:00Z")) {
		t.Fatalf("unexpected interval: %v", got[0])
	}
}

func TestOpenIntervalsWraparoundSpillsFromPreviousDay(t *testing.T) {
	// Friday 22:00 -> 02:00 local crosses into Saturday. A horizon that starts
	// Saturday 00:00 UTC must still see the tail of Friday's window.
	rules := []Rule{{StoreID: "s1", Day: 4, Open: 22 * 60, Close: 2 * 60}}
	from := ts(t, "2025-01-11T00:00:00Z") // Saturday
	to := ts(t, "2025-01-12T00:00:00Z")
	got := OpenIntervals(rules, time.UTC, from, to)
	if len(got) != 1 {
		t.Fatalf("expected single interval, got %v", got)
	}
	if !got[0].Start.Equal(from) || !got[0].End.Equal(ts(t, "2025-01-11T02:00:00Z")) {
		t.Fatalf("unexpected interval: %v", got[0])
	}
}

func TestOpenIntervalsCloseEqualOpenIsFullDay(t *testing.T) {
	rules := []Rule{{StoreID: "s1", Day: 0, Open: 0, Close: 0}}
	from := ts(t, "2025-01-06T00:00:00Z") // Monday
	to := ts(t, "2025-01-07T06:00:00Z")
	got := OpenIntervals(rules, time.UTC, from, to)
	if got := TotalDuration(got); got != 24*time.Hour {
		t.Fatalf("expected 24h open, got %v", got)
	}
}

func TestOpenIntervalsDSTSpringForwardShortensDay(t *testing.T) {
	chicago := loadLoc(t, "America/Chicago")
	// Sunday 2025-03-09: 02:00 local does not exist, clocks jump to 03:00.
	// A 00:00-04:00 window therefore covers only three UTC hours.
	rules := []Rule{{StoreID: "s1", Day: 6, Open: 0, Close: 4 * 60}}
	from := ts(t, "2025-03-09T00:00:00Z")
	to := ts(t, "2025-03-10T00:00:00Z")
	got := OpenIntervals(rules, chicago, from, to)
	if got := TotalDuration(got); got != 3*time.Hour {
		t.Fatalf("expected 3h across spring-forward, got %v", got)
	}
}

func TestOpenIntervalsMergesBackToBackRules(t *testing.T) {
	rules := []Rule{
		{StoreID: "s1", Day: 0, Open: 9 * 60, Close: 12 * 60},
		{StoreID: "s1", Day: 0, Open: 12 * 60, Close: 17 * 60},
	}
	from := ts(t, "2025-01-06T00:00:00Z")
	to := ts(t, "2025-01-07T00:00:00Z")
	got := OpenIntervals(rules, time.UTC, from, to)
	if len(got) != 1 {
		t.Fatalf("expected merged interval, got %v", got)
	}
	if got[0].Duration() != 8*time.Hour {
		t.Fatalf("expected 8h, got %v", got[0].Duration())
	}
}

func TestRuleValidate(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		want error
	}{
		{"ok", Rule{StoreID: "s1", Day: 0, Open: 540, Close: 1020}, nil},
		{"empty store", Rule{Day: 0}, ErrEmptyStoreID},
		{"bad day", Rule{StoreID: "s1", Day: 7}, ErrInvalidDay},
		{"bad time", Rule{StoreID: "s1", Day: 0, Open: -1}, ErrInvalidTime},
	}
	for _, tc := range cases {
		if got := tc.rule.Validate(); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
