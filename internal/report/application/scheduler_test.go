package application

import "testing"

func TestParseDailyAt(t *testing.T) {
	hour, minute, err := parseDailyAt("02:30")
	if err != nil {
		t.Fatalf("parseDailyAt: %v", err)
	}
	if hour != 2 || minute != 30 {
		t.Fatalf("got %d:%d, want 2:30", hour, minute)
	}
	if _, _, err := parseDailyAt("not-a-time"); err == nil {
		t.Fatal("expected error for invalid time")
	}
}

func TestSchedulerShouldRun(t *testing.T) {
	s := &Scheduler{dailyAt: "02:00"}
	if !s.shouldRun(mustTime(t, "2025-01-06T02:00:30Z")) {
		t.Fatal("expected run at 02:00")
	}
	if s.shouldRun(mustTime(t, "2025-01-06T02:01:00Z")) {
		t.Fatal("unexpected run at 02:01")
	}
	bad := &Scheduler{dailyAt: "bogus"}
	if bad.shouldRun(mustTime(t, "2025-01-06T02:00:00Z")) {
		t.Fatal("invalid schedule must never run")
	}
}
