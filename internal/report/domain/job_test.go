package report

import (
	"testing"
	"time"
)

func TestJobLifecycle(t *testing.T) {
	created := ts(t, "2025-01-06T17:00:00Z")
	job, err := NewJob("rpt-abc", created)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.State != StateRunning {
		t.Fatalf("expected Running, got %s", job.State)
	}

	frozen := ts(t, "2025-01-06T16:59:00Z")
	if err := job.Complete(created.Add(time.Minute), frozen, 3, []string{"w1"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if job.State != StateComplete || !job.FrozenNow.Equal(frozen) || job.StoreCount != 3 {
		t.Fatalf("unexpected completed job: %+v", job)
	}

	if err := job.Complete(created, frozen, 3, nil); err != ErrJobFinished {
		t.Fatalf("second Complete: got %v, want ErrJobFinished", err)
	}
	if err := job.Fail(created, "late"); err != ErrJobFinished {
		t.Fatalf("Fail after Complete: got %v, want ErrJobFinished", err)
	}
}

func TestJobFail(t *testing.T) {
	job, err := NewJob("rpt-def", ts(t, "2025-01-06T17:00:00Z"))
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := job.Fail(ts(t, "2025-01-06T17:01:00Z"), "cancelled"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if job.State != StateFailed || job.Error != "cancelled" {
		t.Fatalf("unexpected failed job: %+v", job)
	}
}

func TestNewJobRejectsEmptyID(t *testing.T) {
	if _, err := NewJob("", time.Now()); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestNewRowRounding(t *testing.T) {
	totals := Totals{
		Hour: Tally{Up: 59*time.Minute + 30*time.Second, Down: 29 * time.Second},
		Day:  Tally{Up: time.Hour + 15*time.Minute + 18*time.Second, Down: 2 * time.Hour},
		Week: Tally{Up: 100*time.Hour + 30*time.Minute, Down: 7*time.Hour + 27*time.Second},
	}
	row := NewRow("s1", totals)
	if row.UptimeLastHourMinutes != 59 || row.DowntimeLastHourMinutes != 0 {
		t.Fatalf("hour columns not floored to whole minutes: %+v", row)
	}
	if row.UptimeLastDayHours != 1.26 {
		t.Fatalf("day uptime: got %v, want 1.26", row.UptimeLastDayHours)
	}
	if row.UptimeLastWeekHours != 100.5 {
		t.Fatalf("week uptime: got %v, want 100.5", row.UptimeLastWeekHours)
	}
	if row.DowntimeLastWeekHours != 7.01 {
		t.Fatalf("week downtime: got %v, want 7.01", row.DowntimeLastWeekHours)
	}
}
