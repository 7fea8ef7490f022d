package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DefaultTimezone != "America/Chicago" {
		t.Errorf("default timezone = %q", cfg.DefaultTimezone)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if cfg.Schedule.Enabled {
		t.Error("schedule should be disabled by default")
	}
	if cfg.Schedule.DailyAt != "02:00" {
		t.Errorf("daily_at = %q", cfg.Schedule.DailyAt)
	}
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	data := []byte("default_timezone: America/New_York\nworkers: 3\nschedule:\n  enabled: true\n  daily_at: \"04:30\"\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REPORT_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DefaultTimezone != "America/New_York" {
		t.Errorf("timezone = %q", cfg.DefaultTimezone)
	}
	if cfg.Workers != 3 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if !cfg.Schedule.Enabled || cfg.Schedule.DailyAt != "04:30" {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REPORT_DEFAULT_TIMEZONE", "Asia/Kolkata")
	t.Setenv("REPORT_WORKERS", "2")
	t.Setenv("REPORT_SCHEDULE_ENABLED", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DefaultTimezone != "Asia/Kolkata" {
		t.Errorf("timezone = %q", cfg.DefaultTimezone)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if !cfg.Schedule.Enabled {
		t.Error("schedule should be enabled")
	}
}
