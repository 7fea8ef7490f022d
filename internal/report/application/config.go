package application

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines report pipeline configuration.
type Config struct {
	DefaultTimezone string         `yaml:"default_timezone"`
	Workers         int            `yaml:"workers"`
	Schedule        ScheduleConfig `yaml:"schedule"`
}

// ScheduleConfig defines the optional daily trigger.
type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled"`
	DailyAt string `yaml:"daily_at"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		DefaultTimezone: getenvDefault("REPORT_DEFAULT_TIMEZONE", "America/Chicago"),
		Workers:         getenvIntDefault("REPORT_WORKERS", 8),
	}

	if path := os.Getenv("REPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Schedule.DailyAt == "" {
		cfg.Schedule.DailyAt = getenvDefault("REPORT_DAILY_AT", "02:00")
	}
	if !cfg.Schedule.Enabled {
		cfg.Schedule.Enabled = strings.EqualFold(os.Getenv("REPORT_SCHEDULE_ENABLED"), "true")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.DefaultTimezone == "" {
		return cfg, errors.New("report config: default timezone required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
