package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"store-monitoring/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type config struct {
	dsn           string
	statusPath    string
	hoursPath     string
	timezonesPath string
	initSchema    bool
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	metrics.Init(nil, nil)

	if cfg.initSchema {
		log.Printf("applying schema")
		if err := initSchema(ctx, db); err != nil {
			log.Fatalf("init schema: %v", err)
		}
	}

	if cfg.timezonesPath != "" {
		count, err := loadTimezones(ctx, db, cfg.timezonesPath)
		if err != nil {
			metrics.IncIngestError("timezones")
			log.Fatalf("load timezones: %v", err)
		}
		metrics.AddIngestRows("store_timezones", metrics.ResultSuccess, count)
		log.Printf("loaded store_timezones rows=%d", count)
	}

	if cfg.hoursPath != "" {
		count, err := loadBusinessHours(ctx, db, cfg.hoursPath)
		if err != nil {
			metrics.IncIngestError("business_hours")
			log.Fatalf("load business hours: %v", err)
		}
		metrics.AddIngestRows("business_hours", metrics.ResultSuccess, count)
		log.Printf("loaded business_hours rows=%d", count)
	}

	if cfg.statusPath != "" {
		count, err := loadStoreStatus(ctx, db, cfg.statusPath)
		if err != nil {
			metrics.IncIngestError("store_status")
			log.Fatalf("load store status: %v", err)
		}
		metrics.AddIngestRows("store_status", metrics.ResultSuccess, count)
		log.Printf("loaded store_status rows=%d", count)
	}

	log.Printf("ingest completed")
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.StringVar(&cfg.statusPath, "store-status", envOrDefault("STORE_STATUS_CSV", ""), "path to store status CSV")
	flag.StringVar(&cfg.hoursPath, "business-hours", envOrDefault("BUSINESS_HOURS_CSV", ""), "path to business hours CSV")
	flag.StringVar(&cfg.timezonesPath, "timezones", envOrDefault("TIMEZONES_CSV", ""), "path to timezones CSV")
	flag.BoolVar(&cfg.initSchema, "init-schema", false, "create tables before loading")
	flag.Parse()
	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func initSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS store_timezones (
	store_id TEXT PRIMARY KEY,
	timezone_str TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS business_hours (
	store_id TEXT NOT NULL,
	day_of_week INT NOT NULL,
	open_minute INT NOT NULL,
	close_minute INT NOT NULL,
	PRIMARY KEY (store_id, day_of_week, open_minute)
)`,
		`CREATE TABLE IF NOT EXISTS store_status (
	store_id TEXT NOT NULL,
	timestamp_utc TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (store_id, timestamp_utc)
)`,
		`CREATE TABLE IF NOT EXISTS report_jobs (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	frozen_now TIMESTAMPTZ,
	store_count BIGINT,
	warnings TEXT,
	error TEXT
)`,
		`CREATE TABLE IF NOT EXISTS report_rows (
	job_id TEXT NOT NULL REFERENCES report_jobs(id),
	store_id TEXT NOT NULL,
	uptime_last_hour_minutes BIGINT NOT NULL,
	uptime_last_day_hours DOUBLE PRECISION NOT NULL,
	uptime_last_week_hours DOUBLE PRECISION NOT NULL,
	downtime_last_hour_minutes BIGINT NOT NULL,
	downtime_last_day_hours DOUBLE PRECISION NOT NULL,
	downtime_last_week_hours DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (job_id, store_id)
)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor TEXT,
	role TEXT,
	action TEXT NOT NULL,
	resource_type TEXT,
	resource_id TEXT,
	metadata JSONB,
	payload_digest TEXT,
	ip TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_store_status_ts ON store_status (timestamp_utc)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func loadTimezones(ctx context.Context, db *sql.DB, path string) (int, error) {
	const upsert = `
INSERT INTO store_timezones (store_id, timezone_str)
VALUES ($1, $2)
ON CONFLICT (store_id) DO UPDATE SET timezone_str = EXCLUDED.timezone_str`

	return loadFile(ctx, db, path, upsert, func(header map[string]int, record []string) ([]any, error) {
		storeID, err := field(header, record, "store_id")
		if err != nil {
			return nil, err
		}
		zone, err := field(header, record, "timezone_str")
		if err != nil {
			return nil, err
		}
		return []any{storeID, zone}, nil
	})
}

func loadBusinessHours(ctx context.Context, db *sql.DB, path string) (int, error) {
	const upsert = `
INSERT INTO business_hours (store_id, day_of_week, open_minute, close_minute)
VALUES ($1, $2, $3, $4)
ON CONFLICT (store_id, day_of_week, open_minute) DO UPDATE SET close_minute = EXCLUDED.close_minute`

	return loadFile(ctx, db, path, upsert, func(header map[string]int, record []string) ([]any, error) {
		storeID, err := field(header, record, "store_id")
		if err != nil {
			return nil, err
		}
		dayRaw, err := field(header, record, "dayOfWeek", "day_of_week")
		if err != nil {
			return nil, err
		}
		day, err := strconv.Atoi(dayRaw)
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("invalid day of week %q", dayRaw)
		}
		openRaw, err := field(header, record, "start_time_local")
		if err != nil {
			return nil, err
		}
		closeRaw, err := field(header, record, "end_time_local")
		if err != nil {
			return nil, err
		}
		openMinute, err := parseClockMinute(openRaw)
		if err != nil {
			return nil, err
		}
		closeMinute, err := parseClockMinute(closeRaw)
		if err != nil {
			return nil, err
		}
		return []any{storeID, day, openMinute, closeMinute}, nil
	})
}

func loadStoreStatus(ctx context.Context, db *sql.DB, path string) (int, error) {
	const upsert = `
INSERT INTO store_status (store_id, timestamp_utc, status)
VALUES ($1, $2, $3)
ON CONFLICT (store_id, timestamp_utc) DO UPDATE SET status = EXCLUDED.status`

	return loadFile(ctx, db, path, upsert, func(header map[string]int, record []string) ([]any, error) {
		storeID, err := field(header, record, "store_id")
		if err != nil {
			return nil, err
		}
		tsRaw, err := field(header, record, "timestamp_utc")
		if err != nil {
			return nil, err
		}
		ts, err := parseTimestamp(tsRaw)
		if err != nil {
			return nil, err
		}
		status, err := field(header, record, "status")
		if err != nil {
			return nil, err
		}
		status = strings.ToLower(strings.TrimSpace(status))
		if status != "active" && status != "inactive" {
			return nil, fmt.Errorf("invalid status %q", status)
		}
		return []any{storeID, ts, status}, nil
	})
}

type rowMapper func(header map[string]int, record []string) ([]any, error)

func loadFile(ctx context.Context, db *sql.DB, path, upsert string, mapRow rowMapper) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	headerRecord, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(headerRecord))
	for i, name := range headerRecord {
		header[strings.TrimSpace(name)] = i
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		args, err := mapRow(header, record)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func field(header map[string]int, record []string, names ...string) (string, error) {
	for _, name := range names {
		idx, ok := header[name]
		if !ok || idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		if value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("missing column %s", names[0])
}

// parseClockMinute accepts HH:MM or HH:MM:SS local clock values.
func parseClockMinute(value string) (int, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04:05", "15:04"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.Hour()*60 + parsed.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid clock value %q", value)
}

// parseTimestamp accepts RFC3339 and the dataset's "2006-01-02 15:04:05.999999 UTC" form.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 UTC",
		"2006-01-02 15:04:05.999999999 MST",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
