package metrics

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const dbQueryTimeout = 5 * time.Second

// registerDBMetrics registers gauges backed by COUNT queries, evaluated on scrape.
func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "report_jobs_running",
			Help: "Number of report jobs currently in the Running state",
		},
		func() float64 {
			return queryCount(db, logger,
				`SELECT COUNT(*) FROM report_jobs WHERE state = 'Running'`)
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "report_jobs_total",
			Help: "Total report jobs persisted",
		},
		func() float64 {
			return queryCount(db, logger,
				`SELECT COUNT(*) FROM report_jobs`)
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "monitored_stores",
			Help: "Number of distinct stores with status observations",
		},
		func() float64 {
			return queryCount(db, logger,
				`SELECT COUNT(DISTINCT store_id) FROM store_status`)
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), dbQueryTimeout)
	defer cancel()

	var count float64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("event=db_metric_query_failed error=%v", err)
		}
		return 0
	}
	return count
}
