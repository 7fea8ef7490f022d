package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles report pipeline metrics.
type Metrics struct {
	JobsTotal      *prometheus.CounterVec
	JobDuration    prometheus.Histogram
	StoresReported prometheus.Gauge
	WarningsTotal  prometheus.Counter
	RowsTotal      prometheus.Counter
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storewatch_report_jobs_total",
				Help: "Total report jobs by terminal status",
			},
			[]string{"status"},
		),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storewatch_report_job_duration_seconds",
			Help:    "Report job duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		StoresReported: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storewatch_report_stores",
			Help: "Stores covered by the most recent completed report",
		}),
		WarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_report_warnings_total",
			Help: "Total per-store warnings emitted by report jobs",
		}),
		RowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_report_rows_total",
			Help: "Total report rows produced",
		}),
	}
	prometheus.MustRegister(
		m.JobsTotal,
		m.JobDuration,
		m.StoresReported,
		m.WarningsTotal,
		m.RowsTotal,
	)
	return m
}
