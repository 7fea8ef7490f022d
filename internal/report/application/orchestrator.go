package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	catalog "store-monitoring/internal/catalog/domain"
	"store-monitoring/internal/eventing"
	observations "store-monitoring/internal/observations/domain"
	report "store-monitoring/internal/report/domain"
	reportmetrics "store-monitoring/internal/report/metrics"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// NewJobID generates a random report job id.
func NewJobID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "rpt-" + hex.EncodeToString(buf)
}

// Orchestrator runs report jobs: it freezes the reference instant, fans the
// per-store computation out over a bounded worker pool and persists the
// finished rows together with the terminal job state.
type Orchestrator struct {
	jobs     report.JobRepository
	samples  observations.Repository
	resolver *catalog.Resolver
	bus      *eventing.InMemoryEventBus
	metrics  *reportmetrics.Metrics
	logger   *log.Logger
	clock    Clock
	workers  int

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	running sync.WaitGroup
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(
	jobs report.JobRepository,
	samples observations.Repository,
	resolver *catalog.Resolver,
	bus *eventing.InMemoryEventBus,
	metrics *reportmetrics.Metrics,
	logger *log.Logger,
	clock Clock,
	workers int,
) (*Orchestrator, error) {
	if jobs == nil {
		return nil, errors.New("report orchestrator: nil job repository")
	}
	if samples == nil {
		return nil, errors.New("report orchestrator: nil observation repository")
	}
	if resolver == nil {
		return nil, errors.New("report orchestrator: nil resolver")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if workers <= 0 {
		workers = 8
	}
	return &Orchestrator{
		jobs:     jobs,
		samples:  samples,
		resolver: resolver,
		bus:      bus,
		metrics:  metrics,
		logger:   logger,
		clock:    clock,
		workers:  workers,
		cancels:  make(map[string]context.CancelFunc),
	}, nil
}

// Trigger starts a new report job and returns it immediately. Every trigger
// creates an independent job; concurrent runs never merge or dedupe.
func (o *Orchestrator) Trigger(ctx context.Context) (*report.Job, error) {
	if o == nil {
		return nil, errors.New("report orchestrator: nil")
	}
	job, err := report.NewJob(NewJobID(), o.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	// The job outlives the trigger request.
	runCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancels[job.ID] = cancel
	o.mu.Unlock()

	o.running.Add(1)
	go o.run(runCtx, job)

	o.logf("report_job_start", job.ID, "")
	return job, nil
}

// Status returns a job by id.
func (o *Orchestrator) Status(ctx context.Context, id string) (*report.Job, error) {
	return o.jobs.Get(ctx, id)
}

// Result returns a completed job and its rows. A still-running job yields
// ErrNotReady, a failed job ErrJobFailed.
func (o *Orchestrator) Result(ctx context.Context, id string) (*report.Job, []report.Row, error) {
	job, err := o.jobs.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	switch job.State {
	case report.StateRunning:
		return job, nil, report.ErrNotReady
	case report.StateFailed:
		return job, nil, report.ErrJobFailed
	}
	rows, err := o.jobs.Rows(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return job, rows, nil
}

// Cancel aborts a running job. The job finishes as Failed("cancelled").
func (o *Orchestrator) Cancel(ctx context.Context, id string) error {
	o.mu.Lock()
	cancel, ok := o.cancels[id]
	o.mu.Unlock()
	if ok {
		cancel()
		return nil
	}
	job, err := o.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.State != report.StateRunning {
		return report.ErrJobFinished
	}
	return nil
}

// Wait blocks until all in-flight jobs have finished. Intended for shutdown.
func (o *Orchestrator) Wait() {
	o.running.Wait()
}

type storeResult struct {
	row     report.Row
	warning string
	err     error
}

func (o *Orchestrator) run(ctx context.Context, job *report.Job) {
	defer o.running.Done()
	defer func() {
		o.mu.Lock()
		delete(o.cancels, job.ID)
		o.mu.Unlock()
	}()

	started := o.clock.Now().UTC()

	frozen, err := o.samples.MaxTimestamp(ctx)
	if err != nil {
		o.fail(job, started, failReason(ctx, fmt.Sprintf("freeze reference time: %v", err)))
		return
	}
	if frozen.IsZero() {
		// No observations yet: anchor at wall time so the job still
		// completes with an empty report.
		frozen = o.clock.Now().UTC()
	}
	windows := report.NewWindows(frozen)

	ids, err := o.samples.StoreIDs(ctx)
	if err != nil {
		o.fail(job, started, failReason(ctx, fmt.Sprintf("list stores: %v", err)))
		return
	}

	rows, warnings, runErr := o.computeAll(ctx, ids, windows)
	if ctx.Err() != nil {
		o.fail(job, started, "cancelled")
		return
	}
	if runErr != nil {
		o.fail(job, started, runErr.Error())
		return
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].StoreID < rows[j].StoreID })

	ended := o.clock.Now().UTC()
	if err := job.Complete(ended, frozen, len(rows), warnings); err != nil {
		o.logf("report_job_complete_rejected", job.ID, err.Error())
		return
	}
	if err := o.jobs.Complete(context.Background(), job, rows); err != nil {
		o.logf("report_job_persist_failed", job.ID, err.Error())
		return
	}

	if o.metrics != nil {
		o.metrics.JobsTotal.WithLabelValues(string(report.StateComplete)).Inc()
		o.metrics.JobDuration.Observe(ended.Sub(started).Seconds())
		o.metrics.StoresReported.Set(float64(len(rows)))
		o.metrics.RowsTotal.Add(float64(len(rows)))
		o.metrics.WarningsTotal.Add(float64(len(warnings)))
	}
	if o.bus != nil {
		_ = o.bus.PublishReportCompleted(context.Background(), eventing.ReportCompleted{
			JobID:      job.ID,
			FrozenNow:  frozen,
			StoreCount: len(rows),
			Warnings:   len(warnings),
			OccurredAt: ended,
		})
	}
	o.logf("report_job_complete", job.ID, "")
}

// computeAll fans the per-store walk out over the worker pool. The first
// repository error aborts the whole run; schedule warnings are collected per
// store and never abort.
func (o *Orchestrator) computeAll(ctx context.Context, ids []string, windows report.Windows) ([]report.Row, []string, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	idsCh := make(chan string)
	results := make(chan storeResult)

	var workers sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for storeID := range idsCh {
				if runCtx.Err() != nil {
					continue
				}
				row, warning, err := o.computeStore(runCtx, storeID, windows)
				results <- storeResult{row: row, warning: warning, err: err}
			}
		}()
	}
	go func() {
		defer close(idsCh)
		for _, id := range ids {
			select {
			case idsCh <- id:
			case <-runCtx.Done():
				return
			}
		}
	}()
	go func() {
		workers.Wait()
		close(results)
	}()

	var rows []report.Row
	var warnings []string
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				cancel()
			}
			continue
		}
		rows = append(rows, result.row)
		if result.warning != "" {
			warnings = append(warnings, result.warning)
		}
	}
	return rows, warnings, firstErr
}

func (o *Orchestrator) computeStore(ctx context.Context, storeID string, windows report.Windows) (report.Row, string, error) {
	intervals, warning, err := o.resolver.Resolve(ctx, storeID, windows.WeekStart, windows.Now)
	if err != nil {
		return report.Row{}, "", fmt.Errorf("store %s: %w", storeID, err)
	}
	if warning != "" {
		warning = fmt.Sprintf("store %s: %s", storeID, warning)
	}

	samples, err := o.samples.ListRange(ctx, storeID, windows.WeekStart.Add(-report.SeedLookback), windows.Now)
	if err != nil {
		return report.Row{}, "", fmt.Errorf("store %s: %w", storeID, err)
	}
	timeline := observations.BuildTimeline(samples)

	totals := report.Compute(intervals, timeline, windows)
	return report.NewRow(storeID, totals), warning, nil
}

func (o *Orchestrator) fail(job *report.Job, started time.Time, reason string) {
	ended := o.clock.Now().UTC()
	if err := job.Fail(ended, reason); err != nil {
		o.logf("report_job_fail_rejected", job.ID, err.Error())
		return
	}
	if err := o.jobs.Fail(context.Background(), job); err != nil {
		o.logf("report_job_persist_failed", job.ID, err.Error())
	}
	if o.metrics != nil {
		o.metrics.JobsTotal.WithLabelValues(string(report.StateFailed)).Inc()
		o.metrics.JobDuration.Observe(ended.Sub(started).Seconds())
	}
	if o.bus != nil {
		_ = o.bus.PublishReportFailed(context.Background(), eventing.ReportFailed{
			JobID:      job.ID,
			Reason:     reason,
			OccurredAt: ended,
		})
	}
	o.logf("report_job_failed", job.ID, reason)
}

func failReason(ctx context.Context, msg string) string {
	if ctx.Err() != nil {
		return "cancelled"
	}
	return msg
}

func (o *Orchestrator) logf(event, jobID, errMsg string) {
	if o.logger == nil {
		return
	}
	o.logger.Printf("event=%s job_id=%s correlation_id=%s error=%s", event, jobID, jobID, errMsg)
}
