package application

import (
	"context"
	"log"
	"time"
)

// Scheduler triggers report jobs on a daily schedule.
type Scheduler struct {
	orchestrator *Orchestrator
	dailyAt      string
	logger       *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(orchestrator *Orchestrator, dailyAt string, logger *log.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		dailyAt:      dailyAt,
		logger:       logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.orchestrator == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	hour, minute, err := parseDailyAt(s.dailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func (s *Scheduler) runOnce(ctx context.Context) {
	job, err := s.orchestrator.Trigger(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("report schedule error: %v", err)
		}
		return
	}
	if s.logger != nil {
		s.logger.Printf("event=report_job_scheduled job_id=%s", job.ID)
	}
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
