package eventing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBusDeliversTypedAndEnvelope(t *testing.T) {
	bus := NewInMemoryEventBus()

	var typed []ReportCompleted
	bus.SubscribeReportCompleted(func(_ context.Context, event ReportCompleted) error {
		typed = append(typed, event)
		return nil
	})

	var envelopes []Envelope
	bus.SubscribeEnvelope(func(_ context.Context, envelope Envelope) error {
		envelopes = append(envelopes, envelope)
		return nil
	})

	event := ReportCompleted{
		JobID:      "rpt-1",
		StoreCount: 3,
		OccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := bus.PublishReportCompleted(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(typed) != 1 || typed[0].JobID != "rpt-1" {
		t.Fatalf("typed handler not invoked: %+v", typed)
	}
	if len(envelopes) != 1 {
		t.Fatalf("envelope handler not invoked: %+v", envelopes)
	}
	env := envelopes[0]
	if env.JobID != "rpt-1" {
		t.Errorf("envelope job id = %q", env.JobID)
	}
	if env.EventID == "" {
		t.Error("envelope event id empty")
	}
	if env.EventType != "eventing.ReportCompleted" {
		t.Errorf("envelope event type = %q", env.EventType)
	}
	if !env.OccurredAt.Equal(event.OccurredAt) {
		t.Errorf("envelope occurred_at = %v", env.OccurredAt)
	}
}

func TestBusHandlerErrorAborts(t *testing.T) {
	bus := NewInMemoryEventBus()
	wantErr := errors.New("handler failed")
	bus.SubscribeReportFailed(func(_ context.Context, _ ReportFailed) error {
		return wantErr
	})

	invoked := false
	bus.SubscribeReportFailed(func(_ context.Context, _ ReportFailed) error {
		invoked = true
		return nil
	})

	err := bus.PublishReportFailed(context.Background(), ReportFailed{JobID: "rpt-2"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if invoked {
		t.Error("second handler should not run after the first fails")
	}
}

func TestBuildEnvelopeDefaults(t *testing.T) {
	env, err := BuildEnvelope(ReportFailed{JobID: "rpt-3", Reason: "cancelled"}, Meta{})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.JobID != "rpt-3" {
		t.Errorf("job id = %q", env.JobID)
	}
	if env.CorrelationID != env.EventID {
		t.Errorf("correlation id should default to event id")
	}
	if env.SchemaVersion != 1 {
		t.Errorf("schema version = %d", env.SchemaVersion)
	}
	if _, err := BuildEnvelope(nil, Meta{}); err == nil {
		t.Error("nil event should fail")
	}
}
