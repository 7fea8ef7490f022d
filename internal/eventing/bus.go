package eventing

import (
	"context"
	"sync"
)

// InMemoryEventBus is a lightweight in-process event bus for report lifecycle
// events. Handlers run synchronously in publish order.
type InMemoryEventBus struct {
	mu sync.RWMutex

	completedHandlers []func(context.Context, ReportCompleted) error
	failedHandlers    []func(context.Context, ReportFailed) error
	envelopeHandlers  []func(context.Context, Envelope) error
}

// NewInMemoryEventBus constructs a new bus.
func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{}
}

// SubscribeReportCompleted registers a handler for ReportCompleted.
func (b *InMemoryEventBus) SubscribeReportCompleted(handler func(context.Context, ReportCompleted) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completedHandlers = append(b.completedHandlers, handler)
}

// PublishReportCompleted publishes a ReportCompleted event.
func (b *InMemoryEventBus) PublishReportCompleted(ctx context.Context, event ReportCompleted) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, ReportCompleted) error(nil), b.completedHandlers...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return b.publishEnvelope(ctx, event, event.JobID)
}

// SubscribeReportFailed registers a handler for ReportFailed.
func (b *InMemoryEventBus) SubscribeReportFailed(handler func(context.Context, ReportFailed) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failedHandlers = append(b.failedHandlers, handler)
}

// PublishReportFailed publishes a ReportFailed event.
func (b *InMemoryEventBus) PublishReportFailed(ctx context.Context, event ReportFailed) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, ReportFailed) error(nil), b.failedHandlers...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return b.publishEnvelope(ctx, event, event.JobID)
}

// SubscribeEnvelope registers a handler that receives every published event
// wrapped in an Envelope, useful for journaling.
func (b *InMemoryEventBus) SubscribeEnvelope(handler func(context.Context, Envelope) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopeHandlers = append(b.envelopeHandlers, handler)
}

func (b *InMemoryEventBus) publishEnvelope(ctx context.Context, event any, jobID string) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, Envelope) error(nil), b.envelopeHandlers...)
	b.mu.RUnlock()
	if len(handlers) == 0 {
		return nil
	}

	envelope, err := BuildEnvelope(event, Meta{JobID: jobID})
	if err != nil {
		return err
	}
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := handler(ctx, envelope); err != nil {
			return err
		}
	}
	return nil
}
