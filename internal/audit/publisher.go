// Package audit records the application trail: draft checkpoints, step
// transitions, submissions, and admin decisions. Emission never blocks or
// fails the calling request.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher hands events to the background worker over a bounded channel.
// When the channel is full the event is dropped and logged, not queued.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher constructs a publisher feeding the given inbox.
func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger, now: time.Now}
}

// Emit enqueues an event for persistence. It returns immediately.
func (p *Publisher) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, event dropped",
			"action", event.Action,
			"actor", event.Actor,
		)
	}
}

// Worker consumes audit events from a channel and persists them. A store
// failure is logged and the worker keeps draining.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

// NewWorker constructs a worker draining the given inbox into the store.
func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("failed to persist audit event",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
