// Package service implements the review path: listing submitted applications
// and recording an approve/reject decision. A decision is final; there is no
// way back to pending from here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"agentportal/internal/application/metrics"
	"agentportal/internal/application/models"
	"agentportal/internal/application/store"
	"agentportal/internal/audit"
	"agentportal/internal/notify"
	dErrors "agentportal/pkg/domain-errors"
	"agentportal/pkg/platform/sentinel"
	"agentportal/pkg/requestcontext"
)

// ApplicationStore is the slice of the record store the review path uses.
type ApplicationStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Record, error)
	ListByStatus(ctx context.Context, status models.Status) ([]models.Record, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, d store.Decision) (models.Record, error)
}

// Notifier delivers the decision email. Failures are logged, never surfaced.
type Notifier interface {
	Send(ctx context.Context, kind notify.Kind, recipient string, data notify.Data) error
}

// AuditPublisher records decisions on the application trail.
type AuditPublisher interface {
	Emit(event audit.Event)
}

// Service coordinates listing and deciding.
type Service struct {
	records ApplicationStore
	logger  *slog.Logger

	notifier Notifier
	auditor  AuditPublisher
	metrics  *metrics.Metrics
}

// Option configures optional collaborators.
type Option func(*Service)

// WithNotifier wires decision notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithAuditPublisher wires the audit trail.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithMetrics wires decision metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(records ApplicationStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{records: records, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns applications, optionally filtered by status. An empty filter
// returns everything.
func (s *Service) List(ctx context.Context, status models.Status) ([]models.Record, error) {
	if status != "" && !validStatus(status) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", status)
	}

	records, err := s.records.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "applications could not be listed")
	}
	return records, nil
}

// Decide rules on a pending application. Only pending applications can be
// decided, and only approve or reject are rulings.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, ruling models.Status, reviewer, reason string) (models.Record, error) {
	if ruling != models.StatusApproved && ruling != models.StatusRejected {
		return models.Record{}, dErrors.Newf(dErrors.CodeValidation, "ruling must be %q or %q", models.StatusApproved, models.StatusRejected)
	}
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return models.Record{}, dErrors.New(dErrors.CodeValidation, "reviewer is required")
	}

	current, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Record{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "application could not be loaded")
	}
	if current.Status != models.StatusPending {
		return models.Record{}, dErrors.Newf(dErrors.CodeConflict, "application already %s", current.Status)
	}

	updated, err := s.records.UpdateStatus(ctx, id, store.Decision{
		Status:    ruling,
		Reviewer:  reviewer,
		Reason:    strings.TrimSpace(reason),
		DecidedAt: requestcontext.Now(ctx).UTC(),
	})
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision could not be recorded")
	}

	s.notifyDecision(ctx, updated)
	if s.auditor != nil {
		s.auditor.Emit(audit.Event{
			Actor:         reviewer,
			Action:        audit.ActionDecided,
			ApplicationID: updated.ID.String(),
			Detail:        string(ruling),
		})
	}
	if s.metrics != nil {
		s.metrics.RecordDecision(string(ruling))
	}

	s.logger.InfoContext(ctx, "application decided",
		"application_id", updated.ID,
		"status", updated.Status,
		"reviewer", reviewer,
	)
	return updated, nil
}

func (s *Service) notifyDecision(ctx context.Context, rec models.Record) {
	if s.notifier == nil {
		return
	}

	kind := notify.KindApplicationApproved
	if rec.Status == models.StatusRejected {
		kind = notify.KindApplicationRejected
	}

	err := s.notifier.Send(ctx, kind, rec.Email, notify.Data{
		Name:          rec.Draft.Personal.FirstName,
		ApplicationID: rec.ID.String(),
		Reason:        rec.DecisionReason,
	})
	if s.metrics != nil {
		s.metrics.RecordNotification(string(kind), err)
	}
	if err != nil {
		s.logger.Warn("decision notification failed",
			"kind", string(kind),
			"email", rec.Email,
			"error", err,
		)
	}
}

func validStatus(status models.Status) bool {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		return true
	}
	return false
}
