// Package service orchestrates the application lifecycle: session hydration,
// draft checkpoints, step navigation and the final submission pipeline.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agentportal/internal/application/metrics"
	"agentportal/internal/application/models"
	"agentportal/internal/audit"
	"agentportal/internal/notify"
	"agentportal/internal/platform/config"
	"agentportal/internal/wizard"
	dErrors "agentportal/pkg/domain-errors"
	"agentportal/pkg/platform/sentinel"
	"agentportal/pkg/requestcontext"
)

// DraftStore is the slice of the draft store the orchestrator uses.
type DraftStore interface {
	Load(ctx context.Context, email string) (models.Draft, time.Time, error)
	Save(ctx context.Context, email string, d models.Draft) (time.Time, error)
	Delete(ctx context.Context, email string) error
}

// ApplicationStore is the slice of the record store the orchestrator uses.
type ApplicationStore interface {
	Insert(ctx context.Context, rec models.Record) (models.Record, error)
	FindByEmail(ctx context.Context, email string) (models.Record, error)
}

// Notifier delivers applicant-facing email. Failures are logged, never
// surfaced.
type Notifier interface {
	Send(ctx context.Context, kind notify.Kind, recipient string, data notify.Data) error
}

// AuditPublisher records lifecycle events on the application trail.
type AuditPublisher interface {
	Emit(event audit.Event)
}

// Session is what the form renders from: the draft, its projected progress,
// and when it was last checkpointed. SavedAt is nil for a brand-new session.
type Session struct {
	Draft    models.Draft
	Progress wizard.Progress
	SavedAt  *time.Time
}

// GateError reports a step gate refusal with the unmet fields.
type GateError struct {
	Step   int
	Fields []wizard.FieldError
}

func (e *GateError) Error() string {
	return "step requirements not met"
}

// Service coordinates stores, notification and audit around the wizard rules.
type Service struct {
	drafts  DraftStore
	records ApplicationStore
	logger  *slog.Logger
	cfg     config.SubmitConfig

	notifier Notifier
	auditor  AuditPublisher
	metrics  *metrics.Metrics

	sleep func(time.Duration)
}

// Option configures optional collaborators.
type Option func(*Service)

// WithNotifier wires applicant email notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithAuditPublisher wires the audit trail.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithMetrics wires application metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(drafts DraftStore, records ApplicationStore, cfg config.SubmitConfig, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		drafts:  drafts,
		records: records,
		cfg:     cfg,
		logger:  logger,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession hydrates the applicant's working state: the saved draft when
// one exists, otherwise a fresh draft with documented defaults. Absence is
// the normal first-visit case, not an error.
func (s *Service) StartSession(ctx context.Context) (Session, error) {
	email, err := s.applicantEmail(ctx)
	if err != nil {
		return Session{}, err
	}

	d, savedAt, err := s.drafts.Load(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			fresh := models.NewDraft(email)
			return Session{Draft: fresh, Progress: wizard.Project(fresh.CurrentStep)}, nil
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "draft could not be loaded")
	}
	return Session{Draft: d, Progress: wizard.Project(d.CurrentStep), SavedAt: &savedAt}, nil
}

// SaveProgress is the manual checkpoint: it applies the section update and
// persists, regardless of whether any step gate is satisfied. The current
// step is not movable through a manual save.
func (s *Service) SaveProgress(ctx context.Context, update models.SectionUpdate) (Session, error) {
	email, err := s.applicantEmail(ctx)
	if err != nil {
		return Session{}, err
	}

	update.CurrentStep = nil

	d, err := s.loadOrNew(ctx, email)
	if err != nil {
		return Session{}, err
	}

	next, err := wizard.ApplyUpdate(d, update)
	if err != nil {
		return Session{}, err
	}

	return s.checkpoint(ctx, email, next, audit.ActionDraftSaved)
}

// Advance applies the section update, evaluates the current step's gate, and
// on success moves one step forward and checkpoints. A gate refusal leaves
// the saved draft untouched.
func (s *Service) Advance(ctx context.Context, update models.SectionUpdate) (Session, error) {
	email, err := s.applicantEmail(ctx)
	if err != nil {
		return Session{}, err
	}

	update.CurrentStep = nil

	d, err := s.loadOrNew(ctx, email)
	if err != nil {
		return Session{}, err
	}

	next, err := wizard.ApplyUpdate(d, update)
	if err != nil {
		return Session{}, err
	}

	target, fields := wizard.Advance(next, next.CurrentStep)
	if len(fields) > 0 {
		s.recordGateRefusal(next.CurrentStep)
		return Session{}, &GateError{Step: next.CurrentStep, Fields: fields}
	}

	next.CurrentStep = target
	return s.checkpoint(ctx, email, next, audit.ActionStepAdvanced)
}

// Retreat saves the section update and moves one step back. Going back is
// unconditional and never discards entered data.
func (s *Service) Retreat(ctx context.Context, update models.SectionUpdate) (Session, error) {
	email, err := s.applicantEmail(ctx)
	if err != nil {
		return Session{}, err
	}

	update.CurrentStep = nil

	d, err := s.loadOrNew(ctx, email)
	if err != nil {
		return Session{}, err
	}

	next, err := wizard.ApplyUpdate(d, update)
	if err != nil {
		return Session{}, err
	}

	next.CurrentStep = wizard.Retreat(next.CurrentStep)
	return s.checkpoint(ctx, email, next, audit.ActionStepRetreated)
}

// Submit runs the final gate and the persistence pipeline. The already-
// submitted check runs before anything else so a second submission never
// reaches the retry loop. On persistence success the draft is deleted, the
// received notification fires, and the audit trail is updated; on exhaustion
// the draft is retained and the last attempt's error is surfaced.
func (s *Service) Submit(ctx context.Context) (models.Record, error) {
	email, err := s.applicantEmail(ctx)
	if err != nil {
		return models.Record{}, err
	}

	if _, err := s.records.FindByEmail(ctx, email); err == nil {
		s.recordSubmission("conflict")
		return models.Record{}, dErrors.New(dErrors.CodeConflict, "application already submitted")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "submission state could not be checked")
	}

	d, _, err := s.drafts.Load(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Record{}, dErrors.New(dErrors.CodeNotFound, "no application draft to submit")
		}
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "draft could not be loaded")
	}

	if fields := wizard.CanSubmit(d); len(fields) > 0 {
		s.recordGateRefusal(d.CurrentStep)
		return models.Record{}, &GateError{Step: d.CurrentStep, Fields: fields}
	}

	// Final checkpoint so nothing entered since the last save can be lost.
	if _, err := s.drafts.Save(ctx, email, d); err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "progress not saved")
	}

	rec := models.Record{
		ID:             uuid.New(),
		Email:          email,
		Status:         models.StatusPending,
		Draft:          d,
		IdempotencyKey: uuid.NewString(),
		ClientIP:       requestcontext.ClientIP(ctx),
		UserAgent:      requestcontext.UserAgent(ctx),
		CreatedAt:      requestcontext.Now(ctx).UTC(),
	}

	start := time.Now()
	stored, err := s.insertWithRetry(ctx, rec)
	s.observeSubmitDuration(start)
	if err != nil {
		return models.Record{}, err
	}

	if err := s.drafts.Delete(ctx, email); err != nil {
		s.logger.Warn("submitted draft could not be cleaned up",
			"email", email,
			"error", err,
		)
	}

	s.sendNotification(ctx, notify.KindApplicationReceived, stored, "")
	s.emitAudit(ctx, audit.Event{
		Actor:         email,
		Action:        audit.ActionSubmitted,
		ApplicationID: stored.ID.String(),
	})
	s.recordSubmission("accepted")

	return stored, nil
}

// Status reports the submitted application's review state.
func (s *Service) Status(ctx context.Context) (models.Record, error) {
	email, err := s.applicantEmail(ctx)
	if err != nil {
		return models.Record{}, err
	}

	rec, err := s.records.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Record{}, dErrors.New(dErrors.CodeNotFound, "no submitted application")
		}
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "application could not be loaded")
	}
	return rec, nil
}

// insertWithRetry attempts the insert a fixed number of times with a fixed
// delay between attempts. The idempotency key on the record makes every
// attempt the same submission, so a success that was reported as a failure
// cannot produce a second record on the next attempt.
func (s *Service) insertWithRetry(ctx context.Context, rec models.Record) (models.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		if s.metrics != nil {
			s.metrics.SubmitAttempts.Inc()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		stored, err := s.records.Insert(attemptCtx, rec)
		cancel()
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			s.recordSubmission("conflict")
			return models.Record{}, dErrors.New(dErrors.CodeConflict, "application already submitted")
		}

		lastErr = err
		s.logger.Warn("submission attempt failed",
			"email", rec.Email,
			"attempt", attempt,
			"error", err,
		)
		if attempt < s.cfg.Attempts {
			s.sleep(s.cfg.RetryDelay)
		}
	}

	s.recordSubmission("failed")
	return models.Record{}, dErrors.Wrap(lastErr, dErrors.CodeRetryable, "submission could not be recorded, please try again")
}

// checkpoint persists the draft and reports the refreshed session. A store
// failure is surfaced as "not saved" and leaves the previous checkpoint in
// place. SavedAt is the timestamp the store recorded, so it matches what a
// later Load returns.
func (s *Service) checkpoint(ctx context.Context, email string, d models.Draft, action string) (Session, error) {
	savedAt, err := s.drafts.Save(ctx, email, d)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "progress not saved")
	}

	if s.metrics != nil {
		s.metrics.DraftsSaved.Inc()
	}
	s.emitAudit(ctx, audit.Event{Actor: email, Action: action})

	return Session{Draft: d, Progress: wizard.Project(d.CurrentStep), SavedAt: &savedAt}, nil
}

func (s *Service) loadOrNew(ctx context.Context, email string) (models.Draft, error) {
	d, _, err := s.drafts.Load(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.NewDraft(email), nil
		}
		return models.Draft{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "draft could not be loaded")
	}
	return d, nil
}

func (s *Service) applicantEmail(ctx context.Context) (string, error) {
	email := requestcontext.ApplicantEmail(ctx)
	if email == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "applicant identity is required")
	}
	return email, nil
}

func (s *Service) sendNotification(ctx context.Context, kind notify.Kind, rec models.Record, reason string) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.Send(ctx, kind, rec.Email, notify.Data{
		Name:          rec.Draft.Personal.FirstName,
		ApplicationID: rec.ID.String(),
		Reason:        reason,
	})
	if s.metrics != nil {
		s.metrics.RecordNotification(string(kind), err)
	}
	if err != nil {
		s.logger.Warn("notification delivery failed",
			"kind", string(kind),
			"email", rec.Email,
			"error", err,
		)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	s.auditor.Emit(event)
}

func (s *Service) recordGateRefusal(step int) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordGateRefusal(wizard.Steps[step].ID)
}

func (s *Service) recordSubmission(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSubmission(outcome)
}

func (s *Service) observeSubmitDuration(start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.SubmitDuration.Observe(time.Since(start).Seconds())
}
