package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentportal/internal/application/draft"
	"agentportal/internal/application/models"
	"agentportal/internal/application/store"
	"agentportal/internal/audit"
	"agentportal/internal/notify"
	"agentportal/internal/platform/config"
	"agentportal/internal/wizard"
	dErrors "agentportal/pkg/domain-errors"
	"agentportal/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSubmitConfig() config.SubmitConfig {
	return config.SubmitConfig{
		Attempts:       3,
		RetryDelay:     time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

func applicantCtx(email string) context.Context {
	return requestcontext.WithApplicant(context.Background(), email, "Ana Reyes")
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func planPtr(p models.Plan) *models.Plan { return &p }

// completePersonal fills every field the personal-info gate requires.
func completePersonal() models.PersonalInfo {
	return models.PersonalInfo{
		FirstName:   "Ana",
		LastName:    "Reyes",
		Phone:       "+639171234567",
		DateOfBirth: "1992-06-15",
		Nationality: "Filipino",
		CivilStatus: "single",
		Address: models.Address{
			Country: models.DefaultCountry,
			Region:  "NCR",
			City:    "Quezon City",
			Street:  "12 Maginhawa St",
			Zip:     "1101",
		},
	}
}

func completeExperience() models.BusinessExperience {
	return models.BusinessExperience{
		HasExistingBusiness: boolPtr(false),
		HasAgentExperience:  boolPtr(true),
	}
}

func completeLocation() models.BusinessLocation {
	return models.BusinessLocation{
		Proposed:  "storefront",
		Region:    "NCR",
		City:      "Quezon City",
		Street:    "35 Anonas Ext",
		Zip:       "1102",
		Latitude:  floatPtr(14.6349),
		Longitude: floatPtr(121.0443),
	}
}

func completeRequirements() models.Requirements {
	return models.Requirements{
		Signature:         "data:image/png;base64,iVBOR",
		CertifiedAccurate: true,
		AgreedToTerms:     true,
		Files: map[string]models.FileRef{
			models.SlotIDFront:        {StorageKey: "k1", Name: "front.jpg"},
			models.SlotIDBack:         {StorageKey: "k2", Name: "back.jpg"},
			models.SlotSelfieWithID:   {StorageKey: "k3", Name: "selfie.jpg"},
			models.SlotProofOfAddress: {StorageKey: "k4", Name: "bill.pdf"},
		},
	}
}

// submittableDraft is a fully valid draft parked on the last applicant step.
func submittableDraft(email string) models.Draft {
	d := models.NewDraft(email)
	d.CurrentStep = wizard.LastApplicantStep
	d.Personal = completePersonal()
	d.Experience = completeExperience()
	d.Location = completeLocation()
	d.Package = models.PlanStandard
	d.Requirement = completeRequirements()
	return d
}

// flakyStore fails the first failures inserts, then delegates.
type flakyStore struct {
	*store.InMemoryStore
	failures int
	attempts int
}

func (f *flakyStore) Insert(ctx context.Context, rec models.Record) (models.Record, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return models.Record{}, errors.New("sink unavailable")
	}
	return f.InMemoryStore.Insert(ctx, rec)
}

type capturedNotification struct {
	kind      notify.Kind
	recipient string
	data      notify.Data
}

type fakeNotifier struct {
	sent []capturedNotification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, kind notify.Kind, recipient string, data notify.Data) error {
	f.sent = append(f.sent, capturedNotification{kind: kind, recipient: recipient, data: data})
	return f.err
}

type captureAuditor struct {
	events []audit.Event
}

func (c *captureAuditor) Emit(event audit.Event) {
	c.events = append(c.events, event)
}

type failingDraftStore struct {
	*draft.InMemoryStore
	saveErr error
}

func (f *failingDraftStore) Save(ctx context.Context, email string, d models.Draft) (time.Time, error) {
	if f.saveErr != nil {
		return time.Time{}, f.saveErr
	}
	return f.InMemoryStore.Save(ctx, email, d)
}

// seedDraft parks a draft in the store, as if the applicant had saved earlier.
func seedDraft(t *testing.T, drafts *draft.InMemoryStore, email string, d models.Draft) {
	t.Helper()
	_, err := drafts.Save(context.Background(), email, d)
	require.NoError(t, err)
}

func newService(t *testing.T, opts ...Option) (*Service, *draft.InMemoryStore, *store.InMemoryStore) {
	t.Helper()
	drafts := draft.NewInMemoryStore()
	records := store.NewInMemoryStore()
	svc := New(drafts, records, testSubmitConfig(), testLogger(), opts...)
	svc.sleep = func(time.Duration) {}
	return svc, drafts, records
}

func TestStartSessionNewApplicant(t *testing.T) {
	svc, _, _ := newService(t)

	session, err := svc.StartSession(applicantCtx("a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", session.Draft.Email)
	assert.Equal(t, 0, session.Draft.CurrentStep)
	assert.Equal(t, models.DefaultCountry, session.Draft.Personal.Address.Country)
	assert.Empty(t, session.Draft.Personal.Nationality)
	assert.Empty(t, session.Draft.Personal.CivilStatus)
	assert.Nil(t, session.SavedAt)
	assert.Equal(t, wizard.ApplicantStepCount(), session.Progress.Total)
}

func TestStartSessionRequiresIdentity(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.StartSession(context.Background())
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestSaveProgressIsGateIndependent(t *testing.T) {
	svc, drafts, _ := newService(t)

	// Only a first name: nowhere near satisfying the step gate.
	session, err := svc.SaveProgress(applicantCtx("a@x.com"), models.SectionUpdate{
		Personal: &models.PersonalInfo{FirstName: "Ana"},
	})
	require.NoError(t, err)
	require.NotNil(t, session.SavedAt)

	saved, _, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", saved.Personal.FirstName)
}

func TestSaveProgressCannotMoveStep(t *testing.T) {
	svc, drafts, _ := newService(t)

	target := 3
	_, err := svc.SaveProgress(applicantCtx("a@x.com"), models.SectionUpdate{
		CurrentStep: &target,
		Personal:    &models.PersonalInfo{FirstName: "Ana"},
	})
	require.NoError(t, err)

	saved, _, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, saved.CurrentStep)
}

func TestSaveProgressReportsStoreSavedAt(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	drafts := draft.NewInMemoryStore().WithClock(func() time.Time { return stamp })
	svc := New(drafts, store.NewInMemoryStore(), testSubmitConfig(), testLogger())

	session, err := svc.SaveProgress(applicantCtx("a@x.com"), models.SectionUpdate{
		Personal: &models.PersonalInfo{FirstName: "Ana"},
	})
	require.NoError(t, err)
	require.NotNil(t, session.SavedAt)
	assert.Equal(t, stamp, *session.SavedAt)

	// A later reload reports the very same timestamp.
	_, loadedAt, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, *session.SavedAt, loadedAt)
}

func TestSaveProgressStoreFailure(t *testing.T) {
	failing := &failingDraftStore{InMemoryStore: draft.NewInMemoryStore(), saveErr: errors.New("redis down")}
	svc := New(failing, store.NewInMemoryStore(), testSubmitConfig(), testLogger())

	_, err := svc.SaveProgress(applicantCtx("a@x.com"), models.SectionUpdate{
		Personal: &models.PersonalInfo{FirstName: "Ana"},
	})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
}

func TestAdvanceRefusedLeavesDraftUntouched(t *testing.T) {
	svc, drafts, _ := newService(t)

	_, err := svc.SaveProgress(applicantCtx("a@x.com"), models.SectionUpdate{
		Personal: &models.PersonalInfo{FirstName: "Ana"},
	})
	require.NoError(t, err)
	before, _, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)

	_, err = svc.Advance(applicantCtx("a@x.com"), models.SectionUpdate{})
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, wizard.StepPersonalInfo, gateErr.Step)
	assert.NotEmpty(t, gateErr.Fields)

	after, _, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, before, after, "gate refusal must not checkpoint")
}

func TestAdvanceMovesAndCheckpoints(t *testing.T) {
	svc, drafts, _ := newService(t)

	personal := completePersonal()
	session, err := svc.Advance(applicantCtx("a@x.com"), models.SectionUpdate{Personal: &personal})
	require.NoError(t, err)
	assert.Equal(t, wizard.StepBusinessExperience, session.Draft.CurrentStep)

	saved, _, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, wizard.StepBusinessExperience, saved.CurrentStep)
	assert.Equal(t, personal, saved.Personal)
}

func TestRetreatIsUnconditionalAndKeepsData(t *testing.T) {
	svc, drafts, _ := newService(t)

	personal := completePersonal()
	_, err := svc.Advance(applicantCtx("a@x.com"), models.SectionUpdate{Personal: &personal})
	require.NoError(t, err)

	// Nothing on the experience step is filled in; going back still works.
	session, err := svc.Retreat(applicantCtx("a@x.com"), models.SectionUpdate{})
	require.NoError(t, err)
	assert.Equal(t, wizard.StepPersonalInfo, session.Draft.CurrentStep)
	assert.Equal(t, personal, session.Draft.Personal)

	saved, _, err := drafts.Load(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, personal, saved.Personal)
}

func TestSubmitHappyPath(t *testing.T) {
	notifier := &fakeNotifier{}
	auditor := &captureAuditor{}
	svc, drafts, records := newService(t, WithNotifier(notifier), WithAuditPublisher(auditor))

	ctx := applicantCtx("a@x.com")
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))

	rec, err := svc.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.NotEmpty(t, rec.IdempotencyKey)

	// Draft is gone, the record stands.
	_, _, err = drafts.Load(ctx, "a@x.com")
	assert.ErrorIs(t, err, draft.ErrNotFound)
	stored, err := records.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.KindApplicationReceived, notifier.sent[0].kind)
	assert.Equal(t, "a@x.com", notifier.sent[0].recipient)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, audit.ActionSubmitted, auditor.events[0].Action)
	assert.Equal(t, rec.ID.String(), auditor.events[0].ApplicationID)
}

func TestSubmitRefusedAwayFromLastStep(t *testing.T) {
	svc, drafts, _ := newService(t)

	ctx := applicantCtx("a@x.com")
	d := submittableDraft("a@x.com")
	d.CurrentStep = wizard.StepLocation
	seedDraft(t, drafts, "a@x.com", d)

	_, err := svc.Submit(ctx)
	var gateErr *GateError
	assert.ErrorAs(t, err, &gateErr)
}

func TestSubmitWithoutDraft(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Submit(applicantCtx("a@x.com"))
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestSubmitRetriesSucceedWithinBound(t *testing.T) {
	svc, drafts, _ := newService(t)
	flaky := &flakyStore{InMemoryStore: store.NewInMemoryStore(), failures: 2}
	svc.records = flaky

	var delays []time.Duration
	svc.sleep = func(d time.Duration) { delays = append(delays, d) }

	ctx := applicantCtx("a@x.com")
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))

	rec, err := svc.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.Equal(t, 3, flaky.attempts)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)
}

func TestSubmitExhaustsExactlyConfiguredAttempts(t *testing.T) {
	svc, drafts, _ := newService(t)
	flaky := &flakyStore{InMemoryStore: store.NewInMemoryStore(), failures: 100}
	svc.records = flaky

	ctx := applicantCtx("a@x.com")
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))

	_, err := svc.Submit(ctx)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeRetryable))
	assert.Equal(t, 3, flaky.attempts, "not zero, not unbounded")

	// No data loss: the draft survives a failed submission.
	_, _, err = drafts.Load(ctx, "a@x.com")
	assert.NoError(t, err)
}

func TestSubmitIdempotencyKeyStableAcrossAttempts(t *testing.T) {
	svc, drafts, _ := newService(t)

	var keys []string
	recording := &recordingStore{InMemoryStore: store.NewInMemoryStore(), failures: 2, keys: &keys}
	svc.records = recording

	ctx := applicantCtx("a@x.com")
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))

	_, err := svc.Submit(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, keys[1], keys[2])
}

func TestSubmitStampsCreatedAtFromRequestClock(t *testing.T) {
	svc, drafts, _ := newService(t)

	stamp := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(applicantCtx("a@x.com"), stamp)
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))

	rec, err := svc.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, stamp, rec.CreatedAt)
}

func TestSubmitSecondTimeConflicts(t *testing.T) {
	svc, drafts, _ := newService(t)

	ctx := applicantCtx("a@x.com")
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))
	_, err := svc.Submit(ctx)
	require.NoError(t, err)

	// Even with a fresh draft in place, the existing record blocks resubmission.
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))
	_, err = svc.Submit(ctx)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestSubmitNotificationFailureIsNonFatal(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("ses throttled")}
	svc, drafts, records := newService(t, WithNotifier(notifier))

	ctx := applicantCtx("a@x.com")
	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))

	rec, err := svc.Submit(ctx)
	require.NoError(t, err)

	stored, err := records.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
}

func TestStatus(t *testing.T) {
	svc, drafts, _ := newService(t)

	ctx := applicantCtx("a@x.com")
	_, err := svc.Status(ctx)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	seedDraft(t, drafts, "a@x.com", submittableDraft("a@x.com"))
	submitted, err := svc.Submit(ctx)
	require.NoError(t, err)

	rec, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, rec.ID)
	assert.Equal(t, models.StatusPending, rec.Status)
}

// recordingStore captures the idempotency key of every attempt, failing the
// first failures attempts.
type recordingStore struct {
	*store.InMemoryStore
	failures int
	attempts int
	keys     *[]string
}

func (r *recordingStore) Insert(ctx context.Context, rec models.Record) (models.Record, error) {
	r.attempts++
	*r.keys = append(*r.keys, rec.IdempotencyKey)
	if r.attempts <= r.failures {
		return models.Record{}, errors.New("sink unavailable")
	}
	return r.InMemoryStore.Insert(ctx, rec)
}

// TestApplicantJourney walks the documented end-to-end path: fill personal
// info, advance, reload, get refused on the unanswered yes/no selections,
// answer them, run the remaining steps, submit.
func TestApplicantJourney(t *testing.T) {
	svc, drafts, records := newService(t)
	ctx := applicantCtx("a@x.com")

	// Step 0: personal information, then Next.
	personal := completePersonal()
	session, err := svc.Advance(ctx, models.SectionUpdate{Personal: &personal})
	require.NoError(t, err)
	assert.Equal(t, wizard.StepBusinessExperience, session.Draft.CurrentStep)
	require.NotNil(t, session.SavedAt)

	// Page reload: the session re-hydrates the same fields at step 1.
	session, err = svc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepBusinessExperience, session.Draft.CurrentStep)
	assert.Equal(t, personal, session.Draft.Personal)

	// Advancing without the two yes/no answers is refused.
	_, err = svc.Advance(ctx, models.SectionUpdate{})
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)

	// Answer both and walk the remaining steps.
	experience := completeExperience()
	_, err = svc.Advance(ctx, models.SectionUpdate{Experience: &experience})
	require.NoError(t, err)

	location := completeLocation()
	_, err = svc.Advance(ctx, models.SectionUpdate{Location: &location})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, models.SectionUpdate{Package: planPtr(models.PlanStandard)})
	require.NoError(t, err)

	requirements := completeRequirements()
	_, err = svc.SaveProgress(ctx, models.SectionUpdate{Requirement: &requirements})
	require.NoError(t, err)

	rec, err := svc.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rec.Status)

	_, _, err = drafts.Load(ctx, "a@x.com")
	assert.ErrorIs(t, err, draft.ErrNotFound)
	_, err = records.FindByEmail(ctx, "a@x.com")
	assert.NoError(t, err)
}
