package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminhandler "agentportal/internal/admin/handler"
	adminservice "agentportal/internal/admin/service"
	"agentportal/internal/application/models"
	"agentportal/internal/application/store"
	"agentportal/pkg/testutil"
)

type fixture struct {
	router  chi.Router
	records *store.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := store.NewInMemoryStore()
	svc := adminservice.New(records, logger)

	r := chi.NewRouter()
	adminhandler.New(svc, logger).Register(r)

	return &fixture{router: r, records: records}
}

func (f *fixture) insert(t *testing.T, email string) models.Record {
	t.Helper()

	d := models.NewDraft(email)
	d.Personal.FirstName = "Ana"
	rec, err := f.records.Insert(context.Background(), models.Record{
		ID:             uuid.New(),
		Email:          email,
		Status:         models.StatusPending,
		Draft:          d,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	return rec
}

func TestListApplications(t *testing.T) {
	f := newFixture(t)
	f.insert(t, "a@x.com")
	f.insert(t, "b@x.com")

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/admin/applications?status=pending"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[adminhandler.ListResponse](t, rr)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "pending", resp.Applications[0].Status)
	assert.NotEmpty(t, resp.Applications[0].Email)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/admin/applications?status=archived"))

	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	testutil.AssertErrorCode(t, rr, "validation_failed")
}

func TestDecide(t *testing.T) {
	f := newFixture(t)
	rec := f.insert(t, "a@x.com")

	body := adminhandler.DecisionRequest{
		Decision: "approved",
		Reviewer: "admin@portal.dev",
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/"+rec.ID.String()+"/decision", body)
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[adminhandler.ApplicationResponse](t, rr)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, "admin@portal.dev", resp.Reviewer)
	assert.NotNil(t, resp.DecidedAt)
}

func TestDecideTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	rec := f.insert(t, "a@x.com")

	body := adminhandler.DecisionRequest{Decision: "rejected", Reviewer: "admin@portal.dev", Reason: "incomplete"}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/"+rec.ID.String()+"/decision", body)
	testutil.AssertStatus(t, testutil.DoRequest(f.router, req), http.StatusOK)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/"+rec.ID.String()+"/decision", body)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertErrorCode(t, rr, "conflict")
}

func TestDecideInvalidID(t *testing.T) {
	f := newFixture(t)

	body := adminhandler.DecisionRequest{Decision: "approved", Reviewer: "admin@portal.dev"}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/not-a-uuid/decision", body)
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, "bad_request")
}

func TestDecideUnknownApplication(t *testing.T) {
	f := newFixture(t)

	body := adminhandler.DecisionRequest{Decision: "approved", Reviewer: "admin@portal.dev"}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/"+uuid.NewString()+"/decision", body)
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertErrorCode(t, rr, "not_found")
}
