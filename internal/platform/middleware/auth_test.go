package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"agentportal/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticResolver struct {
	identity Identity
	err      error
}

func (r staticResolver) Resolve(string) (Identity, error) {
	return r.identity, r.err
}

func TestRequireAuthInjectsApplicant(t *testing.T) {
	resolver := staticResolver{identity: Identity{Email: "a@x.com", DisplayName: "Ana"}}

	var gotEmail, gotName string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = requestcontext.ApplicantEmail(r.Context())
		gotName = requestcontext.ApplicantName(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/application/session", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	RequireAuth(resolver, testLogger())(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a@x.com", gotEmail)
	assert.Equal(t, "Ana", gotName)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/application/session", nil)
	rr := httptest.NewRecorder()
	RequireAuth(staticResolver{}, testLogger())(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "unauthorized")
}

func TestRequireAuthInvalidToken(t *testing.T) {
	resolver := staticResolver{err: errors.New("token expired")}
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/application/session", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rr := httptest.NewRecorder()
	RequireAuth(resolver, testLogger())(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekret"), bcrypt.MinCost)
	require.NoError(t, err)

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	mw := RequireAdmin(string(hash), testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	req.Header.Set("X-Admin-Key", "sekret")
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)

	called = false
	req = httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	rr = httptest.NewRecorder()
	mw.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestRequireAdminEmptyHashDeniesEverything(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})
	mw := RequireAdmin("", testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	req.Header.Set("X-Admin-Key", "anything")
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
