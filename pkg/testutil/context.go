package testutil

import (
	"net/http"

	"agentportal/pkg/requestcontext"
)

// WithApplicant adds a resolved applicant identity to the request context,
// simulating what the auth middleware does for authenticated requests.
func WithApplicant(req *http.Request, email, displayName string) *http.Request {
	ctx := requestcontext.WithApplicant(req.Context(), email, displayName)
	return req.WithContext(ctx)
}
