// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http dependencies lets services import only what they need.
//
// Usage in services (read values):
//
//	email := requestcontext.ApplicantEmail(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithApplicant(ctx, "a@x.com", "Ana Cruz")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	applicantEmailKey struct{}
	applicantNameKey  struct{}
	requestIDKey      struct{}
	requestTimeKey    struct{}
	clientIPKey       struct{}
	userAgentKey      struct{}
)

// ApplicantEmail retrieves the authenticated applicant's email from the
// context. Returns "" if not set.
func ApplicantEmail(ctx context.Context) string {
	if email, ok := ctx.Value(applicantEmailKey{}).(string); ok {
		return email
	}
	return ""
}

// ApplicantName retrieves the authenticated applicant's display name.
func ApplicantName(ctx context.Context) string {
	if name, ok := ctx.Value(applicantNameKey{}).(string); ok {
		return name
	}
	return ""
}

// WithApplicant injects the resolved applicant identity into the context.
func WithApplicant(ctx context.Context, email, displayName string) context.Context {
	ctx = context.WithValue(ctx, applicantEmailKey{}, email)
	return context.WithValue(ctx, applicantNameKey{}, displayName)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context. Useful
// for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so tests and batch workers
// see a consistent clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
