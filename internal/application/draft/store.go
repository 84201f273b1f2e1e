// Package draft persists partially-completed applications keyed by applicant
// email. It is the resumability substrate: drafts survive page reloads and,
// with the Redis backend, follow the applicant across devices.
package draft

import (
	"context"
	"time"

	"agentportal/internal/application/models"
	"agentportal/pkg/platform/sentinel"
)

// ErrNotFound reports a missing draft. Absence is a normal result for the
// orchestrator, not a failure.
var ErrNotFound = sentinel.ErrNotFound

// Store maps an applicant email to their persisted draft. Implementations are
// last-write-wins; there is deliberately no locking or version check (one
// applicant, one active session in the intended usage).
type Store interface {
	// Load returns the most recently saved draft for the email together
	// with its last-saved timestamp, or ErrNotFound when none exists.
	Load(ctx context.Context, email string) (models.Draft, time.Time, error)
	// Save overwrites any prior draft for the email and returns the
	// last-saved timestamp it recorded. The draft's email must match
	// the key.
	Save(ctx context.Context, email string, d models.Draft) (time.Time, error)
	// Delete removes the draft. Called once, after successful submission.
	Delete(ctx context.Context, email string) error
}
