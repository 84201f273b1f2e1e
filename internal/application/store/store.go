// Package store persists submitted application records. At most one record
// exists per applicant email; the unique constraint is the final guard against
// double submission.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agentportal/internal/application/models"
	"agentportal/pkg/platform/sentinel"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = sentinel.ErrNotFound

// ErrConflict is returned when an insert collides with an existing record for
// the same email under a different idempotency key.
var ErrConflict = sentinel.ErrConflict

// Decision records an admin ruling on a pending application.
type Decision struct {
	Status    models.Status
	Reviewer  string
	Reason    string
	DecidedAt time.Time
}

// Store is the durable home of submitted applications.
//
// Insert is idempotent on the record's idempotency key: re-inserting the same
// submission returns the already-stored record without error, while a
// different submission for the same email returns ErrConflict.
type Store interface {
	Insert(ctx context.Context, rec models.Record) (models.Record, error)
	FindByEmail(ctx context.Context, email string) (models.Record, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.Record, error)
	ListByStatus(ctx context.Context, status models.Status) ([]models.Record, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, d Decision) (models.Record, error)
}
