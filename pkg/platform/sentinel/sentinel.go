package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entity does not exist in store. A missing draft is a normal
//     result for the orchestrator, never an error condition.
//   - ErrConflict: a uniqueness constraint refused the write.
//   - ErrUnavailable: service or resource temporarily unavailable.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
