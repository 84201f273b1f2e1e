package draft

import (
	"context"
	"sync"
	"time"

	dErrors "agentportal/pkg/domain-errors"

	"agentportal/internal/application/models"
)

type memoryEntry struct {
	draft   models.Draft
	savedAt time.Time
}

// InMemoryStore keeps drafts in a map. It backs tests and single-instance
// development; production uses the Redis store.
type InMemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]memoryEntry
	now    func() time.Time
}

// NewInMemoryStore creates an empty in-memory draft store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{drafts: make(map[string]memoryEntry), now: time.Now}
}

// WithClock overrides the store's clock. Test hook.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) Load(_ context.Context, email string) (models.Draft, time.Time, error) {
	if email == "" {
		return models.Draft{}, time.Time{}, dErrors.New(dErrors.CodeBadRequest, "draft key email must not be empty")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.drafts[email]; ok {
		return entry.draft, entry.savedAt, nil
	}
	return models.Draft{}, time.Time{}, ErrNotFound
}

func (s *InMemoryStore) Save(_ context.Context, email string, d models.Draft) (time.Time, error) {
	if email == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "draft key email must not be empty")
	}
	if d.Email != email {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "draft email must match its key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	savedAt := s.now()
	s.drafts[email] = memoryEntry{draft: d, savedAt: savedAt}
	return savedAt, nil
}

func (s *InMemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, email)
	return nil
}
