package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"agentportal/internal/application/models"
)

// InMemoryStore keeps records in process memory. Used in tests and when no
// database is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.Record
	byEmail map[string]uuid.UUID
}

// NewInMemoryStore constructs an empty in-memory record store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]models.Record),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, rec models.Record) (models.Record, error) {
	if rec.Email == "" {
		return models.Record{}, fmt.Errorf("record email is required")
	}
	if rec.ID == uuid.Nil {
		return models.Record{}, fmt.Errorf("record id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byEmail[rec.Email]; ok {
		existing := s.byID[existingID]
		if existing.IdempotencyKey != "" && existing.IdempotencyKey == rec.IdempotencyKey {
			return existing, nil
		}
		return models.Record{}, ErrConflict
	}

	s.byID[rec.ID] = rec
	s.byEmail[rec.Email] = rec.ID
	return rec, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.Record{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return models.Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status models.Status) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for _, rec := range s.byID {
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, d Decision) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return models.Record{}, ErrNotFound
	}

	decidedAt := d.DecidedAt
	rec.Status = d.Status
	rec.DecidedAt = &decidedAt
	rec.Reviewer = d.Reviewer
	rec.DecisionReason = d.Reason
	s.byID[id] = rec
	return rec, nil
}
