package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "agentportal/pkg/domain-errors"

	"agentportal/internal/application/models"
)

// Redis key prefix for drafts.
const draftKeyPrefix = "draft:"

// envelope is the stored JSON value: the draft plus its last-saved timestamp.
type envelope struct {
	Draft   models.Draft `json:"draft"`
	SavedAt time.Time    `json:"savedAt"`
}

// RedisStore persists drafts in Redis so they follow the applicant across
// devices and sessions. Entries expire after the configured TTL of
// inactivity; every save refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore constructs a Redis-backed draft store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// WithClock overrides the store's clock. Test hook.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s.now = now
	return s
}

func (s *RedisStore) Load(ctx context.Context, email string) (models.Draft, time.Time, error) {
	if email == "" {
		return models.Draft{}, time.Time{}, dErrors.New(dErrors.CodeBadRequest, "draft key email must not be empty")
	}
	raw, err := s.client.Get(ctx, draftKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return models.Draft{}, time.Time{}, ErrNotFound
	}
	if err != nil {
		return models.Draft{}, time.Time{}, fmt.Errorf("load draft: %w", err)
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return models.Draft{}, time.Time{}, fmt.Errorf("decode draft: %w", err)
	}
	return env.Draft, env.SavedAt, nil
}

func (s *RedisStore) Save(ctx context.Context, email string, d models.Draft) (time.Time, error) {
	if email == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "draft key email must not be empty")
	}
	if d.Email != email {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "draft email must match its key")
	}
	savedAt := s.now().UTC()
	payload, err := json.Marshal(envelope{Draft: d, SavedAt: savedAt})
	if err != nil {
		return time.Time{}, fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyPrefix+email, payload, s.ttl).Err(); err != nil {
		return time.Time{}, fmt.Errorf("save draft: %w", err)
	}
	return savedAt, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
