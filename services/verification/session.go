package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stowage/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "verification:session:"

// SessionStore persists operator verification sessions between the verify
// call and the handover/return actions that follow it.
type SessionStore interface {
	Save(ctx context.Context, session *models.VerificationSession) error
	Get(ctx context.Context, sessionID string) (*models.VerificationSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions in Redis with a TTL, so abandoned
// sessions expire on their own.
type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisSessionStore returns a session store over the given client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSessionStore{Client: client, TTL: ttl}
}

// Save writes the session, refreshing its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *models.VerificationSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal verification session: %w", err)
	}
	if err := s.Client.Set(ctx, sessionKeyPrefix+session.SessionID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification session: %w", err)
	}
	return nil
}

// Get loads a session, returning ErrSessionNotFound when it is absent or
// has expired.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	data, err := s.Client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load verification session: %w", err)
	}

	var session models.VerificationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse verification session: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.Client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete verification session: %w", err)
	}
	return nil
}
