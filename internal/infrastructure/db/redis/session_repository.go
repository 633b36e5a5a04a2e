package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

const defaultSessionKey = "rentclient:session"

// SessionRepository implements ports.SessionPersister on a single Redis key.
// A zero ttl keeps the session until it is cleared.
type SessionRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSessionRepository creates a SessionRepository. An empty key falls back
// to defaultSessionKey.
func NewSessionRepository(client *redis.Client, key string, ttl time.Duration) ports.SessionPersister {
	if key == "" {
		key = defaultSessionKey
	}
	return &SessionRepository{client: client, key: key, ttl: ttl}
}

// Load returns the stored session, or nil when the key is absent.
func (r *SessionRepository) Load(ctx context.Context) (*domain.PersistedSession, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s domain.PersistedSession
	if err := json.Unmarshal(raw, &s); err != nil {
		// a corrupt entry is treated as signed out
		_ = r.client.Del(ctx, r.key).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s domain.PersistedSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
