package ports

import (
	"context"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// SessionPersister stores the session across process restarts.
// Load returns (nil, nil) when nothing is stored.
type SessionPersister interface {
	Load(ctx context.Context) (*domain.PersistedSession, error)
	Save(ctx context.Context, s domain.PersistedSession) error
	Clear(ctx context.Context) error
}

// UserSource exposes the id of the currently authenticated user. Stores use
// it to discard responses issued for a user that is no longer signed in.
type UserSource interface {
	CurrentUserID() string
}

// TokenSource exposes the bearer token for protected backend calls.
type TokenSource interface {
	Token() string
}

// ProfileMerger receives one-way wallet → profile pushes.
type ProfileMerger interface {
	UpdateUserWallet(address string)
}

// AuditRepository persists client audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}

// TaskRunner schedules asynchronous effects. Tasks sharing a key run in
// submission order.
type TaskRunner interface {
	Submit(key string, task func(ctx context.Context))
}
