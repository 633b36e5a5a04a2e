package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

// ProfileSnapshot is the observable state of the profile store.
type ProfileSnapshot struct {
	Profile *domain.Profile `json:"profile"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

// ProfileStore holds the fetched profile of the signed-in user.
//
// Responses are applied only when the store generation is unchanged and the
// session user is still the one the request was issued for.
type ProfileStore struct {
	backend ports.ProfileBackend
	users   ports.UserSource
	log     zerolog.Logger
	group   singleflight.Group

	mu         sync.RWMutex
	profile    *domain.Profile
	pending    int
	lastErr    string
	generation uint64
}

func NewProfileStore(backend ports.ProfileBackend, users ports.UserSource, log zerolog.Logger) *ProfileStore {
	return &ProfileStore{backend: backend, users: users, log: log}
}

// Snapshot returns a copy of the current state.
func (p *ProfileStore) Snapshot() ProfileSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ProfileSnapshot{Profile: p.profile.Clone(), Loading: p.pending > 0, Error: p.lastErr}
}

// FetchUserProfile loads the profile for userID and replaces the stored one.
// Concurrent fetches for the same id share one backend call.
func (p *ProfileStore) FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("fetch profile: %w", domain.ErrNotAuthenticated)
	}

	p.mu.Lock()
	gen := p.generation
	p.pending++
	p.lastErr = ""
	p.mu.Unlock()

	v, err, _ := p.group.Do(userID, func() (any, error) {
		return p.backend.FetchUserProfile(ctx, userID)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.generation {
		p.pending--
	}
	if gen != p.generation || p.users.CurrentUserID() != userID {
		p.log.Debug().Str("user_id", userID).Msg("stale profile response discarded")
		return nil, domain.ErrStaleResponse
	}
	if err != nil {
		p.lastErr = err.Error()
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	profile, _ := v.(*domain.Profile)
	if profile == nil {
		p.lastErr = "empty profile response"
		return nil, fmt.Errorf("fetch profile: %w", domain.ErrUserNotFound)
	}
	p.profile = profile.Clone()
	return profile.Clone(), nil
}

// UpdateUserProfile saves editable fields and stores the returned profile.
func (p *ProfileStore) UpdateUserProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", domain.ErrNotAuthenticated)
	}
	p.mu.RLock()
	gen := p.generation
	p.mu.RUnlock()

	updated, err := p.backend.UpdateUserProfile(ctx, userID, update)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation || p.users.CurrentUserID() != userID {
		return nil, domain.ErrStaleResponse
	}
	if err != nil {
		p.lastErr = err.Error()
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("update profile: %w", domain.ErrUserNotFound)
	}
	// the backend does not echo the locally merged wallet
	if updated.WalletAddress == "" && p.profile != nil {
		updated.WalletAddress = p.profile.WalletAddress
	}
	p.profile = updated.Clone()
	return updated.Clone(), nil
}

// UpdateUserWallet merges a wallet address into the stored profile.
// Without a profile the call is a no-op.
func (p *ProfileStore) UpdateUserWallet(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile == nil {
		return
	}
	p.profile.WalletAddress = address
}

// SetUser replaces the stored profile.
func (p *ProfileStore) SetUser(profile *domain.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile.Clone()
}

func (p *ProfileStore) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = ""
}

// Clear drops the profile and invalidates requests in flight.
func (p *ProfileStore) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.profile = nil
	p.pending = 0
	p.lastErr = ""
}
