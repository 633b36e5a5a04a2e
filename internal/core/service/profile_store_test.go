package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
)

func TestProfileStore_FetchUserProfile(t *testing.T) {
	users := &fixedUser{id: "u1"}
	backend := &stubProfileBackend{fetchFn: func(_ context.Context, userID string) (*domain.Profile, error) {
		return &domain.Profile{UserID: userID, Firstname: "Ana", Role: domain.RoleUser}, nil
	}}
	store := NewProfileStore(backend, users, zerolog.Nop())

	profile, err := store.FetchUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Firstname != "Ana" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	snap := store.Snapshot()
	if snap.Loading || snap.Profile == nil || snap.Profile.UserID != "u1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestProfileStore_FetchRequiresUser(t *testing.T) {
	store := NewProfileStore(&stubProfileBackend{}, &fixedUser{}, zerolog.Nop())
	if _, err := store.FetchUserProfile(context.Background(), ""); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestProfileStore_FetchErrorIsRecorded(t *testing.T) {
	backend := &stubProfileBackend{fetchFn: func(context.Context, string) (*domain.Profile, error) {
		return nil, domain.ErrNetwork
	}}
	store := NewProfileStore(backend, &fixedUser{id: "u1"}, zerolog.Nop())

	if _, err := store.FetchUserProfile(context.Background(), "u1"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	snap := store.Snapshot()
	if snap.Error == "" || snap.Loading {
		t.Fatalf("expected recorded error, got %+v", snap)
	}
	store.ClearError()
	if store.Snapshot().Error != "" {
		t.Fatalf("expected error to be cleared")
	}
}

func TestProfileStore_ClearDiscardsPendingFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &stubProfileBackend{fetchFn: func(_ context.Context, userID string) (*domain.Profile, error) {
		close(started)
		<-release
		return &domain.Profile{UserID: userID}, nil
	}}
	store := NewProfileStore(backend, &fixedUser{id: "u1"}, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := store.FetchUserProfile(context.Background(), "u1")
		done <- err
	}()
	<-started
	if !store.Snapshot().Loading {
		t.Fatalf("expected loading while fetch is pending")
	}
	store.Clear()
	close(release)

	if err := <-done; !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	snap := store.Snapshot()
	if snap.Profile != nil || snap.Loading {
		t.Fatalf("cleared store must stay empty, got %+v", snap)
	}
}

func TestProfileStore_UserChangeDiscardsResponse(t *testing.T) {
	users := &fixedUser{id: "u1"}
	backend := &stubProfileBackend{fetchFn: func(_ context.Context, userID string) (*domain.Profile, error) {
		users.set("u2")
		return &domain.Profile{UserID: userID}, nil
	}}
	store := NewProfileStore(backend, users, zerolog.Nop())

	if _, err := store.FetchUserProfile(context.Background(), "u1"); !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	snap := store.Snapshot()
	if snap.Profile != nil || snap.Loading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestProfileStore_ConcurrentFetchesShareOneCall(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 8)
	backend := &stubProfileBackend{fetchFn: func(_ context.Context, userID string) (*domain.Profile, error) {
		entered <- struct{}{}
		<-release
		return &domain.Profile{UserID: userID}, nil
	}}
	store := NewProfileStore(backend, &fixedUser{id: "u1"}, zerolog.Nop())

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := store.FetchUserProfile(context.Background(), "u1")
		errs <- err
	}()
	<-entered
	// the second caller joins the in-flight call
	wg.Add(1)
	joined := make(chan struct{})
	go func() {
		defer wg.Done()
		close(joined)
		_, err := store.FetchUserProfile(context.Background(), "u1")
		errs <- err
	}()
	<-joined
	for pendingOf(store) < 2 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls := backend.fetchCalls(); calls != 1 {
		t.Fatalf("expected one backend call, got %d", calls)
	}
	if store.Snapshot().Loading {
		t.Fatalf("expected loading to clear")
	}
}

func pendingOf(p *ProfileStore) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pending
}

func TestProfileStore_UpdateUserProfileKeepsMergedWallet(t *testing.T) {
	backend := &stubProfileBackend{
		updateFn: func(_ context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
			return &domain.Profile{UserID: userID, Firstname: *update.Firstname}, nil
		},
	}
	store := NewProfileStore(backend, &fixedUser{id: "u1"}, zerolog.Nop())
	store.SetUser(&domain.Profile{UserID: "u1", Firstname: "Old"})
	store.UpdateUserWallet("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

	name := "New"
	updated, err := store.UpdateUserProfile(context.Background(), "u1", domain.ProfileUpdate{Firstname: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Firstname != "New" || updated.WalletAddress != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}
}

func TestProfileStore_UpdateUserWalletWithoutProfile(t *testing.T) {
	store := NewProfileStore(&stubProfileBackend{}, &fixedUser{id: "u1"}, zerolog.Nop())
	store.UpdateUserWallet("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if store.Snapshot().Profile != nil {
		t.Fatalf("wallet merge must not create a profile")
	}
}
