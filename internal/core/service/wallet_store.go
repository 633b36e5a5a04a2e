package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

// WalletStore owns the local wallet connection state machine.
//
// The connection is independent from the session: a wallet can be
// connected while signed out. Backend linkage is synced when a user is
// known, and the backend status never downgrades a local connection.
type WalletStore struct {
	provider ports.WalletProvider
	backend  ports.WalletBackend
	users    ports.UserSource
	profile  ports.ProfileMerger
	log      zerolog.Logger

	mu sync.RWMutex
	// chosenLocally is set when the user connected this address from the
	// client; it makes the local address authoritative for display.
	chosenLocally bool
	link          domain.WalletLink
	stopWatch     func()
}

func NewWalletStore(
	provider ports.WalletProvider,
	backend ports.WalletBackend,
	users ports.UserSource,
	profile ports.ProfileMerger,
	log zerolog.Logger,
) *WalletStore {
	return &WalletStore{
		provider: provider,
		backend:  backend,
		users:    users,
		profile:  profile,
		log:      log,
		link:     domain.WalletLink{State: domain.WalletUninitialized},
	}
}

// Snapshot returns the current wallet link.
func (w *WalletStore) Snapshot() domain.WalletLink {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.link
}

// Initialize silently reconnects a previously authorized wallet. Absence
// of a provider or of an authorized account is not an error.
func (w *WalletStore) Initialize(ctx context.Context) {
	w.mu.Lock()
	if w.link.State != domain.WalletUninitialized {
		w.mu.Unlock()
		return
	}
	w.link.State = domain.WalletInitializing
	w.mu.Unlock()

	if w.provider == nil {
		w.settle("")
		w.log.Debug().Msg("no wallet provider, wallet disconnected")
		return
	}

	raw, err := w.provider.DetectAuthorized(ctx)
	if err != nil {
		w.log.Debug().Err(err).Msg("wallet detection failed")
		raw = ""
	}
	address := ""
	if raw != "" {
		if address, err = domain.ParseAddress(raw); err != nil {
			w.log.Warn().Str("address", raw).Msg("provider returned an invalid address")
			address = ""
		}
	}
	w.settle(address)

	if watcher, ok := w.provider.(ports.AccountWatcher); ok {
		stop := watcher.WatchAccounts(ctx, func(accounts []string) {
			w.HandleAccountsChanged(ctx, accounts)
		})
		w.mu.Lock()
		w.stopWatch = stop
		w.mu.Unlock()
	}
}

func (w *WalletStore) settle(address string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.link.State != domain.WalletInitializing {
		// a connect or disconnect already settled the store
		return
	}
	w.setLocked(address)
}

// Connect prompts the wallet provider. When a user is signed in the link
// is saved to the backend before the store moves to Connected.
func (w *WalletStore) Connect(ctx context.Context) (string, error) {
	if w.provider == nil {
		return "", fmt.Errorf("connect wallet: %w", domain.ErrWalletMissing)
	}

	raw, err := w.provider.RequestConnection(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrWalletRejected) {
			err = fmt.Errorf("%w: %v", domain.ErrWalletRejected, err)
		}
		return "", fmt.Errorf("connect wallet: %w", err)
	}
	address, err := domain.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("connect wallet: %w", err)
	}

	userID := w.users.CurrentUserID()
	if userID != "" {
		if err := w.backend.ConnectWallet(ctx, userID, address); err != nil {
			return "", fmt.Errorf("connect wallet: sync backend: %w", err)
		}
	}

	w.mu.Lock()
	w.setLocked(address)
	w.chosenLocally = true
	if userID != "" {
		w.link.LinkedAddress = address
	}
	w.mu.Unlock()

	w.profile.UpdateUserWallet(address)
	w.log.Info().Str("address", domain.ShortAddress(address)).Msg("wallet connected")
	return address, nil
}

// Disconnect forgets the local connection.
func (w *WalletStore) Disconnect() {
	w.mu.Lock()
	w.setLocked("")
	w.chosenLocally = false
	w.mu.Unlock()
	w.profile.UpdateUserWallet("")
}

// Unlink removes the backend linkage for the signed-in user and then
// disconnects locally. A refusal leaves the state unchanged.
func (w *WalletStore) Unlink(ctx context.Context) error {
	userID := w.users.CurrentUserID()
	w.mu.RLock()
	linked := w.link.IsConnected || w.link.LinkedAddress != ""
	w.mu.RUnlock()

	if userID != "" && linked {
		res, err := w.backend.DisconnectWallet(ctx, userID)
		if err != nil {
			return fmt.Errorf("unlink wallet: %w", err)
		}
		if res != nil && !res.CanDisconnect {
			return &domain.WalletLockedError{Reasons: res.Reasons, ActiveProperties: res.ActivePropertiesCount}
		}
		if w.users.CurrentUserID() != userID {
			return domain.ErrStaleResponse
		}
	}

	w.mu.Lock()
	w.link.LinkedAddress = ""
	w.link.ActiveProperties = 0
	w.mu.Unlock()
	w.Disconnect()
	return nil
}

// HandleAccountsChanged reacts to provider account events.
func (w *WalletStore) HandleAccountsChanged(ctx context.Context, accounts []string) {
	if len(accounts) == 0 {
		w.Disconnect()
		return
	}
	address, err := domain.ParseAddress(accounts[0])
	if err != nil {
		w.log.Warn().Str("address", accounts[0]).Msg("ignoring invalid account from provider")
		return
	}

	w.mu.Lock()
	w.setLocked(address)
	w.chosenLocally = true
	w.mu.Unlock()
	w.profile.UpdateUserWallet(address)

	if userID := w.users.CurrentUserID(); userID != "" {
		if err := w.backend.ConnectWallet(ctx, userID, address); err != nil {
			w.log.Error().Err(err).Str("user_id", userID).Msg("failed to sync wallet with backend")
			return
		}
		w.mu.Lock()
		w.link.LinkedAddress = address
		w.mu.Unlock()
	}
}

// FetchWalletStatus reconciles the backend linkage of userID with the local
// connection and merges the display address into the profile.
func (w *WalletStore) FetchWalletStatus(ctx context.Context, userID string) (*domain.WalletStatus, error) {
	if userID == "" {
		return nil, fmt.Errorf("wallet status: %w", domain.ErrNotAuthenticated)
	}
	status, err := w.backend.GetWalletStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("wallet status: %w", err)
	}
	if status == nil {
		status = &domain.WalletStatus{}
	}
	if w.users.CurrentUserID() != userID {
		w.log.Debug().Str("user_id", userID).Msg("stale wallet status discarded")
		return nil, domain.ErrStaleResponse
	}

	linked := ""
	if status.HasWallet && status.WalletAddress != "" {
		if linked, err = domain.ParseAddress(status.WalletAddress); err != nil {
			w.log.Warn().Str("address", status.WalletAddress).Msg("backend returned an invalid wallet address")
			linked = ""
		}
	}

	w.mu.Lock()
	w.link.LinkedAddress = linked
	w.link.CanDisconnect = status.CanDisconnect
	w.link.ActiveProperties = status.ActivePropertiesCount
	display := linked
	if w.chosenLocally && w.link.IsConnected && !domain.SameAddress(w.link.Address, linked) {
		display = w.link.Address
	}
	w.mu.Unlock()

	w.profile.UpdateUserWallet(display)
	return status, nil
}

// ClearLinkage drops backend linkage data, keeping the local connection.
func (w *WalletStore) ClearLinkage() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.link.LinkedAddress = ""
	w.link.CanDisconnect = false
	w.link.ActiveProperties = 0
}

// Close stops provider account watching.
func (w *WalletStore) Close() {
	w.mu.Lock()
	stop := w.stopWatch
	w.stopWatch = nil
	w.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (w *WalletStore) setLocked(address string) {
	if address == "" {
		w.link.State = domain.WalletDisconnected
		w.link.Address = ""
		w.link.IsConnected = false
		return
	}
	w.link.State = domain.WalletConnected
	w.link.Address = address
	w.link.IsConnected = true
}
