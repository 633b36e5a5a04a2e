package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

// SessionSource is the part of the session store the coordinator drives.
type SessionSource interface {
	Snapshot() domain.Session
	Subscribe(fn func(domain.SessionTransition)) (unsubscribe func())
	Restore(ctx context.Context) error
	MergeIdentity(ctx context.Context, userID string, role domain.Role, types []domain.CapabilityType) bool
}

// WalletBootstrapper is the part of the wallet store the coordinator drives.
type WalletBootstrapper interface {
	Initialize(ctx context.Context)
	FetchWalletStatus(ctx context.Context, userID string) (*domain.WalletStatus, error)
	ClearLinkage()
}

// ProfileLoader is the part of the profile store the coordinator drives.
type ProfileLoader interface {
	FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error)
	Clear()
}

// CoordinatorDeps groups the collaborators of the coordinator.
// Theme, Locator, Runner and OnLoad are optional.
type CoordinatorDeps struct {
	Theme   ports.ThemeInitializer
	Wallet  WalletBootstrapper
	Session SessionSource
	Profile ProfileLoader
	Locator ports.Locator
	Runner  ports.TaskRunner
	Log     zerolog.Logger
	// OnLoad is called after each per-user load with its outcome.
	OnLoad func(userID string, err error)
}

type loadStatus string

const (
	loadNone    loadStatus = ""
	loadPending loadStatus = "pending"
	loadDone    loadStatus = "done"
	loadFailed  loadStatus = "failed"
)

// BootstrapStatus reports the coordinator progress for diagnostics.
type BootstrapStatus struct {
	Started    bool   `json:"started"`
	RunID      string `json:"runId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	LoadStatus string `json:"loadStatus,omitempty"`
	Loads      int    `json:"loads"`
}

// Coordinator sequences start-up of the client stores and keeps the
// per-user profile and wallet status in step with the session.
type Coordinator struct {
	deps CoordinatorDeps

	mu          sync.Mutex
	started     bool
	runID       string
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	userID      string
	status      loadStatus
	loads       int
}

func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	if deps.Runner == nil {
		deps.Runner = goRunner{}
	}
	return &Coordinator{deps: deps, ctx: context.Background()}
}

// Bootstrap runs the start-up sequence once. Later calls return nil
// without side effects.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.runID = uuid.NewString()
	c.ctx, c.cancel = context.WithCancel(ctx)
	runCtx := c.ctx
	c.mu.Unlock()

	log := c.deps.Log.With().Str("run_id", c.runID).Logger()
	log.Info().Msg("bootstrap started")

	if c.deps.Theme != nil {
		c.deps.Theme.Initialize()
	}

	c.deps.Runner.Submit("wallet", func(context.Context) {
		c.deps.Wallet.Initialize(runCtx)
		log.Debug().Msg("wallet initialized")
	})

	unsubscribe := c.deps.Session.Subscribe(c.onTransition)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	// the user may have signed in before bootstrap ran
	c.onTransition(domain.SessionTransition{})

	c.deps.Runner.Submit("session", func(context.Context) {
		if err := c.deps.Session.Restore(runCtx); err != nil {
			log.Warn().Err(err).Msg("session restore failed")
		}
	})

	if c.deps.Locator != nil {
		c.deps.Runner.Submit("location", func(context.Context) {
			c.deps.Locator.RequestLocation(runCtx)
		})
	}
	return nil
}

// Teardown unsubscribes from the session and cancels background work.
func (c *Coordinator) Teardown() {
	c.mu.Lock()
	unsubscribe, cancel := c.unsubscribe, c.cancel
	c.unsubscribe, c.cancel = nil, nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

// Status returns a snapshot of the coordinator state.
func (c *Coordinator) Status() BootstrapStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BootstrapStatus{
		Started:    c.started,
		RunID:      c.runID,
		UserID:     c.userID,
		LoadStatus: string(c.status),
		Loads:      c.loads,
	}
}

// onTransition acts on the current session; tr.New is stale when the call
// comes from outside the store emission.
func (c *Coordinator) onTransition(domain.SessionTransition) {
	s := c.deps.Session.Snapshot()
	if !s.IsAuthenticated {
		c.reset()
		return
	}
	if s.IsLoading {
		return
	}
	userID := s.UserID()
	if userID == "" {
		return
	}

	c.mu.Lock()
	if c.userID == userID && c.status != loadFailed {
		c.mu.Unlock()
		return
	}
	switched := c.userID != "" && c.userID != userID
	c.userID = userID
	c.status = loadPending
	c.loads++
	runCtx := c.ctx
	c.mu.Unlock()

	if switched {
		c.deps.Profile.Clear()
		c.deps.Wallet.ClearLinkage()
	}
	c.deps.Runner.Submit(userID, func(context.Context) {
		c.load(runCtx, userID)
	})
}

func (c *Coordinator) reset() {
	c.mu.Lock()
	had := c.userID != ""
	c.userID = ""
	c.status = loadNone
	c.mu.Unlock()

	if had {
		c.deps.Profile.Clear()
		c.deps.Wallet.ClearLinkage()
	}
}

// load fetches the profile, enriches the session identity and reconciles
// the wallet status for userID.
func (c *Coordinator) load(ctx context.Context, userID string) {
	log := c.deps.Log.With().Str("user_id", userID).Logger()

	var failed error
	profile, err := c.deps.Profile.FetchUserProfile(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrStaleResponse):
		c.markStale(userID)
		return
	case err != nil:
		log.Warn().Err(err).Msg("profile fetch failed")
		failed = err
	default:
		c.deps.Session.MergeIdentity(ctx, userID, profile.Role, profile.Types)
	}

	if _, err := c.deps.Wallet.FetchWalletStatus(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrStaleResponse) {
			c.markStale(userID)
			return
		}
		log.Warn().Err(err).Msg("wallet status fetch failed")
		if failed == nil {
			failed = err
		}
	}

	c.mu.Lock()
	if c.userID == userID {
		c.status = loadDone
		if failed != nil {
			c.status = loadFailed
		}
	}
	c.mu.Unlock()

	if c.deps.OnLoad != nil {
		c.deps.OnLoad(userID, failed)
	}
}

// markStale lets the next transition for userID load again.
func (c *Coordinator) markStale(userID string) {
	c.mu.Lock()
	if c.userID == userID && c.status == loadPending {
		c.status = loadFailed
	}
	c.mu.Unlock()
}

type goRunner struct{}

func (goRunner) Submit(_ string, task func(ctx context.Context)) {
	go task(context.Background())
}
