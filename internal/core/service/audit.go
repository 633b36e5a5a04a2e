package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

const auditTimeout = 5 * time.Second

// AuditTrail records sign-in, sign-out and wallet link events. Writes are
// asynchronous and failures are logged, never surfaced.
type AuditTrail struct {
	repo   ports.AuditRepository
	runner ports.TaskRunner
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	settled bool
}

func NewAuditTrail(repo ports.AuditRepository, runner ports.TaskRunner, log zerolog.Logger) *AuditTrail {
	if runner == nil {
		runner = goRunner{}
	}
	return &AuditTrail{repo: repo, runner: runner, log: log, now: time.Now}
}

// Attach subscribes the trail to session transitions. The first sign-in
// observed before the session ever settled is recorded as a restore.
func (a *AuditTrail) Attach(session interface {
	Snapshot() domain.Session
	Subscribe(fn func(domain.SessionTransition)) (unsubscribe func())
}) (detach func()) {
	detach = session.Subscribe(a.observe)
	if session.Snapshot().Settled() {
		a.mu.Lock()
		a.settled = true
		a.mu.Unlock()
	}
	return detach
}

func (a *AuditTrail) observe(tr domain.SessionTransition) {
	if tr.New.IsLoading {
		return
	}

	a.mu.Lock()
	first := !a.settled
	a.settled = true
	a.mu.Unlock()

	switch {
	case !tr.Old.IsAuthenticated && tr.New.IsAuthenticated:
		kind := domain.AuditLogin
		if first {
			kind = domain.AuditRestored
		}
		a.Record(kind, tr.New.UserID(), "")
	case tr.Old.IsAuthenticated && !tr.New.IsAuthenticated:
		a.Record(domain.AuditLogout, tr.Old.UserID(), "")
	case tr.Old.IsAuthenticated && tr.New.IsAuthenticated && tr.Old.UserID() != tr.New.UserID():
		a.Record(domain.AuditLogout, tr.Old.UserID(), "")
		a.Record(domain.AuditLogin, tr.New.UserID(), "")
	}
}

// Record queues one audit event.
func (a *AuditTrail) Record(kind domain.AuditKind, userID, address string) {
	event := &domain.AuditEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserID:    userID,
		Address:   address,
		Timestamp: a.now().UTC(),
	}
	a.runner.Submit("audit", func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, auditTimeout)
		defer cancel()
		if err := a.repo.InsertEvent(ctx, event); err != nil {
			a.log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to insert audit event")
		}
	})
}
