package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

var errOperationAborted = errors.New("session operation aborted")

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithPersister stores the session across restarts.
func WithPersister(p ports.SessionPersister) SessionOption {
	return func(s *SessionStore) { s.persister = p }
}

// WithResendLimiter throttles ResendOtp calls.
func WithResendLimiter(l *rate.Limiter) SessionOption {
	return func(s *SessionStore) { s.resend = l }
}

// WithTokenCheck rejects persisted tokens during Restore (expired, malformed).
func WithTokenCheck(check func(token string) error) SessionOption {
	return func(s *SessionStore) { s.tokenCheck = check }
}

// WithSessionLogger sets the store logger.
func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *SessionStore) { s.log = log }
}

// SessionStore owns the authentication state machine.
//
// The store starts Unresolved and loading. Every auth operation opens one
// Resolving window that is closed exactly once, even when the backend
// fails or panics. Logout closes all open windows at once and bumps the
// epoch so late completions are dropped.
type SessionStore struct {
	auth       ports.AuthBackend
	persister  ports.SessionPersister
	resend     *rate.Limiter
	tokenCheck func(string) error
	log        zerolog.Logger

	// emitMu serializes mutation and notification so handlers observe
	// transitions in order. Handlers must not call mutators.
	emitMu sync.Mutex

	// persistMu orders saves. Logout clears without it and persist
	// rechecks the epoch after saving.
	persistMu sync.Mutex

	mu            sync.RWMutex
	user          *domain.Identity
	token         string
	authenticated bool
	resolved      bool
	pinned        bool
	inflight      int
	epoch         uint64
	authVersion   uint64
	subs          map[int]func(domain.SessionTransition)
	nextSub       int
}

// NewSessionStore returns a store in the Unresolved state.
func NewSessionStore(auth ports.AuthBackend, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		auth: auth,
		log:  zerolog.Nop(),
		subs: make(map[int]func(domain.SessionTransition)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current session state.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// CurrentUserID returns the authenticated user id, or "".
func (s *SessionStore) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated || s.user == nil {
		return ""
	}
	return s.user.UserID
}

// Token returns the bearer token of the authenticated session, or "".
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated {
		return ""
	}
	return s.token
}

// Subscribe registers fn for every session transition. The returned func
// removes the handler; calling it more than once is safe.
func (s *SessionStore) Subscribe(fn func(domain.SessionTransition)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Restore performs the initial session check against the persister.
// A result is dropped when a login or logout completed in the meantime.
func (s *SessionStore) Restore(ctx context.Context) error {
	var epoch, version uint64
	s.update(func() {
		s.inflight++
		epoch, version = s.epoch, s.authVersion
	})

	var (
		persisted *domain.PersistedSession
		loadErr   error
	)
	closed := false
	defer func() {
		if !closed {
			s.update(func() { s.closeRestore(epoch, version, nil) })
		}
	}()
	if s.persister != nil {
		persisted, loadErr = s.persister.Load(ctx)
	}
	closed = true

	if loadErr != nil {
		s.log.Warn().Err(loadErr).Msg("session restore failed, starting signed out")
		persisted = nil
	}
	if persisted != nil && s.tokenCheck != nil && persisted.Token != "" {
		if err := s.tokenCheck(persisted.Token); err != nil {
			s.log.Info().Err(err).Msg("persisted token rejected")
			persisted = nil
			s.clearPersisted(ctx)
		}
	}

	s.update(func() { s.closeRestore(epoch, version, persisted) })
	if loadErr != nil {
		return fmt.Errorf("restore session: %w", loadErr)
	}
	return nil
}

func (s *SessionStore) closeRestore(epoch, version uint64, p *domain.PersistedSession) {
	if epoch != s.epoch {
		return
	}
	s.inflight--
	s.resolved = true
	if version != s.authVersion {
		return
	}
	if p != nil && p.IsAuthenticated && p.Token != "" && p.User != nil && p.User.UserID != "" {
		s.user = p.User.Clone()
		s.token = p.Token
		s.authenticated = true
		return
	}
	s.clearAuthLocked()
}

// Login signs the user in. On failure the session ends Unauthenticated and
// the error carries the reason.
func (s *SessionStore) Login(ctx context.Context, data domain.LoginData) (bool, error) {
	data.Email = strings.TrimSpace(data.Email)
	if data.Email == "" || data.Password == "" {
		return false, fmt.Errorf("login: %w: email and password are required", domain.ErrValidation)
	}

	var (
		creds *domain.Credentials
		epoch uint64
	)
	applied, err := s.resolve(
		func() (err error) {
			creds, err = s.auth.Login(ctx, data)
			if err == nil && (creds == nil || creds.Token == "" || creds.User.UserID == "") {
				err = &domain.BackendError{Message: "missing authentication data", Err: domain.ErrInvalidCredentials}
			}
			return err
		},
		func(opErr error) {
			s.resolved = true
			s.authVersion++
			if opErr != nil {
				s.clearAuthLocked()
				return
			}
			s.setAuthLocked(creds)
			epoch = s.epoch
		},
	)
	if !applied {
		return false, domain.ErrStaleResponse
	}
	if err != nil {
		s.clearPersisted(ctx)
		s.log.Info().Err(err).Str("email", data.Email).Msg("login failed")
		return false, fmt.Errorf("login: %w", err)
	}

	s.persist(ctx, epoch)
	s.log.Info().Str("user_id", creds.User.UserID).Msg("login succeeded")
	return true, nil
}

// Register creates an account. The session state is left as it was.
func (s *SessionStore) Register(ctx context.Context, data domain.RegisterData) (bool, error) {
	if strings.TrimSpace(data.Email) == "" || data.Password == "" {
		return false, fmt.Errorf("register: %w: email and password are required", domain.ErrValidation)
	}
	return s.passthrough("register", func() error { return s.auth.Register(ctx, data) })
}

// VerifyOtp confirms an email code. The session becomes Authenticated only
// when the backend issued credentials with the verification.
func (s *SessionStore) VerifyOtp(ctx context.Context, data domain.VerifyOtpData) (bool, error) {
	if strings.TrimSpace(data.Email) == "" || strings.TrimSpace(data.Code) == "" {
		return false, fmt.Errorf("verify otp: %w: email and code are required", domain.ErrValidation)
	}

	var (
		creds *domain.Credentials
		epoch uint64
	)
	applied, err := s.resolve(
		func() (err error) {
			creds, err = s.auth.VerifyOtp(ctx, data)
			return err
		},
		func(opErr error) {
			if opErr != nil || creds == nil || creds.Token == "" || creds.User.UserID == "" {
				return
			}
			s.resolved = true
			s.authVersion++
			s.setAuthLocked(creds)
			epoch = s.epoch
		},
	)
	if !applied {
		return false, domain.ErrStaleResponse
	}
	if err != nil {
		return false, fmt.Errorf("verify otp: %w", err)
	}
	if creds != nil && creds.Token != "" {
		s.persist(ctx, epoch)
	}
	return true, nil
}

// ResendOtp asks the backend to send a new verification code.
func (s *SessionStore) ResendOtp(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, fmt.Errorf("resend otp: %w: email is required", domain.ErrValidation)
	}
	if s.resend != nil && !s.resend.Allow() {
		return false, fmt.Errorf("resend otp: %w", domain.ErrTooManyRequests)
	}
	return s.passthrough("resend otp", func() error { return s.auth.ResendOtp(ctx, email) })
}

// ForgotPassword requests reset instructions for email.
func (s *SessionStore) ForgotPassword(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, fmt.Errorf("forgot password: %w: email is required", domain.ErrValidation)
	}
	return s.passthrough("forgot password", func() error { return s.auth.ForgotPassword(ctx, email) })
}

// ResetPassword sets a new password using a reset code.
func (s *SessionStore) ResetPassword(ctx context.Context, data domain.ResetPasswordData) (bool, error) {
	if strings.TrimSpace(data.Email) == "" || data.Code == "" || data.NewPassword == "" {
		return false, fmt.Errorf("reset password: %w: email, code and new password are required", domain.ErrValidation)
	}
	return s.passthrough("reset password", func() error { return s.auth.ResetPassword(ctx, data) })
}

func (s *SessionStore) passthrough(op string, call func() error) (bool, error) {
	applied, err := s.resolve(call, func(error) {})
	if !applied {
		return false, domain.ErrStaleResponse
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Logout resets the session to Unauthenticated. Operations still in flight
// are discarded when they complete.
func (s *SessionStore) Logout(ctx context.Context) {
	s.update(func() {
		s.epoch++
		s.inflight = 0
		s.pinned = false
		s.resolved = true
		s.authVersion++
		s.clearAuthLocked()
	})
	s.clearPersisted(ctx)
	s.log.Info().Msg("logged out")
}

// SetLoading pins the loading flag. It never changes the authenticated pair.
func (s *SessionStore) SetLoading(loading bool) {
	s.update(func() { s.pinned = loading })
}

// SetUser replaces the identity. A nil user on an authenticated session
// signs it out in memory; persistence is left to Logout.
func (s *SessionStore) SetUser(user *domain.Identity) {
	s.update(func() {
		if user == nil {
			if s.authenticated {
				s.authVersion++
			}
			s.clearAuthLocked()
			return
		}
		s.user = user.Clone()
	})
}

// MergeIdentity enriches the current identity with the role and capability
// types known from the profile. It is ignored when userID is not the
// current user.
func (s *SessionStore) MergeIdentity(ctx context.Context, userID string, role domain.Role, types []domain.CapabilityType) bool {
	var (
		merged bool
		epoch  uint64
	)
	s.update(func() {
		if !s.authenticated || s.user == nil || s.user.UserID != userID {
			return
		}
		next := s.user.Clone()
		if role != "" {
			next.Role = role
		}
		if len(types) > 0 {
			next.Types = append([]domain.CapabilityType(nil), types...)
		}
		s.user = next
		merged = true
		epoch = s.epoch
	})
	if merged {
		s.persist(ctx, epoch)
	}
	return merged
}

// resolve runs op inside one Resolving window. apply runs under the lock
// when the window closes; it is skipped, and applied is false, when a
// logout intervened.
func (s *SessionStore) resolve(op func() error, apply func(opErr error)) (applied bool, err error) {
	var epoch uint64
	s.update(func() {
		s.inflight++
		epoch = s.epoch
	})

	closed := false
	defer func() {
		if !closed {
			s.update(func() { s.closeWindow(epoch, func() { apply(errOperationAborted) }) })
		}
	}()
	err = op()
	closed = true

	s.update(func() { applied = s.closeWindow(epoch, func() { apply(err) }) })
	return applied, err
}

func (s *SessionStore) closeWindow(epoch uint64, apply func()) bool {
	if epoch != s.epoch {
		return false
	}
	s.inflight--
	apply()
	return true
}

func (s *SessionStore) setAuthLocked(c *domain.Credentials) {
	u := c.User
	s.user = u.Clone()
	s.token = c.Token
	s.authenticated = true
}

func (s *SessionStore) clearAuthLocked() {
	s.user = nil
	s.token = ""
	s.authenticated = false
}

// persist saves the session authenticated during epoch. A logout that lands
// before or during the save leaves nothing stored.
func (s *SessionStore) persist(ctx context.Context, epoch uint64) {
	if s.persister == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current := s.epoch == epoch
	p := domain.PersistedSession{Token: s.token, User: s.user.Clone(), IsAuthenticated: s.authenticated}
	s.mu.RUnlock()
	if !current || !p.IsAuthenticated {
		return
	}
	if err := s.persister.Save(ctx, p); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
		return
	}
	if s.currentEpoch() != epoch {
		s.clearPersisted(ctx)
	}
}

func (s *SessionStore) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *SessionStore) clearPersisted(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

// update applies fn under the state lock and notifies subscribers when the
// snapshot changed.
func (s *SessionStore) update(fn func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	old := s.snapshotLocked()
	fn()
	next := s.snapshotLocked()
	handlers := make([]func(domain.SessionTransition), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if h, ok := s.subs[i]; ok {
			handlers = append(handlers, h)
		}
	}
	s.mu.Unlock()

	if sameSession(old, next) {
		return
	}
	tr := domain.SessionTransition{Old: old, New: next}
	for _, h := range handlers {
		h(tr)
	}
}

func (s *SessionStore) snapshotLocked() domain.Session {
	loading := !s.resolved || s.inflight > 0 || s.pinned
	var state domain.SessionState
	switch {
	case !s.resolved && s.inflight == 0 && !s.pinned:
		state = domain.SessionUnresolved
	case loading:
		state = domain.SessionResolving
	case s.authenticated:
		state = domain.SessionAuthenticated
	default:
		state = domain.SessionUnauthenticated
	}
	return domain.Session{
		State:           state,
		IsAuthenticated: s.authenticated,
		User:            s.user.Clone(),
		Token:           s.token,
		IsLoading:       loading,
	}
}

func sameSession(a, b domain.Session) bool {
	if a.State != b.State || a.IsAuthenticated != b.IsAuthenticated || a.IsLoading != b.IsLoading || a.Token != b.Token {
		return false
	}
	if (a.User == nil) != (b.User == nil) {
		return false
	}
	if a.User == nil {
		return true
	}
	if a.User.UserID != b.User.UserID || a.User.Email != b.User.Email || a.User.Role != b.User.Role || len(a.User.Types) != len(b.User.Types) {
		return false
	}
	for i := range a.User.Types {
		if a.User.Types[i] != b.User.Types[i] {
			return false
		}
	}
	return true
}
