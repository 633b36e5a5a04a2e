package service

import (
	"context"
	"sync"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuth struct {
	loginFn    func(ctx context.Context, data domain.LoginData) (*domain.Credentials, error)
	registerFn func(ctx context.Context, data domain.RegisterData) error
	verifyFn   func(ctx context.Context, data domain.VerifyOtpData) (*domain.Credentials, error)
	resendFn   func(ctx context.Context, email string) error
	forgotFn   func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, data domain.ResetPasswordData) error
}

func (s *stubAuth) Login(ctx context.Context, data domain.LoginData) (*domain.Credentials, error) {
	return s.loginFn(ctx, data)
}

func (s *stubAuth) Register(ctx context.Context, data domain.RegisterData) error {
	if s.registerFn == nil {
		return nil
	}
	return s.registerFn(ctx, data)
}

func (s *stubAuth) VerifyOtp(ctx context.Context, data domain.VerifyOtpData) (*domain.Credentials, error) {
	if s.verifyFn == nil {
		return nil, nil
	}
	return s.verifyFn(ctx, data)
}

func (s *stubAuth) ResendOtp(ctx context.Context, email string) error {
	if s.resendFn == nil {
		return nil
	}
	return s.resendFn(ctx, email)
}

func (s *stubAuth) ForgotPassword(ctx context.Context, email string) error {
	if s.forgotFn == nil {
		return nil
	}
	return s.forgotFn(ctx, email)
}

func (s *stubAuth) ResetPassword(ctx context.Context, data domain.ResetPasswordData) error {
	if s.resetFn == nil {
		return nil
	}
	return s.resetFn(ctx, data)
}

func okLogin(userID string) func(context.Context, domain.LoginData) (*domain.Credentials, error) {
	return func(_ context.Context, data domain.LoginData) (*domain.Credentials, error) {
		return &domain.Credentials{Token: "token-" + userID, User: domain.Identity{UserID: userID, Email: data.Email}}, nil
	}
}

type stubPersister struct {
	mu      sync.Mutex
	stored  *domain.PersistedSession
	loadErr error
	saves   int
	clears  int
}

func (p *stubPersister) Load(context.Context) (*domain.PersistedSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if p.stored == nil {
		return nil, nil
	}
	c := *p.stored
	return &c, nil
}

func (p *stubPersister) Save(_ context.Context, s domain.PersistedSession) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.stored = &s
	return nil
}

func (p *stubPersister) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
	p.stored = nil
	return nil
}

type fixedUser struct {
	mu sync.Mutex
	id string
}

func (u *fixedUser) CurrentUserID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.id
}

func (u *fixedUser) set(id string) {
	u.mu.Lock()
	u.id = id
	u.mu.Unlock()
}

type stubProfileBackend struct {
	mu       sync.Mutex
	calls    int
	fetchFn  func(ctx context.Context, userID string) (*domain.Profile, error)
	updateFn func(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error)
}

func (b *stubProfileBackend) FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.fetchFn == nil {
		return &domain.Profile{UserID: userID}, nil
	}
	return b.fetchFn(ctx, userID)
}

func (b *stubProfileBackend) UpdateUserProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
	return b.updateFn(ctx, userID, update)
}

func (b *stubProfileBackend) fetchCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type stubWalletBackend struct {
	mu          sync.Mutex
	connected   map[string]string
	statusCalls map[string]int
	connectErr  error
	status      *domain.WalletStatus
	statusErr   error
	disconnect  *domain.DisconnectResult
	statusHook  func(userID string)
}

func newStubWalletBackend() *stubWalletBackend {
	return &stubWalletBackend{connected: map[string]string{}, statusCalls: map[string]int{}}
}

func (b *stubWalletBackend) ConnectWallet(_ context.Context, userID, address string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connectErr != nil {
		return b.connectErr
	}
	b.connected[userID] = address
	return nil
}

func (b *stubWalletBackend) DisconnectWallet(_ context.Context, userID string) (*domain.DisconnectResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disconnect != nil {
		return b.disconnect, nil
	}
	delete(b.connected, userID)
	return &domain.DisconnectResult{CanDisconnect: true}, nil
}

func (b *stubWalletBackend) GetWalletStatus(_ context.Context, userID string) (*domain.WalletStatus, error) {
	b.mu.Lock()
	b.statusCalls[userID]++
	hook := b.statusHook
	status, err := b.status, b.statusErr
	b.mu.Unlock()
	if hook != nil {
		hook(userID)
	}
	if err != nil {
		return nil, err
	}
	if status == nil {
		return &domain.WalletStatus{}, nil
	}
	c := *status
	return &c, nil
}

func (b *stubWalletBackend) calls(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statusCalls[userID]
}

type stubProvider struct {
	authorized string
	detectErr  error
	requested  string
	requestErr error
}

func (p *stubProvider) DetectAuthorized(context.Context) (string, error) {
	return p.authorized, p.detectErr
}

func (p *stubProvider) RequestConnection(context.Context) (string, error) {
	return p.requested, p.requestErr
}

type recordingMerger struct {
	mu        sync.Mutex
	addresses []string
}

func (m *recordingMerger) UpdateUserWallet(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses = append(m.addresses, address)
}

func (m *recordingMerger) last() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.addresses) == 0 {
		return "", false
	}
	return m.addresses[len(m.addresses)-1], true
}

// asyncRunner runs each task on its own goroutine and lets tests wait.
type asyncRunner struct {
	wg sync.WaitGroup
}

func (r *asyncRunner) Submit(_ string, task func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		task(context.Background())
	}()
}

func (r *asyncRunner) wait() { r.wg.Wait() }
