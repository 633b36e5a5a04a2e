package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
)

type fakeWallet struct {
	mu        sync.Mutex
	accounts  []string
	rejecting bool
}

func (f *fakeWallet) set(accounts ...string) {
	f.mu.Lock()
	f.accounts = accounts
	f.mu.Unlock()
}

func (f *fakeWallet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case req.Method == "eth_requestAccounts" && f.rejecting:
		resp["error"] = map[string]any{"code": userRejectedCode, "message": "User rejected the request."}
	case req.Method == "eth_accounts" || req.Method == "eth_requestAccounts":
		resp["result"] = append([]string{}, f.accounts...)
	default:
		resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestProvider(t *testing.T, f *fakeWallet) *Provider {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewProvider(srv.URL, srv.Client(), 10*time.Millisecond, zerolog.Nop())
}

func TestProvider_DetectAuthorized(t *testing.T) {
	f := &fakeWallet{}
	p := newTestProvider(t, f)

	got, err := p.DetectAuthorized(context.Background())
	if err != nil || got != "" {
		t.Fatalf("expected no account, got %q %v", got, err)
	}

	f.set("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	got, err = p.DetectAuthorized(context.Background())
	if err != nil || got != "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed" {
		t.Fatalf("unexpected account %q %v", got, err)
	}
}

func TestProvider_RequestConnectionRejected(t *testing.T) {
	p := newTestProvider(t, &fakeWallet{rejecting: true})

	if _, err := p.RequestConnection(context.Background()); !errors.Is(err, domain.ErrWalletRejected) {
		t.Fatalf("expected ErrWalletRejected, got %v", err)
	}
}

func TestProvider_RequestConnectionNoAccounts(t *testing.T) {
	p := newTestProvider(t, &fakeWallet{})

	if _, err := p.RequestConnection(context.Background()); !errors.Is(err, domain.ErrWalletRejected) {
		t.Fatalf("expected ErrWalletRejected, got %v", err)
	}
}

func TestProvider_WatchAccounts(t *testing.T) {
	f := &fakeWallet{}
	f.set("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	p := newTestProvider(t, f)

	changes := make(chan []string, 4)
	stop := p.WatchAccounts(context.Background(), func(accounts []string) { changes <- accounts })
	defer stop()

	// give the watcher time to read the initial list
	time.Sleep(30 * time.Millisecond)
	f.set()

	select {
	case got := <-changes:
		if len(got) != 0 {
			t.Fatalf("expected empty account list, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("no account change observed")
	}

	stop()
	stop()
}
