// Package wallet talks to an EIP-1193 style wallet over JSON-RPC.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
)

const (
	// userRejectedCode is the EIP-1193 error code for a refused request.
	userRejectedCode = 4001
	defaultPoll      = 2 * time.Second
)

// Provider implements ports.WalletProvider and ports.AccountWatcher against
// a JSON-RPC endpoint exposing eth_accounts and eth_requestAccounts.
type Provider struct {
	url  string
	http *http.Client
	poll time.Duration
	log  zerolog.Logger
	id   atomic.Int64
}

func NewProvider(url string, hc *http.Client, poll time.Duration, log zerolog.Logger) *Provider {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if poll <= 0 {
		poll = defaultPoll
	}
	return &Provider{url: url, http: hc, poll: poll, log: log}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (p *Provider) accounts(ctx context.Context, method string) ([]string, error) {
	raw, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: p.id.Add(1), Method: method, Params: []any{}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if out.Error != nil {
		if out.Error.Code == userRejectedCode {
			return nil, fmt.Errorf("%s: %w", method, domain.ErrWalletRejected)
		}
		return nil, fmt.Errorf("%s: %w", method, out.Error)
	}
	var accounts []string
	if len(out.Result) > 0 {
		if err := json.Unmarshal(out.Result, &accounts); err != nil {
			return nil, fmt.Errorf("%s: decode accounts: %w", method, err)
		}
	}
	return accounts, nil
}

// DetectAuthorized returns the first authorized account without prompting.
func (p *Provider) DetectAuthorized(ctx context.Context) (string, error) {
	accounts, err := p.accounts(ctx, "eth_accounts")
	if err != nil || len(accounts) == 0 {
		return "", err
	}
	return accounts[0], nil
}

// RequestConnection prompts the wallet for an account.
func (p *Provider) RequestConnection(ctx context.Context) (string, error) {
	accounts, err := p.accounts(ctx, "eth_requestAccounts")
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("eth_requestAccounts: %w", domain.ErrWalletRejected)
	}
	return accounts[0], nil
}

// WatchAccounts polls eth_accounts and calls fn when the account list
// changes. Polling errors are logged and skipped.
func (p *Provider) WatchAccounts(ctx context.Context, fn func(accounts []string)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.poll)
		defer ticker.Stop()

		last, err := p.accounts(ctx, "eth_accounts")
		if err != nil {
			p.log.Debug().Err(err).Msg("initial account poll failed")
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			accounts, err := p.accounts(ctx, "eth_accounts")
			if err != nil {
				if ctx.Err() == nil {
					p.log.Debug().Err(err).Msg("account poll failed")
				}
				continue
			}
			if !sameAccounts(last, accounts) {
				last = accounts
				fn(accounts)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}

func sameAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !domain.SameAddress(a[i], b[i]) {
			return false
		}
	}
	return true
}
