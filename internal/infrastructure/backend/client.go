// Package backend is the HTTP client of the marketplace REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokens attaches the bearer token of the session to protected calls.
func WithTokens(tokens ports.TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithClaims decodes role and capability types from issued tokens.
func WithClaims(d *ClaimsDecoder) Option {
	return func(c *Client) { c.claims = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client implements ports.AuthBackend, ports.ProfileBackend and
// ports.WalletBackend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenSource
	claims  *ClaimsDecoder
	log     zerolog.Logger
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the backend answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	resp.Body.Close()
	return nil
}

type call struct {
	method  string
	path    string
	query   map[string]string
	body    any
	private bool
}

// do sends the call and decodes a 2xx JSON body into out when out is not
// nil. Non-2xx answers are returned as *domain.BackendError.
func (c *Client) do(ctx context.Context, cl call, out any) (*http.Response, error) {
	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+"/"+strings.TrimLeft(cl.path, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(cl.query) > 0 {
		q := req.URL.Query()
		for k, v := range cl.query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	if cl.private {
		if c.tokens == nil || c.tokens.Token() == "" {
			return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, domain.ErrNotAuthenticated)
		}
		req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.BackendError{Message: "network failure", Err: fmt.Errorf("%w: %v", domain.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp, &statusError{
			err:  &domain.BackendError{Status: resp.StatusCode, Message: errorMessage(raw)},
			body: raw,
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

// statusError keeps the raw body of a non-2xx answer for callers that
// decode structured refusals.
type statusError struct {
	err  *domain.BackendError
	body []byte
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// errorMessage extracts the message or error field of a JSON error body.
func errorMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return strings.TrimSpace(string(raw))
	}
	for _, field := range []string{"message", "error"} {
		if v := gjson.GetBytes(raw, field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// backendStatus returns the HTTP status of a backend error, or 0.
func backendStatus(err error) (int, string) {
	var be *domain.BackendError
	if errors.As(err, &be) {
		return be.Status, be.Message
	}
	return 0, ""
}

// withFallback keeps a backend error but gives it a message when the body
// carried none.
func withFallback(err error, fallback string) error {
	var be *domain.BackendError
	if errors.As(err, &be) && be.Message == "" {
		be.Message = fallback
	}
	return err
}
