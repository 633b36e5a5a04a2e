package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// Login calls POST /auth/users/login. The token and the user id are carried
// in the Authorization and user_id response headers.
func (c *Client) Login(ctx context.Context, data domain.LoginData) (*domain.Credentials, error) {
	resp, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/users/login", body: data}, nil)
	if err != nil {
		return nil, loginError(err)
	}
	creds := c.credentials(resp, data.Email)
	if creds == nil {
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: "missing authentication data", Err: domain.ErrInvalidCredentials}
	}
	return creds, nil
}

func loginError(err error) error {
	status, msg := backendStatus(err)
	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusForbidden && containsAny(lower, "verify", "email", "vérifier"):
		return &domain.BackendError{Status: status, Err: domain.ErrAccountNotVerified}
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return &domain.BackendError{Status: status, Err: domain.ErrInvalidCredentials}
	case status == http.StatusTooManyRequests:
		return &domain.BackendError{Status: status, Err: domain.ErrTooManyRequests}
	}
	return withFallback(err, "login failed")
}

// Register calls POST /auth/users.
func (c *Client) Register(ctx context.Context, data domain.RegisterData) error {
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/users", body: data}, nil); err != nil {
		status, msg := backendStatus(err)
		if status == http.StatusBadRequest || status == http.StatusConflict {
			if containsAny(strings.ToLower(msg), "email", "exist") {
				return &domain.BackendError{Status: status, Err: domain.ErrEmailExists}
			}
			return &domain.BackendError{Status: status, Message: msg, Err: domain.ErrInvalidRegistration}
		}
		return withFallback(err, "registration failed")
	}
	return nil
}

// VerifyOtp calls POST /auth/users/verify-otp. Credentials are returned when
// the backend signs the user in with the verification.
func (c *Client) VerifyOtp(ctx context.Context, data domain.VerifyOtpData) (*domain.Credentials, error) {
	resp, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/users/verify-otp", body: data}, nil)
	if err != nil {
		if status, msg := backendStatus(err); status >= 400 && status < 500 {
			return nil, &domain.BackendError{Status: status, Message: msg, Err: domain.ErrInvalidOTP}
		}
		return nil, withFallback(err, "invalid otp code")
	}
	return c.credentials(resp, data.Email), nil
}

// ResendOtp calls POST /auth/users/resend-otp?email=.
func (c *Client) ResendOtp(ctx context.Context, email string) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/users/resend-otp", query: map[string]string{"email": email}}, nil)
	if status, _ := backendStatus(err); status == http.StatusTooManyRequests {
		return &domain.BackendError{Status: status, Err: domain.ErrTooManyRequests}
	}
	return withFallback(err, "failed to resend otp")
}

// ForgotPassword calls POST /auth/users/forgot-password.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/users/forgot-password", body: map[string]string{"email": email}}, nil)
	return withFallback(err, "failed to send reset instructions")
}

// ResetPassword calls POST /auth/users/reset-password.
func (c *Client) ResetPassword(ctx context.Context, data domain.ResetPasswordData) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/users/reset-password", body: data}, nil)
	return withFallback(err, "failed to reset password")
}

// credentials builds the session credentials from the auth response
// headers, or returns nil when they are missing.
func (c *Client) credentials(resp *http.Response, email string) *domain.Credentials {
	token := strings.TrimSpace(strings.TrimPrefix(resp.Header.Get("Authorization"), "Bearer "))
	userID := resp.Header.Get("user_id")
	if token == "" || userID == "" {
		return nil
	}
	creds := &domain.Credentials{Token: token, User: domain.Identity{UserID: userID, Email: email}}
	if c.claims != nil {
		claims, err := c.claims.Decode(token)
		if err != nil {
			c.log.Warn().Err(err).Msg("could not decode token claims")
			return creds
		}
		creds.User.Role = claims.Role
		creds.User.Types = claims.Types
		if creds.User.Email == "" {
			creds.User.Email = claims.Email
		}
	}
	return creds
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
