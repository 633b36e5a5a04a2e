package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// FetchUserProfile calls GET auth/users/{id}.
func (c *Client) FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "auth/users/" + url.PathEscape(userID), private: true}, &p); err != nil {
		if status, _ := backendStatus(err); status == http.StatusNotFound {
			return nil, &domain.BackendError{Status: status, Err: domain.ErrUserNotFound}
		}
		return nil, withFallback(err, "failed to fetch user profile")
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}

// UpdateUserProfile calls PUT auth/users/{id} with the changed fields.
func (c *Client) UpdateUserProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
	var p domain.Profile
	if _, err := c.do(ctx, call{method: http.MethodPut, path: "auth/users/" + url.PathEscape(userID), body: update, private: true}, &p); err != nil {
		return nil, withFallback(err, "failed to update profile")
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}
