package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/rentchain/rentclient/internal/core/domain"
)

type connectWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// ConnectWallet calls POST auth/users/{id}/wallet/connect.
func (c *Client) ConnectWallet(ctx context.Context, userID, address string) error {
	_, err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "auth/users/" + url.PathEscape(userID) + "/wallet/connect",
		body:    connectWalletRequest{WalletAddress: address},
		private: true,
	}, nil)
	return withFallback(err, "failed to connect wallet")
}

type disconnectResponse struct {
	Message               string   `json:"message"`
	CanDisconnect         *bool    `json:"canDisconnect"`
	Reasons               []string `json:"reasons"`
	ActivePropertiesCount int      `json:"activePropertiesCount"`
}

func (r disconnectResponse) result(fallback bool) *domain.DisconnectResult {
	can := fallback
	if r.CanDisconnect != nil {
		can = *r.CanDisconnect
	}
	return &domain.DisconnectResult{
		Message:               r.Message,
		CanDisconnect:         can,
		Reasons:               r.Reasons,
		ActivePropertiesCount: r.ActivePropertiesCount,
	}
}

// DisconnectWallet calls DELETE auth/users/{id}/wallet/disconnect. A 400 or
// 409 answer carries the refusal reasons and is returned as a result.
func (c *Client) DisconnectWallet(ctx context.Context, userID string) (*domain.DisconnectResult, error) {
	var res disconnectResponse
	_, err := c.do(ctx, call{
		method:  http.MethodDelete,
		path:    "auth/users/" + url.PathEscape(userID) + "/wallet/disconnect",
		private: true,
	}, &res)
	if err == nil {
		return res.result(true), nil
	}

	var se *statusError
	if errors.As(err, &se) && (se.err.Status == http.StatusBadRequest || se.err.Status == http.StatusConflict) {
		var refused disconnectResponse
		_ = json.Unmarshal(se.body, &refused)
		if refused.Message == "" {
			refused.Message = se.err.Message
		}
		return refused.result(false), nil
	}
	return nil, withFallback(err, "failed to disconnect wallet")
}

// GetWalletStatus calls GET auth/users/{id}/wallet/status.
func (c *Client) GetWalletStatus(ctx context.Context, userID string) (*domain.WalletStatus, error) {
	var st domain.WalletStatus
	if _, err := c.do(ctx, call{
		method:  http.MethodGet,
		path:    "auth/users/" + url.PathEscape(userID) + "/wallet/status",
		private: true,
	}, &st); err != nil {
		return nil, withFallback(err, "failed to get wallet status")
	}
	return &st, nil
}
