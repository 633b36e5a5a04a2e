package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/api/metrics"
	"github.com/rentchain/rentclient/internal/core/domain"
)

// WalletReader returns the wallet snapshot.
type WalletReader interface {
	Snapshot() domain.WalletLink
}

// WalletActions is the subset of the wallet store the wallet endpoints drive.
type WalletActions interface {
	WalletReader
	Connect(ctx context.Context) (string, error)
	Disconnect()
	Unlink(ctx context.Context) error
	FetchWalletStatus(ctx context.Context, userID string) (*domain.WalletStatus, error)
}

// AuditRecorder stores wallet events. It must not block.
type AuditRecorder interface {
	Record(kind domain.AuditKind, userID, address string)
}

// CurrentUser returns the signed-in user id, or "".
type CurrentUser interface {
	CurrentUserID() string
}

type WalletHandler struct {
	wallet WalletActions
	users  CurrentUser
	audit  AuditRecorder
}

// NewWalletHandler builds the wallet endpoints. audit may be nil.
func NewWalletHandler(wallet WalletActions, users CurrentUser, audit AuditRecorder) *WalletHandler {
	return &WalletHandler{wallet: wallet, users: users, audit: audit}
}

type connectResponse struct {
	WalletAddress string            `json:"walletAddress"`
	Wallet        domain.WalletLink `json:"wallet"`
}

type walletStatusResponse struct {
	Status *domain.WalletStatus `json:"status"`
	Wallet domain.WalletLink    `json:"wallet"`
}

type hostWalletResponse struct {
	Wallet       domain.WalletLink `json:"wallet"`
	ShortAddress string            `json:"shortAddress,omitempty"`
}

// Get returns the wallet snapshot.
//
// @Summary      Wallet state
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  domain.WalletLink
// @Router       /wallet [get]
func (h *WalletHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.wallet.Snapshot())
}

// Connect prompts the wallet provider and links the account.
//
// @Summary      Connect wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  connectResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /wallet/connect [post]
func (h *WalletHandler) Connect(c echo.Context) error {
	address, err := h.wallet.Connect(c.Request().Context())
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrWalletRejected) {
			result = "rejected"
		}
		metrics.WalletConnectionsTotal.WithLabelValues("connect", result).Inc()
		return respondError(c, err)
	}
	metrics.WalletConnectionsTotal.WithLabelValues("connect", "ok").Inc()
	h.record(domain.AuditWalletConnected, address)
	return c.JSON(http.StatusOK, connectResponse{WalletAddress: address, Wallet: h.wallet.Snapshot()})
}

// Disconnect forgets the local connection. The backend link is kept.
//
// @Summary      Disconnect wallet locally
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  domain.WalletLink
// @Router       /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(c echo.Context) error {
	h.wallet.Disconnect()
	return c.JSON(http.StatusOK, h.wallet.Snapshot())
}

// Unlink removes the backend link and disconnects.
//
// @Summary      Unlink wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  domain.WalletLink
// @Failure      409  {object}  lockedResponse
// @Failure      502  {object}  errorResponse
// @Router       /wallet/link [delete]
func (h *WalletHandler) Unlink(c echo.Context) error {
	previous := h.wallet.Snapshot()
	if err := h.wallet.Unlink(c.Request().Context()); err != nil {
		result := "error"
		var locked *domain.WalletLockedError
		if errors.As(err, &locked) {
			result = "locked"
		}
		metrics.WalletConnectionsTotal.WithLabelValues("unlink", result).Inc()
		return respondError(c, err)
	}
	metrics.WalletConnectionsTotal.WithLabelValues("unlink", "ok").Inc()

	address := previous.LinkedAddress
	if address == "" {
		address = previous.Address
	}
	h.record(domain.AuditWalletUnlinked, address)
	return c.JSON(http.StatusOK, h.wallet.Snapshot())
}

// Status refreshes the backend wallet status of the signed-in user.
//
// @Summary      Wallet settings
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  walletStatusResponse
// @Success      202  {object}  map[string]string
// @Failure      302  {string}  string  "redirect"
// @Failure      502  {object}  errorResponse
// @Router       /settings/wallet-status [get]
func (h *WalletHandler) Status(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	status, err := h.wallet.FetchWalletStatus(c.Request().Context(), user.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, walletStatusResponse{Status: status, Wallet: h.wallet.Snapshot()})
}

// Host returns the wallet used to receive rental payouts.
//
// @Summary      Host wallet
// @Tags         host
// @Produce      json
// @Success      200  {object}  hostWalletResponse
// @Success      202  {object}  map[string]string
// @Failure      302  {string}  string  "redirect"
// @Router       /host/wallet [get]
func (h *WalletHandler) Host(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}
	link := h.wallet.Snapshot()
	address := link.Address
	if address == "" {
		address = link.LinkedAddress
	}
	return c.JSON(http.StatusOK, hostWalletResponse{Wallet: link, ShortAddress: domain.ShortAddress(address)})
}

func (h *WalletHandler) record(kind domain.AuditKind, address string) {
	if h.audit == nil {
		return
	}
	userID := ""
	if h.users != nil {
		userID = h.users.CurrentUserID()
	}
	h.audit.Record(kind, userID, address)
}
