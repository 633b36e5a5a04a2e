package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

type lockedResponse struct {
	Error            string   `json:"error"`
	Reasons          []string `json:"reasons,omitempty"`
	ActiveProperties int      `json:"activePropertiesCount"`
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrAccountNotVerified, http.StatusForbidden},
	{domain.ErrEmailExists, http.StatusConflict},
	{domain.ErrInvalidRegistration, http.StatusBadRequest},
	{domain.ErrInvalidOTP, http.StatusBadRequest},
	{domain.ErrTooManyRequests, http.StatusTooManyRequests},
	{domain.ErrNotAuthenticated, http.StatusUnauthorized},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrWalletMissing, http.StatusServiceUnavailable},
	{domain.ErrWalletRejected, http.StatusForbidden},
	{domain.ErrInvalidAddress, http.StatusUnprocessableEntity},
	{domain.ErrStaleResponse, http.StatusConflict},
	{domain.ErrNetwork, http.StatusBadGateway},
}

// StatusFor maps a domain error to an HTTP status and a client message.
// ok is false for errors that have no public mapping.
func StatusFor(err error) (code int, msg string, ok bool) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			return m.code, publicMessage(err, m.err), true
		}
	}
	var be *domain.BackendError
	if errors.As(err, &be) {
		return http.StatusBadGateway, be.Error(), true
	}
	return 0, "", false
}

func publicMessage(err, sentinel error) string {
	var be *domain.BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	if errors.Is(sentinel, domain.ErrValidation) {
		return err.Error()
	}
	return sentinel.Error()
}

// respondError renders known errors; unknown ones go to the echo error
// handler.
func respondError(c echo.Context, err error) error {
	var locked *domain.WalletLockedError
	if errors.As(err, &locked) {
		return c.JSON(http.StatusConflict, lockedResponse{
			Error:            locked.Error(),
			Reasons:          locked.Reasons,
			ActiveProperties: locked.ActiveProperties,
		})
	}
	code, msg, ok := StatusFor(err)
	if !ok {
		return err
	}
	return c.JSON(code, errorResponse{Error: msg})
}

// bindAndValidate binds the request body into req and runs the validator
// when one is registered. On failure the 400 answer is already written and
// ok is false.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return false, c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
	}
	return true, nil
}
