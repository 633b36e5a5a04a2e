package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountNotVerified  = errors.New("please verify your email before logging in")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidRegistration = errors.New("invalid registration data")
	ErrInvalidOTP          = errors.New("invalid otp code")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrNetwork             = errors.New("network failure")
	ErrValidation          = errors.New("validation failed")
	ErrNotAuthenticated    = errors.New("user not authenticated")
	ErrUserNotFound        = errors.New("user not found")

	ErrWalletMissing  = errors.New("no wallet provider available")
	ErrWalletRejected = errors.New("wallet connection rejected")
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrStaleResponse marks a response that arrived after the session it
	// was issued for ended. Callers drop it silently.
	ErrStaleResponse = errors.New("stale response discarded")
)

// BackendError is a failure reported by the marketplace backend.
type BackendError struct {
	Status  int
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "backend error"
}

func (e *BackendError) Unwrap() error { return e.Err }

// WalletLockedError is returned when the backend refuses to unlink a wallet,
// typically because the user still has active listings or bookings.
type WalletLockedError struct {
	Reasons          []string
	ActiveProperties int
}

func (e *WalletLockedError) Error() string {
	if len(e.Reasons) == 0 {
		return "active properties prevent disconnection"
	}
	return "wallet cannot be disconnected: " + strings.Join(e.Reasons, ", ")
}
