package ports

import (
	"context"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// AuthBackend is the public authentication API of the marketplace backend.
type AuthBackend interface {
	Login(ctx context.Context, data domain.LoginData) (*domain.Credentials, error)
	Register(ctx context.Context, data domain.RegisterData) error
	// VerifyOtp returns non-nil credentials only when the backend issues a
	// session on verification.
	VerifyOtp(ctx context.Context, data domain.VerifyOtpData) (*domain.Credentials, error)
	ResendOtp(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, data domain.ResetPasswordData) error
}

// ProfileBackend is the protected profile API.
type ProfileBackend interface {
	FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateUserProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error)
}

// WalletBackend is the protected wallet linkage API.
type WalletBackend interface {
	ConnectWallet(ctx context.Context, userID, address string) error
	DisconnectWallet(ctx context.Context, userID string) (*domain.DisconnectResult, error)
	GetWalletStatus(ctx context.Context, userID string) (*domain.WalletStatus, error)
}
