package ports

import "context"

// WalletProvider is the browser wallet capability (an injected EIP-1193 provider).
type WalletProvider interface {
	// DetectAuthorized returns the first already-authorized account without
	// prompting the user, or "" when none is authorized.
	DetectAuthorized(ctx context.Context) (string, error)
	// RequestConnection prompts the user and returns the selected account.
	// A user refusal is reported as domain.ErrWalletRejected.
	RequestConnection(ctx context.Context) (string, error)
}

// AccountWatcher is implemented by providers that push account changes.
type AccountWatcher interface {
	WatchAccounts(ctx context.Context, fn func(accounts []string)) (stop func())
}

// Locator acquires the device location. Fire-and-forget for the core.
type Locator interface {
	RequestLocation(ctx context.Context)
}

// ThemeInitializer applies the stored or default colour theme.
type ThemeInitializer interface {
	Initialize()
}
