package domain

// WalletState is the lifecycle state of the local wallet connection.
type WalletState string

const (
	WalletUninitialized WalletState = "uninitialized"
	WalletInitializing  WalletState = "initializing"
	WalletDisconnected  WalletState = "disconnected"
	WalletConnected     WalletState = "connected"
)

// WalletLink is a snapshot of the wallet connection held by the wallet store.
// IsConnected implies Address != "".
//
// LinkedAddress, CanDisconnect and ActiveProperties mirror the last
// backend wallet status and are independent from the local connection.
type WalletLink struct {
	State            WalletState `json:"state"`
	Address          string      `json:"walletAddress,omitempty"`
	IsConnected      bool        `json:"isConnected"`
	LinkedAddress    string      `json:"linkedAddress,omitempty"`
	CanDisconnect    bool        `json:"canDisconnect"`
	ActiveProperties int         `json:"activePropertiesCount"`
}

// WalletStatus is the backend view of a user's wallet linkage.
type WalletStatus struct {
	HasWallet             bool   `json:"hasWallet"`
	WalletAddress         string `json:"walletAddress,omitempty"`
	CanDisconnect         bool   `json:"canDisconnect"`
	ActivePropertiesCount int    `json:"activePropertiesCount"`
}

// DisconnectResult is the backend answer to an unlink request.
type DisconnectResult struct {
	Message               string   `json:"message"`
	CanDisconnect         bool     `json:"canDisconnect"`
	Reasons               []string `json:"reasons,omitempty"`
	ActivePropertiesCount int      `json:"activePropertiesCount,omitempty"`
}
