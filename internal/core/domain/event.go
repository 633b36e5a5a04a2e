package domain

import "time"

// AuditKind classifies a recorded client event.
type AuditKind string

const (
	AuditLogin           AuditKind = "login"
	AuditLogout          AuditKind = "logout"
	AuditRestored        AuditKind = "restored"
	AuditWalletConnected AuditKind = "wallet_connected"
	AuditWalletUnlinked  AuditKind = "wallet_unlinked"
)

// AuditEvent is a single entry of the client audit trail.
type AuditEvent struct {
	ID        string
	Kind      AuditKind
	UserID    string
	Address   string
	Timestamp time.Time
}
