package domain

// SessionState is the lifecycle state of the authentication session.
type SessionState string

const (
	SessionUnresolved      SessionState = "unresolved"
	SessionResolving       SessionState = "resolving"
	SessionAuthenticated   SessionState = "authenticated"
	SessionUnauthenticated SessionState = "unauthenticated"
)

// Session is an immutable snapshot of the authentication state.
//
// IsAuthenticated implies User != nil and Token != "". IsLoading and
// IsAuthenticated may both be true while an operation is in flight.
type Session struct {
	State           SessionState `json:"state"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *Identity    `json:"user"`
	Token           string       `json:"-"`
	IsLoading       bool         `json:"isLoading"`
}

// UserID returns the current user id, or "" when no identity is known.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.UserID
}

// Settled reports whether no auth-resolving operation is in flight.
func (s Session) Settled() bool {
	return !s.IsLoading
}

// Consistent reports whether the snapshot honours the session invariant.
func (s Session) Consistent() bool {
	if s.IsAuthenticated {
		return s.User != nil && s.Token != ""
	}
	return true
}

// SessionTransition is emitted by the session store on every state change.
type SessionTransition struct {
	Old Session
	New Session
}

// PersistedSession is the subset of the session written to external storage.
type PersistedSession struct {
	Token           string    `json:"token"`
	User            *Identity `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}
