// Package guard holds the route authorization decisions of the client.
//
// Guards are pure functions of a session snapshot. While the session is
// loading no guard commits to a redirect, so a page refresh never bounces
// a user whose session check has not finished yet.
package guard

import "github.com/rentchain/rentclient/internal/core/domain"

// Outcome is the kind of decision a guard makes.
type Outcome string

const (
	Render   Outcome = "render"
	Pending  Outcome = "pending"
	Redirect Outcome = "redirect"
)

// Decision is the result of a guard evaluation. Path is set for Redirect.
type Decision struct {
	Outcome Outcome
	Path    string
}

func render() Decision             { return Decision{Outcome: Render} }
func pending() Decision            { return Decision{Outcome: Pending} }
func redirectTo(p string) Decision { return Decision{Outcome: Redirect, Path: p} }

// Paths are the redirect targets used by the guards.
type Paths struct {
	// PublicEntry is where ProtectedRoute sends signed-out users.
	PublicEntry string
	// SignIn is where OwnerGuard and RoleGuard send signed-out users.
	SignIn string
	// Default is where users lacking a capability or role are sent.
	Default string
}

// DefaultPaths match the routes of the web client.
func DefaultPaths() Paths {
	return Paths{PublicEntry: "/", SignIn: "/signin", Default: "/"}
}

// ProtectedRoute requires an authenticated session.
func ProtectedRoute(s domain.Session, p Paths) Decision {
	if s.IsLoading {
		return pending()
	}
	if !authenticated(s) {
		return redirectTo(p.PublicEntry)
	}
	return render()
}

// OwnerGuard requires an authenticated user holding the capability tag.
func OwnerGuard(s domain.Session, required domain.CapabilityType, p Paths) Decision {
	if s.IsLoading {
		return pending()
	}
	if !authenticated(s) {
		return redirectTo(p.SignIn)
	}
	if !s.User.Has(required) {
		return redirectTo(p.Default)
	}
	return render()
}

// RoleGuard requires an authenticated user with one of the allowed roles.
func RoleGuard(s domain.Session, allowed []domain.Role, p Paths) Decision {
	if s.IsLoading {
		return pending()
	}
	if !authenticated(s) {
		return redirectTo(p.SignIn)
	}
	for _, r := range allowed {
		if s.User.Role == r {
			return render()
		}
	}
	return redirectTo(p.Default)
}

func authenticated(s domain.Session) bool {
	return s.IsAuthenticated && s.User != nil
}
