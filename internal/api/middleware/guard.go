package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/api/metrics"
	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/guard"
)

// UserKey is the echo context key holding the *domain.Identity of a
// rendered request.
const UserKey = "user"

// SessionReader returns the current session snapshot.
type SessionReader interface {
	Snapshot() domain.Session
}

// Guards builds echo middleware from the route guards.
type Guards struct {
	session    SessionReader
	paths      guard.Paths
	retryAfter time.Duration
}

func NewGuards(session SessionReader, paths guard.Paths, retryAfter time.Duration) *Guards {
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	return &Guards{session: session, paths: paths, retryAfter: retryAfter}
}

// Protected requires a signed-in user.
func (g *Guards) Protected() echo.MiddlewareFunc {
	return g.wrap("protected", func(s domain.Session) guard.Decision {
		return guard.ProtectedRoute(s, g.paths)
	})
}

// Owner requires a signed-in user holding the capability tag.
func (g *Guards) Owner(required domain.CapabilityType) echo.MiddlewareFunc {
	return g.wrap("owner", func(s domain.Session) guard.Decision {
		return guard.OwnerGuard(s, required, g.paths)
	})
}

// Roles requires a signed-in user with one of the allowed roles.
func (g *Guards) Roles(allowed ...domain.Role) echo.MiddlewareFunc {
	return g.wrap("role", func(s domain.Session) guard.Decision {
		return guard.RoleGuard(s, allowed, g.paths)
	})
}

type pendingResponse struct {
	Status string `json:"status"`
}

// wrap maps a guard decision to HTTP: Render runs the route, Pending
// answers 202 with Retry-After, Redirect answers 302.
func (g *Guards) wrap(name string, decide func(domain.Session) guard.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := g.session.Snapshot()
			d := decide(s)
			metrics.GuardDecisionsTotal.WithLabelValues(name, string(d.Outcome)).Inc()

			switch d.Outcome {
			case guard.Render:
				c.Set(UserKey, s.User)
				return next(c)
			case guard.Pending:
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(g.retryAfter.Round(time.Second)/time.Second)))
				return c.JSON(http.StatusAccepted, pendingResponse{Status: "pending"})
			default:
				return c.Redirect(http.StatusFound, d.Path)
			}
		}
	}
}
