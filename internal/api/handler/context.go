package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/api/middleware"
	"github.com/rentchain/rentclient/internal/core/domain"
)

// ctxUser returns the identity injected by the guard middleware. A missing
// identity means the route was mounted without a guard.
func ctxUser(c echo.Context) (*domain.Identity, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.Identity)
	if user == nil || user.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user")
	}
	return user, nil
}
