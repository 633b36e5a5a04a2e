package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/api/handler"
	"github.com/rentchain/rentclient/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string   `json:"error"`
	Reasons []string `json:"reasons,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var locked *domain.WalletLockedError
	if errors.As(err, &locked) {
		return http.StatusConflict, errorResponse{Error: locked.Error(), Reasons: locked.Reasons}
	}

	if code, msg, ok := handler.StatusFor(err); ok {
		if code >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("upstream failure")
		}
		return code, errorResponse{Error: msg}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
