package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rentchain/rentclient/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user"), http.StatusUnauthorized, "missing authenticated user"},
		{"domain error", fmt.Errorf("update profile: %w", domain.ErrNotAuthenticated), http.StatusUnauthorized, "user not authenticated"},
		{"wallet locked", &domain.WalletLockedError{Reasons: []string{"active rentals"}}, http.StatusConflict, "wallet cannot be disconnected: active rentals"},
		{"network", &domain.BackendError{Err: domain.ErrNetwork}, http.StatusBadGateway, "network failure"},
		{"unexpected", errors.New("kaboom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, resp.Error)
			}
		})
	}
}
