package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/api/middleware"
	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/service"
)

type stubProfile struct {
	snapshot service.ProfileSnapshot
	fetchFn  func(ctx context.Context, userID string) (*domain.Profile, error)
	updateFn func(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error)
}

func (p *stubProfile) Snapshot() service.ProfileSnapshot { return p.snapshot }

func (p *stubProfile) FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return p.fetchFn(ctx, userID)
}

func (p *stubProfile) UpdateUserProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
	return p.updateFn(ctx, userID, update)
}

func guardedContext(e *echo.Echo, method, path, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(e, method, path, body)
	c.Set(middleware.UserKey, &domain.Identity{UserID: userID})
	return c, rec
}

func TestProfileHandler_GetUsesLoadedProfile(t *testing.T) {
	e := echo.New()
	stub := &stubProfile{
		snapshot: service.ProfileSnapshot{Profile: &domain.Profile{UserID: "u1", Firstname: "Ada"}},
		fetchFn: func(context.Context, string) (*domain.Profile, error) {
			t.Fatalf("loaded profile must not be refetched")
			return nil, nil
		},
	}
	c, rec := guardedContext(e, http.MethodGet, "/profile", "", "u1")

	if err := NewProfileHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["firstname"] != "Ada" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_GetFetchesForOtherUser(t *testing.T) {
	e := echo.New()
	stub := &stubProfile{
		snapshot: service.ProfileSnapshot{Profile: &domain.Profile{UserID: "old"}},
		fetchFn: func(_ context.Context, userID string) (*domain.Profile, error) {
			if userID != "u2" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.Profile{UserID: "u2"}, nil
		},
	}
	c, rec := guardedContext(e, http.MethodGet, "/profile", "", "u2")

	if err := NewProfileHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["userId"] != "u2" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_GetNotFound(t *testing.T) {
	e := echo.New()
	stub := &stubProfile{fetchFn: func(context.Context, string) (*domain.Profile, error) {
		return nil, domain.ErrUserNotFound
	}}
	c, rec := guardedContext(e, http.MethodGet, "/profile", "", "u1")

	_ = NewProfileHandler(stub).Get(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProfileHandler_Update(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubProfile{updateFn: func(_ context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
		if userID != "u1" || update.City == nil || *update.City != "Lyon" || update.Phone != nil {
			t.Fatalf("unexpected update: %s %+v", userID, update)
		}
		return &domain.Profile{UserID: userID, City: *update.City}, nil
	}}
	c, rec := guardedContext(e, http.MethodPut, "/profile", `{"city":"Lyon"}`, "u1")

	if err := NewProfileHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["city"] != "Lyon" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_UpdateValidation(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubProfile{updateFn: func(context.Context, string, domain.ProfileUpdate) (*domain.Profile, error) {
		t.Fatalf("invalid update must not reach the store")
		return nil, nil
	}}
	c, rec := guardedContext(e, http.MethodPut, "/profile", `{"date_of_birth":"31/12/1990"}`, "u1")

	_ = NewProfileHandler(stub).Update(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg, _ := decodeBody(t, rec)["error"].(string); msg != "date_of_birth must match 2006-01-02" {
		t.Fatalf("unexpected message: %q", msg)
	}
}
