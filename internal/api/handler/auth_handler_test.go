package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/core/domain"
)

type stubSession struct {
	snapshot  domain.Session
	loginFn   func(ctx context.Context, data domain.LoginData) (bool, error)
	regFn     func(ctx context.Context, data domain.RegisterData) (bool, error)
	verifyFn  func(ctx context.Context, data domain.VerifyOtpData) (bool, error)
	resendFn  func(ctx context.Context, email string) (bool, error)
	forgotFn  func(ctx context.Context, email string) (bool, error)
	resetFn   func(ctx context.Context, data domain.ResetPasswordData) (bool, error)
	logoutCnt int
}

func (s *stubSession) Snapshot() domain.Session { return s.snapshot }

func (s *stubSession) Login(ctx context.Context, data domain.LoginData) (bool, error) {
	return s.loginFn(ctx, data)
}

func (s *stubSession) Register(ctx context.Context, data domain.RegisterData) (bool, error) {
	return s.regFn(ctx, data)
}

func (s *stubSession) VerifyOtp(ctx context.Context, data domain.VerifyOtpData) (bool, error) {
	return s.verifyFn(ctx, data)
}

func (s *stubSession) ResendOtp(ctx context.Context, email string) (bool, error) {
	return s.resendFn(ctx, email)
}

func (s *stubSession) ForgotPassword(ctx context.Context, email string) (bool, error) {
	return s.forgotFn(ctx, email)
}

func (s *stubSession) ResetPassword(ctx context.Context, data domain.ResetPasswordData) (bool, error) {
	return s.resetFn(ctx, data)
}

func (s *stubSession) Logout(context.Context) { s.logoutCnt++ }

func newJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubSession{}
	stub.loginFn = func(ctx context.Context, data domain.LoginData) (bool, error) {
		if data.Email != "alice@example.com" || data.Password != "secret" {
			t.Fatalf("unexpected args: %+v", data)
		}
		stub.snapshot = domain.Session{State: domain.SessionAuthenticated, IsAuthenticated: true, Token: "tok", User: &domain.Identity{UserID: "u1", Email: data.Email}}
		return true, nil
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	user, ok := resp["user"].(map[string]any)
	if !ok || user["userId"] != "u1" || resp["success"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Fatalf("token must not be returned: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not verified", domain.ErrAccountNotVerified, http.StatusForbidden},
		{"throttled", domain.ErrTooManyRequests, http.StatusTooManyRequests},
		{"backend down", &domain.BackendError{Err: domain.ErrNetwork}, http.StatusBadGateway},
		{"stale", domain.ErrStaleResponse, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			stub := &stubSession{loginFn: func(context.Context, domain.LoginData) (bool, error) { return false, tt.err }}
			c, rec := newJSONContext(e, http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"x"}`)

			if err := NewAuthHandler(stub).Login(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if resp := decodeBody(t, rec); resp["error"] == "" {
				t.Fatalf("expected error message, got %+v", resp)
			}
		})
	}
}

func TestAuthHandler_Login_ValidationError(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubSession{loginFn: func(context.Context, domain.LoginData) (bool, error) {
		t.Fatalf("session must not be called")
		return false, nil
	}}

	c, rec := newJSONContext(e, http.MethodPost, "/auth/login", `{"email":"not-an-email"}`)
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	msg, _ := decodeBody(t, rec)["error"].(string)
	if !strings.Contains(msg, "email must be a valid email") || !strings.Contains(msg, "password is required") {
		t.Fatalf("unexpected validation message: %q", msg)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubSession{regFn: func(_ context.Context, data domain.RegisterData) (bool, error) {
		if data.Firstname != "Ada" || data.Email != "ada@example.com" {
			t.Fatalf("unexpected args: %+v", data)
		}
		return true, nil
	}}

	c, rec := newJSONContext(e, http.MethodPost, "/auth/register", `{"firstname":"Ada","lastname":"L","email":"ada@example.com","password":"longenough"}`)
	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_EmailExists(t *testing.T) {
	e := echo.New()
	stub := &stubSession{regFn: func(context.Context, domain.RegisterData) (bool, error) {
		return false, &domain.BackendError{Status: 409, Message: "email already registered", Err: domain.ErrEmailExists}
	}}

	c, rec := newJSONContext(e, http.MethodPost, "/auth/register", `{"email":"ada@example.com"}`)
	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["error"] != "email already registered" {
		t.Fatalf("expected backend message, got %+v", resp)
	}
}

func TestAuthHandler_OtpAndPasswordFlows(t *testing.T) {
	e := echo.New()
	var calls []string
	stub := &stubSession{
		verifyFn: func(_ context.Context, data domain.VerifyOtpData) (bool, error) {
			calls = append(calls, "verify:"+data.Code)
			return false, domain.ErrInvalidOTP
		},
		resendFn: func(_ context.Context, email string) (bool, error) {
			calls = append(calls, "resend:"+email)
			return true, nil
		},
		forgotFn: func(_ context.Context, email string) (bool, error) {
			calls = append(calls, "forgot:"+email)
			return true, nil
		},
		resetFn: func(_ context.Context, data domain.ResetPasswordData) (bool, error) {
			calls = append(calls, "reset:"+data.NewPassword)
			return true, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/auth/verify-otp", `{"email":"a@example.com","code":"000000"}`)
	_ = h.VerifyOtp(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("verify: expected 400, got %d", rec.Code)
	}

	c, rec = newJSONContext(e, http.MethodPost, "/auth/resend-otp", `{"email":"a@example.com"}`)
	_ = h.ResendOtp(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("resend: expected 200, got %d", rec.Code)
	}

	c, rec = newJSONContext(e, http.MethodPost, "/auth/forgot-password", `{"email":"a@example.com"}`)
	_ = h.ForgotPassword(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot: expected 200, got %d", rec.Code)
	}

	c, rec = newJSONContext(e, http.MethodPost, "/auth/reset-password", `{"email":"a@example.com","code":"1","newPassword":"newsecret"}`)
	_ = h.ResetPassword(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}

	want := "verify:000000,resend:a@example.com,forgot:a@example.com,reset:newsecret"
	if got := strings.Join(calls, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := echo.New()
	stub := &stubSession{}
	c, rec := newJSONContext(e, http.MethodPost, "/auth/logout", "")

	if err := NewAuthHandler(stub).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.logoutCnt != 1 {
		t.Fatalf("expected one logout and 200, got %d calls and %d", stub.logoutCnt, rec.Code)
	}
}
