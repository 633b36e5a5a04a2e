package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// SessionActions is the subset of the session store the auth endpoints drive.
type SessionActions interface {
	Snapshot() domain.Session
	Login(ctx context.Context, data domain.LoginData) (bool, error)
	Register(ctx context.Context, data domain.RegisterData) (bool, error)
	VerifyOtp(ctx context.Context, data domain.VerifyOtpData) (bool, error)
	ResendOtp(ctx context.Context, email string) (bool, error)
	ForgotPassword(ctx context.Context, email string) (bool, error)
	ResetPassword(ctx context.Context, data domain.ResetPasswordData) (bool, error)
	Logout(ctx context.Context)
}

type AuthHandler struct {
	session SessionActions
}

func NewAuthHandler(session SessionActions) *AuthHandler {
	return &AuthHandler{session: session}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type verifyOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type authResponse struct {
	Success bool             `json:"success"`
	User    *domain.Identity `json:"user,omitempty"`
}

// Login signs the user in.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if _, err := h.session.Login(c.Request().Context(), domain.LoginData{Email: req.Email, Password: req.Password}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, User: h.session.Snapshot().User})
}

// Register creates an account. The user still has to verify the email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	data := domain.RegisterData{Firstname: req.Firstname, Lastname: req.Lastname, Email: req.Email, Password: req.Password}
	if _, err := h.session.Register(c.Request().Context(), data); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, authResponse{Success: true})
}

// VerifyOtp confirms the email code and signs the user in.
//
// @Summary      Verify email code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOtpRequest  true  "Email and code"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	var req verifyOtpRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if _, err := h.session.VerifyOtp(c.Request().Context(), domain.VerifyOtpData{Email: req.Email, Code: req.Code}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, User: h.session.Snapshot().User})
}

// ResendOtp asks the backend to send a new verification code.
//
// @Summary      Resend email code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Email"
// @Success      200   {object}  authResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/resend-otp [post]
func (h *AuthHandler) ResendOtp(c echo.Context) error {
	var req emailRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if _, err := h.session.ResendOtp(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true})
}

// ForgotPassword starts a password reset.
//
// @Summary      Forgot password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Email"
// @Success      200   {object}  authResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if _, err := h.session.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true})
}

// ResetPassword completes a password reset.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset confirmation"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	data := domain.ResetPasswordData{Email: req.Email, Code: req.Code, NewPassword: req.NewPassword}
	if _, err := h.session.ResetPassword(c.Request().Context(), data); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true})
}

// Logout ends the session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, authResponse{Success: true})
}
