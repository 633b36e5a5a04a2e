package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/rentchain/rentclient/internal/api/handler"
	"github.com/rentchain/rentclient/internal/api/middleware"
	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/infrastructure/http/handlers"

	_ "github.com/rentchain/rentclient/docs"
)

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Log     zerolog.Logger
	Guards  *middleware.Guards
	Auth    *handler.AuthHandler
	Session *handler.SessionHandler
	Wallet  *handler.WalletHandler
	Profile *handler.ProfileHandler
	Checks  map[string]handlers.Check

	// Registry for request metrics. Nil means the prometheus default.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			d.Log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))

	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "rentclient"}
	promHandler := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		promHandler.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/verify-otp", d.Auth.VerifyOtp)
	auth.POST("/resend-otp", d.Auth.ResendOtp)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password", d.Auth.ResetPassword)
	auth.POST("/logout", d.Auth.Logout)

	// --- Public state ---
	e.GET("/session", d.Session.Session)
	e.GET("/bootstrap", d.Session.Bootstrap)
	e.GET("/location", d.Session.Location)
	e.GET("/wallet", d.Wallet.Get)
	e.POST("/wallet/connect", d.Wallet.Connect)
	e.POST("/wallet/disconnect", d.Wallet.Disconnect)
	e.DELETE("/wallet/link", d.Wallet.Unlink)

	// --- Guarded routes ---
	// guards are attached per route; a guarded Group would also answer
	// unmatched paths under its prefix
	protected := d.Guards.Protected()
	e.GET("/profile", d.Profile.Get, protected)
	e.PUT("/profile", d.Profile.Update, protected)
	e.GET("/settings/wallet-status", d.Wallet.Status, protected)

	e.GET("/host/wallet", d.Wallet.Host, d.Guards.Owner(domain.CapabilityHost))

	e.GET("/admin/bootstrap", d.Session.Diagnostics, d.Guards.Roles(domain.RoleAdmin, domain.RoleAgent))

	// --- Health probes (no guard) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
