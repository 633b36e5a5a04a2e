package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentchain/rentclient/internal/api"
	"github.com/rentchain/rentclient/internal/api/handler"
	"github.com/rentchain/rentclient/internal/api/middleware"
	"github.com/rentchain/rentclient/internal/core/guard"
	"github.com/rentchain/rentclient/internal/infrastructure/http/handlers"
	"github.com/rentchain/rentclient/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the client stores and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			log := logger.For("server")

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				a.close(closeCtx)
			}()
			if err := a.start(ctx); err != nil {
				return err
			}

			paths := guard.Paths{PublicEntry: cfg.Guard.PublicEntry, SignIn: cfg.Guard.SignIn, Default: cfg.Guard.Default}
			deps := handler.SessionDeps{
				Session:   a.session,
				Bootstrap: a.coord,
				Theme:     a.theme,
				Profile:   a.profile,
				Wallet:    a.wallet,
			}
			if a.locator != nil {
				deps.Location = a.locator
			}

			e := api.NewRouter(api.Deps{
				Log:     log,
				Guards:  middleware.NewGuards(a.session, paths, cfg.Guard.RetryAfter),
				Auth:    handler.NewAuthHandler(a.session),
				Session: handler.NewSessionHandler(deps),
				Wallet:  handler.NewWalletHandler(a.wallet, a.session, a.audit),
				Profile: handler.NewProfileHandler(a.profile),
				Checks: map[string]handlers.Check{
					"redis": handlers.RedisCheck(a.rdb),
					"mongo": handlers.MongoCheck(a.db),
				},
			})

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Msg("http server listening")
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
