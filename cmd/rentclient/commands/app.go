package commands

import (
	"context"
	"fmt"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/rentchain/rentclient/internal/api/metrics"
	"github.com/rentchain/rentclient/internal/core/ports"
	"github.com/rentchain/rentclient/internal/core/service"
	"github.com/rentchain/rentclient/internal/infrastructure/backend"
	"github.com/rentchain/rentclient/internal/infrastructure/db/mongo"
	"github.com/rentchain/rentclient/internal/infrastructure/db/redis"
	"github.com/rentchain/rentclient/internal/infrastructure/geo"
	"github.com/rentchain/rentclient/internal/infrastructure/queue"
	"github.com/rentchain/rentclient/internal/infrastructure/theme"
	"github.com/rentchain/rentclient/internal/infrastructure/wallet"
	"github.com/rentchain/rentclient/internal/pkg/config"
	"github.com/rentchain/rentclient/pkg/logger"
)

// app is the wired client: stores, adapters and the async runner.
type app struct {
	log zerolog.Logger

	rdb        *goredis.Client
	db         *mongodrv.Database
	closeMongo func(context.Context) error

	dispatcher *queue.Dispatcher
	session    *service.SessionStore
	profile    *service.ProfileStore
	wallet     *service.WalletStore
	coord      *service.Coordinator
	audit      *service.AuditTrail
	theme      *theme.Store
	locator    *geo.Locator

	detach []func()
}

func connectRedis(ctx context.Context, c *config.Config) (*goredis.Client, error) {
	return redis.Connect(ctx, redis.Config{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Timeout:  c.Redis.Timeout,
		PoolSize: c.Redis.PoolSize,
	})
}

func connectMongo(ctx context.Context, c *config.Config) (*mongodrv.Database, func(context.Context) error, error) {
	return mongo.Connect(ctx, mongo.Config{URI: c.Mongo.URI, Database: c.Mongo.Database})
}

// newApp connects the stores and wires the services. Nothing runs until
// start is called.
func newApp(ctx context.Context, c *config.Config) (*app, error) {
	a := &app{log: logger.For("app")}

	rdb, err := connectRedis(ctx, c)
	if err != nil {
		return nil, err
	}
	a.rdb = rdb

	db, closeMongo, err := connectMongo(ctx, c)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	a.db, a.closeMongo = db, closeMongo

	auditRepo := mongo.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		a.log.Warn().Err(err).Msg("audit index not created")
	}

	a.dispatcher = queue.NewDispatcher(c.Session.Workers, logger.For("queue"))

	decoder := backend.NewClaimsDecoder(c.Backend.JWTSecret)
	httpClient := &http.Client{Timeout: c.Backend.Timeout}
	common := []backend.Option{
		backend.WithHTTPClient(httpClient),
		backend.WithClaims(decoder),
		backend.WithLogger(logger.For("backend")),
	}
	public := backend.NewClient(c.Backend.URL, common...)

	opts := []service.SessionOption{
		service.WithPersister(redis.NewSessionRepository(rdb, c.Session.Key, c.Session.TTL)),
		service.WithTokenCheck(decoder.Check),
		service.WithSessionLogger(logger.For("session")),
	}
	if c.Session.ResendInterval > 0 {
		opts = append(opts, service.WithResendLimiter(rate.NewLimiter(rate.Every(c.Session.ResendInterval), 1)))
	}
	a.session = service.NewSessionStore(public, opts...)

	protected := backend.NewClient(c.Backend.URL, append(common, backend.WithTokens(a.session))...)
	a.profile = service.NewProfileStore(protected, a.session, logger.For("profile"))

	var provider ports.WalletProvider
	if c.Wallet.RPCURL != "" {
		provider = wallet.NewProvider(c.Wallet.RPCURL, nil, 0, logger.For("wallet"))
	}
	a.wallet = service.NewWalletStore(provider, protected, a.session, a.profile, logger.For("wallet"))

	a.theme = theme.NewStore(c.Theme.Path, c.Theme.Default, logger.For("theme"))

	deps := service.CoordinatorDeps{
		Theme:   a.theme,
		Wallet:  a.wallet,
		Session: a.session,
		Profile: a.profile,
		Runner:  a.dispatcher,
		Log:     logger.For("bootstrap"),
		OnLoad:  metrics.ObserveLoad,
	}
	if c.Geo.URL != "" {
		a.locator = geo.NewLocator(c.Geo.URL, c.Geo.Timeout, logger.For("geo"))
		deps.Locator = a.locator
	}
	a.coord = service.NewCoordinator(deps)
	a.audit = service.NewAuditTrail(auditRepo, a.dispatcher, logger.For("audit"))
	return a, nil
}

// start launches the workers, attaches observers and bootstraps the stores.
func (a *app) start(ctx context.Context) error {
	a.dispatcher.Start(ctx)
	a.detach = append(a.detach,
		a.session.Subscribe(metrics.ObserveSession),
		a.audit.Attach(a.session),
	)
	if err := a.coord.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	a.coord.Teardown()
	a.wallet.Close()
	for _, fn := range a.detach {
		fn()
	}
	if err := a.closeMongo(ctx); err != nil {
		a.log.Warn().Err(err).Msg("mongo disconnect")
	}
	if err := a.rdb.Close(); err != nil {
		a.log.Warn().Err(err).Msg("redis close")
	}
}
