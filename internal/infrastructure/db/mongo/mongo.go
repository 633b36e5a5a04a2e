package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	appName        = "rentclient"
)

// Config holds the audit database connection settings.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect opens the audit database and pings it. The returned close func
// disconnects the client.
func Connect(ctx context.Context, cfg Config) (*mongo.Database, func(context.Context) error, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client.Database(cfg.Database), client.Disconnect, nil
}
