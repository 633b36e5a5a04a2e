package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientName is reported to the server with CLIENT SETNAME on each connection.
const ClientName = "rentclient"

const (
	defaultTimeout  = 5 * time.Second
	defaultPoolSize = 10
)

// Config holds the connection settings of the session store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing, socket reads and writes, and the start-up ping.
	Timeout  time.Duration
	PoolSize int
}

func (c Config) options() *redis.Options {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pool := c.PoolSize
	if pool <= 0 {
		pool = defaultPoolSize
	}
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		ClientName:   ClientName,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     pool,
	}
}

// Connect opens the session store client and pings it once.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
