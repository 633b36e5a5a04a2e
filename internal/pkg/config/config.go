package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Wallet  WalletConfig
	Geo     GeoConfig
	Theme   ThemeConfig
	Guard   GuardConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// BackendConfig points at the marketplace REST API.
type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:3000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
	// JWTSecret enables signature checks on issued tokens. When empty the
	// claims are decoded without verification.
	JWTSecret string `env:"JWT_SECRET"`
}

type SessionConfig struct {
	Key            string        `env:"SESSION_KEY,             default=rentclient:auth-storage"`
	TTL            time.Duration `env:"SESSION_TTL,             default=168h"`
	ResendInterval time.Duration `env:"SESSION_RESEND_INTERVAL, default=30s"`
	Workers        int           `env:"SESSION_WORKERS,         default=4"`
}

type WalletConfig struct {
	// RPCURL is the JSON-RPC endpoint of the wallet provider. Empty means
	// no wallet is available.
	RPCURL string `env:"WALLET_RPC_URL"`
}

type GeoConfig struct {
	URL     string        `env:"GEO_URL"`
	Timeout time.Duration `env:"GEO_TIMEOUT, default=5s"`
}

type ThemeConfig struct {
	Default string `env:"THEME_DEFAULT, default=light"`
	Path    string `env:"THEME_PATH"`
}

type GuardConfig struct {
	PublicEntry string        `env:"GUARD_PUBLIC_ENTRY, default=/"`
	SignIn      string        `env:"GUARD_SIGN_IN,      default=/signin"`
	Default     string        `env:"GUARD_DEFAULT,      default=/"`
	RetryAfter  time.Duration `env:"GUARD_RETRY_AFTER,  default=1s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rentclient"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,   default=5s"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for process start-up; it panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
