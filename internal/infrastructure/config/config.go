package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string        `env:"PORT,            default=8080"`
	Env           string        `env:"ENV,             default=development"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"JWT_TTL,         default=24h"`
	LogLevel      string        `env:"LOG_LEVEL,       default=info"`
	LogPretty     bool          `env:"LOG_PRETTY,      default=false"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`
	CarriersFile  string        `env:"CARRIERS_FILE"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Provider  ProviderConfig
	Gemini    GeminiConfig
	AMQP      AMQPConfig
	RateLimit RateLimitConfig
	Refresh   RefreshConfig
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=trackflow"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`

	// LockTTL bounds how long a crashed instance can hold a tracking lock.
	LockTTL time.Duration `env:"REDIS_LOCK_TTL, default=30s"`
}

type ProviderConfig struct {
	Name    string        `env:"TRACKING_PROVIDER,     default=trackingmore"`
	APIKey  string        `env:"TRACKINGMORE_API_KEY"`
	BaseURL string        `env:"TRACKINGMORE_BASE_URL, default=https://api.trackingmore.com/v4"`
	Timeout time.Duration `env:"TRACKINGMORE_TIMEOUT,  default=15s"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL,   default=gemini-2.0-flash"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT, default=20s"`
}

type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE, default=trackflow.events"`
}

type RateLimitConfig struct {
	Enabled      bool          `env:"RATE_LIMIT_ENABLED,       default=true"`
	PublicLimit  int           `env:"RATE_LIMIT_PUBLIC,        default=30"`
	PublicWindow time.Duration `env:"RATE_LIMIT_PUBLIC_WINDOW, default=1m"`
	APILimit     int           `env:"RATE_LIMIT_API,           default=10000"`
	APIWindow    time.Duration `env:"RATE_LIMIT_API_WINDOW,    default=1h"`
}

type RefreshConfig struct {
	Workers    int           `env:"REFRESH_WORKERS,     default=4"`
	QueueSize  int           `env:"REFRESH_QUEUE_SIZE,  default=256"`
	Interval   time.Duration `env:"REFRESH_INTERVAL,    default=15m"`
	StaleAfter time.Duration `env:"REFRESH_STALE_AFTER, default=2h"`
	BatchSize  int           `env:"REFRESH_BATCH_SIZE,  default=100"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load with an explicit source, used by tests.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.Refresh.Workers < 1 {
		return errors.New("REFRESH_WORKERS must be at least 1")
	}
	if c.RateLimit.PublicLimit < 1 || c.RateLimit.APILimit < 1 {
		return errors.New("rate limits must be positive")
	}
	return nil
}
