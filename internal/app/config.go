package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/taskdeck/taskdeck/internal/platform/cache"
)

// minProductionSecretLen is the shortest JWT secret accepted in production.
const minProductionSecretLen = 32

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":4000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PGDSN         string `envconfig:"PG_DSN" required:"true"`
	PGMaxConns    int32  `envconfig:"PG_MAX_CONNS" default:"10"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	RedisAddr          string        `envconfig:"REDIS_ADDR"`
	RedisPassword      string        `envconfig:"REDIS_PASSWORD"`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	LoginMaxFailures   int           `envconfig:"LOGIN_MAX_FAILURES" default:"5"`
	LoginFailureWindow time.Duration `envconfig:"LOGIN_FAILURE_WINDOW" default:"15m"`

	AuthEventsRetention time.Duration `envconfig:"AUTH_EVENTS_RETENTION" default:"2160h"`
	AuthEventsPruneCron string        `envconfig:"AUTH_EVENTS_PRUNE_CRON" default:"0 3 * * *"`

	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret must be provided")
	}
	if c.PGDSN == "" {
		return errors.New("postgres dsn must be provided")
	}
	if c.IsProduction() && len(c.JWTSecret) < minProductionSecretLen {
		return errors.New("jwt secret must be at least 32 bytes in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// RedisEnabled reports whether throttling and job queues are configured.
func (c *Config) RedisEnabled() bool {
	return c != nil && c.RedisAddr != ""
}

// RedisOptions returns the connection settings for the shared Redis instance.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}
