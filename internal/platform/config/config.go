package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSecretLength = 10

// Config captures process level configuration loaded from the environment.
type Config struct {
	Environment string   `env:"APP_ENV" envDefault:"development"`
	Addr        string   `env:"AUTHGATE_ADDR" envDefault:":8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL string   `env:"DB_URL"`
	CORSOrigins []string `env:"CORS_ORIGIN" envSeparator:","`

	Redis RedisConfig `envPrefix:"REDIS_"`
	Auth  AuthConfig
	Audit AuditConfig `envPrefix:"AUDIT_"`
}

// RedisConfig configures the shared key-value store. Retry settings mirror a
// capped linear reconnect strategy (50ms steps up to 500ms).
type RedisConfig struct {
	URL             string        `env:"URL,required"`
	PoolSize        int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout     time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"10"`
	MinRetryBackoff time.Duration `env:"MIN_RETRY_BACKOFF" envDefault:"50ms"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"500ms"`
}

// AuthConfig holds signing secrets, token lifetimes and identity provider settings.
type AuthConfig struct {
	AccessSecret       string        `env:"ACCESS_SECRET,required"`
	RefreshSecret      string        `env:"REFRESH_SECRET,required"`
	AccessTTL          time.Duration `env:"ACCESS_EXPIRED" envDefault:"15m"`
	RefreshTTL         time.Duration `env:"REFRESH_EXPIRED" envDefault:"168h"`
	CSRFTTL            time.Duration `env:"CSRF_TTL" envDefault:"6h"`
	GoogleClientID     string        `env:"GOOGLE_WEB_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_WEB_CLIENT_SECRET"`
}

// AuditConfig selects where security events go. Without brokers events are
// only logged.
type AuditConfig struct {
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"authgate.security"`
	BufferSize   int      `env:"BUFFER_SIZE" envDefault:"1024"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the process runs in a development environment.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "develop", "dev", "local":
		return true
	}
	return false
}

// Validate checks cross-field rules env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if len(c.Auth.AccessSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("ACCESS_SECRET must be at least %d chars", minSecretLength))
	}
	if len(c.Auth.RefreshSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("REFRESH_SECRET must be at least %d chars", minSecretLength))
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("ACCESS_SECRET and REFRESH_SECRET must differ"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 || c.Auth.CSRFTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}

	if u, err := url.Parse(c.Redis.URL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		errs = append(errs, errors.New("REDIS_URL must start with 'redis://' or 'rediss://'"))
	}

	var invalid []string
	for _, origin := range c.CORSOrigins {
		u, err := url.Parse(strings.TrimSpace(origin))
		if err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, origin)
		}
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("CORS_ORIGIN contains invalid URLs: %s", strings.Join(invalid, ", ")))
	}

	return errors.Join(errs...)
}
