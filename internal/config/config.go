package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL selects Postgres; empty runs on the in-memory store.
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
	MigrationsPath    string        `env:"MIGRATIONS_PATH" envDefault:"db/migrations"`
	RedisURL          string        `env:"REDIS_URL"`
	PublicSessionsTTL time.Duration `env:"PUBLIC_SESSIONS_CACHE_TTL" envDefault:"15s"`
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTIssuer         string        `env:"JWT_ISSUER"`
	JoinCodeAttempts  int           `env:"JOIN_CODE_ATTEMPTS" envDefault:"5"`
	WSWriteTimeout    time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	WSPingInterval    time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JoinCodeAttempts <= 0 {
		return fmt.Errorf("JOIN_CODE_ATTEMPTS must be positive, got %d", c.JoinCodeAttempts)
	}
	if c.WSPingInterval <= 0 {
		return fmt.Errorf("WS_PING_INTERVAL must be positive, got %s", c.WSPingInterval)
	}
	if c.WSWriteTimeout <= 0 {
		return fmt.Errorf("WS_WRITE_TIMEOUT must be positive, got %s", c.WSWriteTimeout)
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 {
		return fmt.Errorf("invalid database pool size %d/%d", c.DBMaxOpenConns, c.DBMaxIdleConns)
	}
	return nil
}
