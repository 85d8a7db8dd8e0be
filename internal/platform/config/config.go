package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded from the environment so
// main stays lean.
type Config struct {
	Server   Server
	Log      Log
	Database Database
	Redis    RedisConfig
	FollowUp FollowUp
	Tickets  Tickets
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"SAFERETURN_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SAFERETURN_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"SAFERETURN_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Database configures the Postgres store. An empty URL selects in-memory stores.
type Database struct {
	URL          string        `env:"DATABASE_URL"`
	Driver       string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	MaxOpenConns int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLife  time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the optional per-profile submission lock.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	LockTTL      time.Duration `env:"REDIS_LOCK_TTL" envDefault:"10s"`
}

// FollowUp holds submission rules.
type FollowUp struct {
	// EnforceSchedule rejects check-ins for months that have not opened on
	// the calendar yet (30-day months counted from release).
	EnforceSchedule bool          `env:"FOLLOWUP_ENFORCE_SCHEDULE" envDefault:"true"`
	TxTimeout       time.Duration `env:"FOLLOWUP_TX_TIMEOUT" envDefault:"5s"`
}

// Tickets holds ticket generation policy.
type Tickets struct {
	// Dedup skips generating a ticket when the profile already has an open
	// or in-progress ticket of the same category.
	Dedup bool `env:"TICKETS_DEDUP" envDefault:"false"`
}

// FromEnv parses the process environment into a Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "pgx" {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q: must be postgres or pgx", cfg.Database.Driver)
	}
	return cfg, nil
}
