package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET,       required"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	Store           string        `env:"STORE,            default=mongo"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
	Sweep SweepConfig
}

type MongoConfig struct {
	URI                 string `env:"MONGO_URI,                  default=mongodb://localhost:27017"`
	Database            string `env:"MONGO_DB,                   default=lending_ledger"`
	UsersCollection     string `env:"MONGO_USERS_COLLECTION,     default=users"`
	CustomersCollection string `env:"MONGO_CUSTOMERS_COLLECTION, default=customers"`
	LoansCollection     string `env:"MONGO_LOANS_COLLECTION,     default=loans"`
}

// RedisConfig is optional: an empty Addr disables the sweep lock.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type SweepConfig struct {
	Schedule   string        `env:"SWEEP_SCHEDULE,     default=0 0 * * *"`
	Timezone   string        `env:"SWEEP_TIMEZONE,     default=Local"`
	RunOnStart bool          `env:"SWEEP_RUN_ON_START, default=false"`
	Timeout    time.Duration `env:"SWEEP_TIMEOUT,      default=1m"`
}

// Location resolves the sweep timezone.
func (s SweepConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("config: STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store)
	}
	return &cfg, nil
}
