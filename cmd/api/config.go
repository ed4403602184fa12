package main

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
)

type apiConfig struct {
	Port            uint16        `env:"API_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Storage selects the repository backend: "postgres" or "memory".
	// Postgres settings are read only in postgres mode.
	Storage string `env:"STORAGE" envDefault:"memory"`

	// TradeTTL is how long an unsettled trade may live before the
	// sweeper expires it; zero disables sweeping.
	TradeTTL           time.Duration `env:"TRADE_TTL" envDefault:"0"`
	TradeSweepInterval time.Duration `env:"TRADE_SWEEP_INTERVAL" envDefault:"1m"`
}

func (c *apiConfig) validate() error {
	if c.Storage != storageMemory && c.Storage != storagePostgres {
		return fmt.Errorf("STORAGE must be %q or %q, got %q", storageMemory, storagePostgres, c.Storage)
	}

	if c.TradeTTL > 0 && c.TradeSweepInterval <= 0 {
		return fmt.Errorf("TRADE_SWEEP_INTERVAL must be positive when TRADE_TTL is set")
	}

	return nil
}
