// Package config holds process configuration (environment-driven) and the
// gameplay balance tables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server is the process-level configuration, parsed from the environment.
type Server struct {
	Addr       string  `env:"PRESSWORKS_ADDR" envDefault:":8080"`
	DBPath     string  `env:"PRESSWORKS_DB" envDefault:"pressworks.db"`
	ShopName   string  `env:"PRESSWORKS_SHOP_NAME" envDefault:"Halftone & Co."`
	TickMillis int     `env:"PRESSWORKS_TICK_MS" envDefault:"500"`
	TimeScale  float64 `env:"PRESSWORKS_TIME_SCALE" envDefault:"1.0"`
	Difficulty string  `env:"PRESSWORKS_DIFFICULTY" envDefault:"default"`
}

// FromEnv loads the server configuration from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TickMillis <= 0 {
		return cfg, fmt.Errorf("tick interval must be positive, got %dms", cfg.TickMillis)
	}
	if cfg.TimeScale <= 0 {
		return cfg, fmt.Errorf("time scale must be positive, got %v", cfg.TimeScale)
	}
	return cfg, nil
}

// TickRate returns the real-time interval between simulation ticks.
func (s Server) TickRate() time.Duration {
	return time.Duration(s.TickMillis) * time.Millisecond
}

// BalanceFor returns the balance table for the configured difficulty.
func (s Server) BalanceFor() Balance {
	switch s.Difficulty {
	case "casual":
		return CasualBalance()
	case "hard":
		return HardBalance()
	default:
		return DefaultBalance()
	}
}
