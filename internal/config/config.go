package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Game rules
	MinBet    float64 `env:"MIN_BET" envDefault:"0.1"`
	MaxBet    float64 `env:"MAX_BET" envDefault:"1000"`
	HouseEdge float64 `env:"HOUSE_EDGE" envDefault:"0.01"`

	// A session left uncompleted past SessionExpiry can no longer be
	// settled; SessionRetention bounds how long settled sessions stay
	// readable for verification.
	SessionExpiry    time.Duration `env:"SESSION_EXPIRY" envDefault:"5m"`
	SessionRetention time.Duration `env:"SESSION_RETENTION" envDefault:"168h"`

	// Demo-ledger starting balance for freshly seen addresses.
	StartingBalance float64 `env:"STARTING_BALANCE" envDefault:"100"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinBet <= 0 || c.MaxBet < c.MinBet {
		return fmt.Errorf("invalid bet bounds [%f, %f]", c.MinBet, c.MaxBet)
	}
	if c.HouseEdge < 0 || c.HouseEdge >= 1 {
		return fmt.Errorf("house edge %f outside [0, 1)", c.HouseEdge)
	}
	if c.SessionExpiry <= 0 {
		return fmt.Errorf("session expiry must be positive")
	}
	return nil
}
