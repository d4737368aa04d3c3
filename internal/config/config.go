// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the server configuration
type Config struct {
	Addr            string
	StorageType     string
	RedisURL        string
	DatabaseURL     string
	TokenSecret     string
	SessionDuration time.Duration
	SweepInterval   time.Duration
	SeedDemoData    bool
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Addr:            ":8080",
		StorageType:     StorageMemory,
		SessionDuration: 24 * time.Hour,
		SweepInterval:   time.Minute,
	}
}

// Load reads the optional env files (".env" when none are given) and then
// the process environment. Variables already set in the environment win
// over values from the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a variable lookup function
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	if v := get("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := get("STORAGE_TYPE"); v != "" {
		cfg.StorageType = v
	}
	cfg.RedisURL = get("REDIS_URL")
	cfg.DatabaseURL = get("DATABASE_URL")
	cfg.TokenSecret = get("TOKEN_SECRET")

	var err error
	if cfg.SessionDuration, err = duration(get("SESSION_DURATION"), cfg.SessionDuration); err != nil {
		return Config{}, fmt.Errorf("SESSION_DURATION: %w", err)
	}
	if cfg.SweepInterval, err = duration(get("SWEEP_INTERVAL"), cfg.SweepInterval); err != nil {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL: %w", err)
	}
	if v := get("SEED_DEMO_DATA"); v != "" {
		if cfg.SeedDemoData, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("SEED_DEMO_DATA: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType)
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if c.SessionDuration <= 0 {
		return errors.New("SESSION_DURATION must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	return nil
}

func duration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
