// Package config reads server settings from the environment and the optional
// YAML file of pools to create at startup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds everything cmd/server needs to wire the application.
type Config struct {
	Port            string
	DatabaseURL     string
	Store           string
	// DefaultCooldown is given to pools created without a valid cooldown,
	// through the API as well as from the seed file.
	DefaultCooldown int
	IdempotencyTTL  time.Duration
	JanitorInterval time.Duration
	LogLevel        slog.Level
	SeedFile        string
}

// FromEnv reads the configuration from environment variables, falling back
// to defaults for anything unset or malformed.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:            envString("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Store:           strings.ToLower(envString("STORE", StorePostgres)),
		DefaultCooldown: envInt("DEFAULT_COOLDOWN", eligibility.DefaultCooldown),
		IdempotencyTTL:  envDuration("IDEMPOTENCY_TTL_SECONDS", 24*time.Hour),
		JanitorInterval: envDuration("JANITOR_INTERVAL_SECONDS", 10*time.Minute),
		LogLevel:        envLevel("LOG_LEVEL", slog.LevelInfo),
		SeedFile:        os.Getenv("SEED_FILE"),
	}

	if cfg.DefaultCooldown < 0 {
		return Config{}, fmt.Errorf("DEFAULT_COOLDOWN must not be negative, got %d", cfg.DefaultCooldown)
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL not set")
		}
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE %q: want %s or %s", cfg.Store, StorePostgres, StoreMemory)
	}
	return cfg, nil
}

// Seeds lists pools to create at startup when no pool of the same name
// exists yet.
type Seeds struct {
	Pools []PoolSeed `yaml:"pools"`
}

type PoolSeed struct {
	Name     string          `yaml:"name"`
	Cooldown *int            `yaml:"cooldown"`
	Quotas   map[int64]int64 `yaml:"quotas"`
}

// CooldownOr returns the seed's cooldown, or def when the file leaves it out.
func (s PoolSeed) CooldownOr(def int) int {
	if s.Cooldown == nil {
		return def
	}
	return *s.Cooldown
}

// LoadSeeds reads a YAML seed file from the given path.
func LoadSeeds(path string) (*Seeds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seeds Seeds
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	if err := seeds.validate(); err != nil {
		return nil, err
	}
	return &seeds, nil
}

func (s *Seeds) validate() error {
	names := make(map[string]bool, len(s.Pools))
	for i, p := range s.Pools {
		if p.Name == "" {
			return fmt.Errorf("pool %d: name cannot be empty", i)
		}
		if names[p.Name] {
			return fmt.Errorf("pool %q: duplicate name", p.Name)
		}
		names[p.Name] = true
		if p.Cooldown != nil && *p.Cooldown < 0 {
			return fmt.Errorf("pool %q: cooldown must not be negative", p.Name)
		}
		if len(p.Quotas) >= eligibility.MaxWorkerIDs {
			return fmt.Errorf("pool %q: at most %d robots per pool", p.Name, eligibility.MaxWorkerIDs-1)
		}
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultVal
}

// envDuration reads an integer-seconds env var and returns a Duration.
// Falls back to defaultVal if the var is unset or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

func envLevel(key string, defaultVal slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return defaultVal
	}
	return level
}
