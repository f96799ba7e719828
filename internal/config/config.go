package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Config holds the bidboard server configuration. Values come from an
// optional YAML file, with environment variables taking precedence.
type Config struct {
	Port            string        `yaml:"port"`
	StoreBackend    string        `yaml:"store_backend"`
	StateFile       string        `yaml:"state_file"`
	DatabaseURL     string        `yaml:"database_url"`
	NATSURL         string        `yaml:"nats_url"`
	AuctionDuration time.Duration `yaml:"auction_duration"`
	LogLevel        string        `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:            "3001",
		StoreBackend:    StoreBackendFile,
		StateFile:       "bidboard-state.json",
		AuctionDuration: 10 * time.Minute,
		LogLevel:        "info",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// BIDBOARD_CONFIG (if any), then environment variable overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("BIDBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.StateFile = getEnv("STATE_FILE", cfg.StateFile)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("AUCTION_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AUCTION_DURATION: %w", err)
		}
		cfg.AuctionDuration = d
	}

	if cfg.StoreBackend != StoreBackendFile && cfg.StoreBackend != StoreBackendPostgres {
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == StoreBackendPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("postgres store backend requires DATABASE_URL")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
