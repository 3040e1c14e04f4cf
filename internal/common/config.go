// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment  string        `toml:"environment"`
	BaseCurrency string        `toml:"base_currency"` // Valuation currency for computed series (default "USD")
	Benchmark    string        `toml:"benchmark"`     // Default benchmark ticker for comparison series (optional)
	Server       ServerConfig  `toml:"server"`
	Storage      StorageConfig `toml:"storage"`
	Engine       EngineConfig  `toml:"engine"`
	Logging      LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the market data cache configuration.
type StorageConfig struct {
	Path string `toml:"path"` // BadgerHold directory for cached market data
}

// EngineConfig holds performance engine configuration.
type EngineConfig struct {
	Workers      int  `toml:"workers"`       // Size of the computation worker pool
	StrictRates  bool `toml:"strict_rates"`  // Fail on missing forex rates instead of defaulting to 1
	OutlierGuard bool `toml:"outlier_guard"` // Cap implausible day-over-day value swings from bad EOD data
}

// GetWorkers returns the worker pool size, defaulting to 4.
func (c *EngineConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:  "development",
		BaseCurrency: "USD",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/market",
		},
		Engine: EngineConfig{
			Workers:     4,
			StrictRates: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateBaseCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if bc := os.Getenv("FOLIO_BASE_CURRENCY"); bc != "" {
		config.BaseCurrency = strings.ToUpper(bc)
	}

	if b := os.Getenv("FOLIO_BENCHMARK"); b != "" {
		config.Benchmark = b
	}

	if w := os.Getenv("FOLIO_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			config.Engine.Workers = n
		}
	}

	if v := os.Getenv("FOLIO_STRICT_RATES"); v != "" {
		config.Engine.StrictRates = v == "1" || strings.EqualFold(v, "true")
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateBaseCurrency upper-cases the base currency and falls back to USD
// when it is not a plausible ISO code.
func validateBaseCurrency(config *Config) {
	bc := strings.ToUpper(strings.TrimSpace(config.BaseCurrency))
	if len(bc) != 3 {
		bc = "USD"
	}
	config.BaseCurrency = bc
}
