// Package common provides shared utilities for flarecast tools.
package common

import (
	"os"
	"path/filepath"
)

// Config holds common configuration for all tools. Values come from the
// environment with sensible defaults; per-run parameters stay on flags.
type Config struct {
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	DataDir            string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     9000,
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "flare"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		DataDir:            getEnv("FLARECAST_DATA_DIR", "data"),
	}
}

// RawFlareDir returns the raw flare catalogue directory path.
func (c *Config) RawFlareDir() string {
	return filepath.Join(c.DataDir, "raw", "flare_catalogue")
}

// RawFluxDir returns the raw X-ray flux directory path.
func (c *Config) RawFluxDir() string {
	return filepath.Join(c.DataDir, "raw", "goes_xrs")
}

// InterimDir returns the interim artifact directory path.
func (c *Config) InterimDir() string {
	return filepath.Join(c.DataDir, "interim")
}

// ProcessedDir returns the final dataset directory path.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.DataDir, "processed")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
