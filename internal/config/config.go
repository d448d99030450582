// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatasetDir       string // Directory of {SYMBOL}_data.csv files
	DataDir          string // Base directory for the price cache database
	MarketDataAPIKey string // API key for the remote market-data fallback
	RefreshSchedule  string // Cron spec for refreshing cached remote series
	LogLevel         string
	Port             int
	DevMode          bool
}

// Load reads configuration from environment variables, with a .env file as
// an optional source.
func Load() (*Config, error) {
	_ = godotenv.Load()

	datasetDir := getEnv("FORESIGHT_DATASET_DIR", "dataset")
	absDataset, err := filepath.Abs(datasetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset dir to absolute: %w", err)
	}

	dataDir := getEnv("FORESIGHT_DATA_DIR", "data")
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir to absolute: %w", err)
	}
	if err := os.MkdirAll(absData, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return &Config{
		DatasetDir:       absDataset,
		DataDir:          absData,
		MarketDataAPIKey: getEnv("MARKETDATA_API_KEY", ""),
		RefreshSchedule:  getEnv("REFRESH_SCHEDULE", "0 18 * * *"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             port,
		DevMode:          getEnvBool("DEV_MODE", false),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
