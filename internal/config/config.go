package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xCarter93/lineupiq/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
	Training TrainingConfig
	Cache    CacheConfig
	Store    StoreConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data source settings
type DataConfig struct {
	ExcelFile string
	Seasons   []int
}

// TrainingConfig holds hyperparameter search settings
type TrainingConfig struct {
	RollingWindow int
	Folds         int
	MaxTrials     int
	Seed          int64
	TimeBudget    time.Duration
	HoldoutSeason int
}

// CacheConfig holds prediction cache settings
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
}

// StoreConfig selects and locates the artifact store
type StoreConfig struct {
	// Backend is "localfs" or "postgres"
	Backend string
	Dir     string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			ExcelFile: getEnvOrDefault("EXCEL_FILE", ""),
			Seasons:   getEnvIntListOrDefault("SEASONS", nil),
		},
		Training: TrainingConfig{
			RollingWindow: getEnvIntOrDefault("ROLLING_WINDOW", 3),
			Folds:         getEnvIntOrDefault("CV_FOLDS", 5),
			MaxTrials:     getEnvIntOrDefault("SEARCH_TRIALS", 50),
			Seed:          int64(getEnvIntOrDefault("SEARCH_SEED", 42)),
			TimeBudget:    getEnvDurationOrDefault("SEARCH_TIME_BUDGET", 0),
			HoldoutSeason: getEnvIntOrDefault("HOLDOUT_SEASON", 0),
		},
		Cache: CacheConfig{
			Capacity: getEnvIntOrDefault("CACHE_CAPACITY", 1000),
			TTL:      getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		},
		Store: StoreConfig{
			Backend: getEnvOrDefault("ARTIFACT_STORE", "localfs"),
			Dir:     getEnvOrDefault("ARTIFACT_DIR", "./artifacts"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Training.RollingWindow < 1 {
		return errors.ConfigInvalid("ROLLING_WINDOW must be positive")
	}
	if config.Training.Folds < 2 {
		return errors.ConfigInvalid("CV_FOLDS must be at least 2")
	}
	if config.Training.MaxTrials < 1 || config.Training.MaxTrials > 100 {
		return errors.ConfigInvalid("SEARCH_TRIALS must be between 1 and 100")
	}
	if config.Cache.Capacity < 1 {
		return errors.ConfigInvalid("CACHE_CAPACITY must be positive")
	}
	if config.Cache.TTL <= 0 {
		return errors.ConfigInvalid("CACHE_TTL must be positive")
	}
	switch config.Store.Backend {
	case "localfs":
		if config.Store.Dir == "" {
			return errors.ConfigInvalid("ARTIFACT_DIR is required for the localfs store")
		}
	case "postgres":
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres store")
		}
	default:
		return errors.ConfigInvalid("ARTIFACT_STORE must be localfs or postgres")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvIntListOrDefault(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
