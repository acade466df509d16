package config

import (
	"os"
	"strconv"

	"tnatlas/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// DataConfig holds input/output file system paths
type DataConfig struct {
	DataDir        string
	OutputDir      string
	MedicationsCSV string
	ProceduresCSV  string
}

// AnalysisConfig holds statistical parameters for a run. The reporting
// significance threshold is fixed at 0.05 and is not configurable.
type AnalysisConfig struct {
	ConfidenceLevel float64
	ImputeValue     int
}

// DatabaseConfig holds optional Postgres persistence settings.
// An empty URL means the pipeline runs file-only.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			DataDir:        getEnvOrDefault("DATA_DIR", "./data"),
			OutputDir:      getEnvOrDefault("OUTPUT_DIR", "./outputs"),
			MedicationsCSV: getEnvOrDefault("MEDICATIONS_CSV", "state_medications_clean.csv"),
			ProceduresCSV:  getEnvOrDefault("PROCEDURES_CSV", "state_procedures_clean.csv"),
		},
		Analysis: AnalysisConfig{
			ConfidenceLevel: getEnvFloatOrDefault("CONFIDENCE_LEVEL", 0.95),
			ImputeValue:     getEnvIntOrDefault("IMPUTE_VALUE", 5),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Analysis.ConfidenceLevel <= 0 || config.Analysis.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid("CONFIDENCE_LEVEL must lie in (0,1)")
	}
	if config.Analysis.ImputeValue < 1 || config.Analysis.ImputeValue > 10 {
		return errors.ConfigInvalid("IMPUTE_VALUE must lie in the suppressed range [1,10]")
	}
	if config.Data.DataDir == "" {
		return errors.ConfigInvalid("DATA_DIR is required")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
