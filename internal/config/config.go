// Package config loads AquaMind's environment configuration, grounded on
// bbak-mcs-mcp's internal/config: .env files via godotenv, then os.Getenv
// with typed defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration. Fields map onto
// the closed set of environment options in spec.md §6 plus the ambient
// server/storage settings the teacher's config carries (data path, port).
type AppConfig struct {
	DataPath string
	DBPath   string
	Port     string

	LiveForwardTempBiasWindowDays          int
	LiveForwardTempBiasClampMinC           float64
	LiveForwardTempBiasClampMaxC           float64
	LiveForwardMaxHorizonDays              int
	LiveForwardAttentionThresholdDays      int
	LiveForwardProjectionRetentionDays     int
	LiveForwardProjectionCompressAfterDays int

	SchedulerIntervalMinutes int
	SchedulerWorkers         int
}

// Load loads configuration from a .env file (binary directory, then working
// directory) and environment variables, with defaults for every closed-set
// option in spec.md §6.
func Load() (*AppConfig, error) {
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("loaded configuration from binary directory")
		}
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found in working directory, relying on environment variables")
	}

	dataPath := getEnv("DATA_PATH", ".")
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		log.Warn().Err(err).Str("path", dataPath).Msg("failed to create data directory")
	}

	cfg := &AppConfig{
		DataPath: dataPath,
		DBPath:   getEnv("DB_PATH", filepath.Join(dataPath, "aquamind.db")),
		Port:     getEnv("PORT", "8080"),

		LiveForwardTempBiasWindowDays:          getEnvInt("LIVE_FORWARD_TEMP_BIAS_WINDOW_DAYS", 14),
		LiveForwardTempBiasClampMinC:           getEnvFloat("LIVE_FORWARD_TEMP_BIAS_CLAMP_MIN_C", -2.0),
		LiveForwardTempBiasClampMaxC:           getEnvFloat("LIVE_FORWARD_TEMP_BIAS_CLAMP_MAX_C", 2.0),
		LiveForwardMaxHorizonDays:              getEnvInt("LIVE_FORWARD_MAX_HORIZON_DAYS", 1000),
		LiveForwardAttentionThresholdDays:       getEnvInt("LIVE_FORWARD_ATTENTION_THRESHOLD_DAYS", 30),
		LiveForwardProjectionRetentionDays:      getEnvInt("LIVE_FORWARD_PROJECTION_RETENTION_DAYS", 90),
		LiveForwardProjectionCompressAfterDays:  getEnvInt("LIVE_FORWARD_PROJECTION_COMPRESS_AFTER_DAYS", 7),

		SchedulerIntervalMinutes: getEnvInt("SCHEDULER_INTERVAL_MINUTES", 60),
		SchedulerWorkers:         getEnvInt("SCHEDULER_WORKERS", 4),
	}

	return cfg, nil
}

// CatchupInterval is SchedulerIntervalMinutes as a time.Duration.
func (c *AppConfig) CatchupInterval() time.Duration {
	return time.Duration(c.SchedulerIntervalMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
