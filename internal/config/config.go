package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port       string
	LogLevel   slog.Level
	Nightscout *NightscoutConfig
	Dose       *DoseConfig
	Redis      *RedisConfig
	History    *HistoryConfig
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:       port,
		LogLevel:   parseLogLevel(os.Getenv("LOG_LEVEL")),
		Nightscout: LoadNightscoutConfig(),
		Dose:       LoadDoseConfig(),
		Redis:      redisConfig,
		History:    LoadHistoryConfig(),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// positiveIntEnv returns the value of key when it parses as a positive
// integer, and def otherwise.
func positiveIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
