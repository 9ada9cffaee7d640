package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

type Config struct {
	AccountName      string
	StartingCash     domain.Decimal
	MarketSeed       int64
	ServerHost       string
	ServerPort       string
	AutoTickInterval time.Duration
	LogLevel         string
}

func Load() (*Config, error) {
	startingCash, err := domain.NewDecimalFromString(getEnvOrDefault("STARTING_CASH", "10000.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_CASH: %w", err)
	}
	if startingCash.IsNegative() {
		return nil, fmt.Errorf("invalid STARTING_CASH: %s is negative", startingCash)
	}

	seed, err := strconv.ParseInt(getEnvOrDefault("MARKET_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_SEED: %w", err)
	}

	autoTick, err := time.ParseDuration(getEnvOrDefault("AUTO_TICK_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_TICK_INTERVAL: %w", err)
	}
	if autoTick < 0 {
		return nil, fmt.Errorf("invalid AUTO_TICK_INTERVAL: %s is negative", autoTick)
	}

	logLevel := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	if _, err := ParseLogLevel(logLevel); err != nil {
		return nil, err
	}

	return &Config{
		AccountName:      getEnvOrDefault("ACCOUNT_NAME", "trader"),
		StartingCash:     startingCash,
		MarketSeed:       seed,
		ServerHost:       getEnvOrDefault("SERVER_HOST", "localhost"),
		ServerPort:       getEnvOrDefault("SERVER_PORT", "8080"),
		AutoTickInterval: autoTick,
		LogLevel:         logLevel,
	}, nil
}

// ParseLogLevel maps a LOG_LEVEL value to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return l, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
