package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"ACCOUNT_NAME", "STARTING_CASH", "MARKET_SEED", "SERVER_HOST",
		"SERVER_PORT", "AUTO_TICK_INTERVAL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "trader", cfg.AccountName)
	assert.Equal(t, "10000.00", cfg.StartingCash.String())
	assert.Equal(t, int64(0), cfg.MarketSeed)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Duration(0), cfg.AutoTickInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCOUNT_NAME", "alice")
	t.Setenv("STARTING_CASH", "2500.50")
	t.Setenv("MARKET_SEED", "42")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTO_TICK_INTERVAL", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.AccountName)
	assert.Equal(t, "2500.50", cfg.StartingCash.String())
	assert.Equal(t, int64(42), cfg.MarketSeed)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.AutoTickInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	testCases := []struct {
		key, value, message string
	}{
		{"STARTING_CASH", "lots", "STARTING_CASH"},
		{"STARTING_CASH", "-10", "STARTING_CASH"},
		{"STARTING_CASH", "Infinity", "STARTING_CASH"},
		{"STARTING_CASH", "NaN", "STARTING_CASH"},
		{"MARKET_SEED", "abc", "MARKET_SEED"},
		{"AUTO_TICK_INTERVAL", "often", "AUTO_TICK_INTERVAL"},
		{"AUTO_TICK_INTERVAL", "-1s", "AUTO_TICK_INTERVAL"},
		{"LOG_LEVEL", "loud", "LOG_LEVEL"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
