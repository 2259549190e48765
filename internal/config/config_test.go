package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "tradequest", cfg.ServiceName)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10, cfg.DBMaxConns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_NAME", "tradequest_test")
	t.Setenv("MARKET_DATA_URL", "http://candles.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "tradequest_test", cfg.DBName)
	assert.Equal(t, "http://candles.local", cfg.MarketDataURL)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "app",
		DBPassword: "secret",
		DBHost:     "db",
		DBPort:     "5432",
		DBName:     "tradequest",
	}

	assert.Equal(t, "postgres://app:secret@db:5432/tradequest?sslmode=disable", cfg.GetDBConnString())
}
