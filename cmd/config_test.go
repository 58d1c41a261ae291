package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("既定値", func(t *testing.T) {
		t.Setenv("MAP_RPC_URL", "http://localhost:9000")
		t.Setenv("PORT", "")
		t.Setenv("MAP_CACHE_ENABLED", "")
		t.Setenv("MAP_CACHE_EXPIRY_MS", "")
		t.Setenv("MAP_RPC_TIMEOUT_SEC", "")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.True(t, cfg.CacheEnabled)
		assert.Equal(t, 30*time.Second, cfg.CacheExpiry)
		assert.Equal(t, 10*time.Second, cfg.RPCTimeout)
	})

	t.Run("環境変数で上書き", func(t *testing.T) {
		t.Setenv("MAP_RPC_URL", "http://localhost:9000")
		t.Setenv("PORT", "9090")
		t.Setenv("MAP_START_LAT", "35.0116")
		t.Setenv("MAP_START_LNG", "135.7681")
		t.Setenv("MAP_CACHE_ENABLED", "false")
		t.Setenv("MAP_CACHE_EXPIRY_MS", "1500")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 35.0116, cfg.StartPosition.Latitude)
		assert.Equal(t, 135.7681, cfg.StartPosition.Longitude)
		assert.False(t, cfg.CacheEnabled)
		assert.Equal(t, 1500*time.Millisecond, cfg.CacheExpiry)
	})

	t.Run("RPCのURLは必須", func(t *testing.T) {
		t.Setenv("MAP_RPC_URL", "")
		_, err := loadConfig()
		assert.Error(t, err)
	})

	t.Run("不正な値", func(t *testing.T) {
		t.Setenv("MAP_RPC_URL", "http://localhost:9000")
		t.Setenv("MAP_CACHE_EXPIRY_MS", "-5")
		_, err := loadConfig()
		assert.Error(t, err)
	})
}
