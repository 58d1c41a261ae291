package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/infrastructure/transport"
)

// config 環境変数から読み込むサーバー設定
type config struct {
	Port               string
	RPCURL             string
	AuthToken          string
	RPCTimeout         time.Duration
	StartPosition      model.Coordinate
	CacheEnabled       bool
	CacheExpiry        time.Duration
	SupabaseURL        string
	SupabaseAnonKey    string
	FirestoreProjectID string
}

func loadConfig() (*config, error) {
	cfg := &config{
		Port:               getEnv("PORT", "8080"),
		RPCURL:             os.Getenv("MAP_RPC_URL"),
		AuthToken:          os.Getenv("MAP_AUTH_TOKEN"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("MAP_RPC_URLが設定されていません")
	}

	var err error
	if cfg.StartPosition.Latitude, err = getEnvFloat("MAP_START_LAT", 0); err != nil {
		return nil, err
	}
	if cfg.StartPosition.Longitude, err = getEnvFloat("MAP_START_LNG", 0); err != nil {
		return nil, err
	}
	if cfg.StartPosition.Altitude, err = getEnvFloat("MAP_START_ALT", 0); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = getEnvBool("MAP_CACHE_ENABLED", true); err != nil {
		return nil, err
	}

	expiryMs, err := getEnvInt("MAP_CACHE_EXPIRY_MS", 30000)
	if err != nil {
		return nil, err
	}
	cfg.CacheExpiry = time.Duration(expiryMs) * time.Millisecond

	timeoutSec, err := getEnvInt("MAP_RPC_TIMEOUT_SEC", int(transport.DefaultTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.RPCTimeout = time.Duration(timeoutSec) * time.Second

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%sの値が不正です: %w", key, err)
	}
	return v, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%sの値が不正です: %q", key, raw)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%sの値が不正です: %w", key, err)
	}
	return v, nil
}
