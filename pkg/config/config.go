package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	Backend    string
	Dir        string
	StorageKey string

	RedisAddr            string
	RedisConnectAttempts int

	OTLPEndpoint string
}

func Load() Config {
	return Config{
		AppEnv:               getEnv("APP_ENV", "dev"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Backend:              getEnv("CART_BACKEND", "file"),
		Dir:                  getEnv("CART_DIR", defaultDir()),
		StorageKey:           getEnv("CART_STORAGE_KEY", "@GoMarketplace:products"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisConnectAttempts: getEnvInt("REDIS_CONNECT_ATTEMPTS", 5),
		OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// defaultDir is the per-user config directory ($XDG_CONFIG_HOME on Linux,
// Application Support on macOS), falling back to the working directory.
func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".gomarketplace"
	}
	return filepath.Join(base, "gomarketplace")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
