package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	OTLP    OTLPConfig
	Catalog CatalogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ShutdownTimeout time.Duration
}

type OTLPConfig struct {
	Endpoint    string
	ServiceName string
	Environment string
	Disabled    bool
	LogLevel    slog.Level
}

// CatalogSource names the backing store for the product catalog
type CatalogSource string

const (
	CatalogSourceMemory CatalogSource = "memory"
	CatalogSourceSQLite CatalogSource = "sqlite"
)

type CatalogConfig struct {
	Source CatalogSource
	// File is a YAML catalog; empty means the embedded default catalog.
	File string
	DSN  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OTLP: OTLPConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "storefront-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
			Disabled:    getEnvBool("OTEL_SDK_DISABLED", false),
			LogLevel:    getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		},
		Catalog: CatalogConfig{
			Source: CatalogSource(strings.ToLower(getEnv("CATALOG_SOURCE", string(CatalogSourceMemory)))),
			File:   getEnv("CATALOG_FILE", ""),
			DSN:    getEnv("CATALOG_DSN", "file:storefront.db"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(key, ""))); err != nil {
		return defaultValue
	}
	return level
}
