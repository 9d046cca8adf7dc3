package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Redis backs the rendered page cache. Empty disables it.
	RedisURL     string
	PageCacheTTL time.Duration

	// RabbitMQ carries content change events. Empty uses the in-process bus.
	RabbitMQURL string

	// HTTP / MCP
	HTTPAddr     string
	MCPAddr      string
	MCPAuthToken string

	// Worker
	WorkerHealthAddr    string
	OutboxStatsInterval time.Duration

	// Content
	TemplatePaths  []string
	DefaultLocale  string
	FallbackLocale string

	// Capability execution
	CapabilityTimeout          time.Duration
	CapabilityFailureThreshold int
	CapabilityBreakerEnabled   bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	driver := getEnv("DATABASE_DRIVER", "")
	if driver == "" {
		driver = detectDriver(databaseURL)
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL:    databaseURL,
		DatabaseDriver: driver,
		SQLitePath:     getEnv("SQLITE_PATH", defaultSQLitePath()),

		RedisURL:     getEnv("REDIS_URL", ""),
		PageCacheTTL: getDurationEnv("PAGE_CACHE_TTL", 5*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		HTTPAddr:     getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		WorkerHealthAddr:    getEnv("WORKER_HEALTH_ADDR", ""),
		OutboxStatsInterval: getDurationEnv("OUTBOX_STATS_INTERVAL", time.Minute),

		TemplatePaths:  getPathListEnv("FOLIO_TEMPLATES"),
		DefaultLocale:  getEnv("DEFAULT_LOCALE", "en"),
		FallbackLocale: getEnv("FALLBACK_LOCALE", "en"),

		CapabilityTimeout:          getDurationEnv("CAPABILITY_TIMEOUT", 5*time.Second),
		CapabilityFailureThreshold: getIntEnv("CAPABILITY_FAILURE_THRESHOLD", 5),
		CapabilityBreakerEnabled:   getBoolEnv("CAPABILITY_BREAKER_ENABLED", true),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesSQLite reports whether the configured store is the local SQLite file.
func (c *Config) UsesSQLite() bool {
	return c.DatabaseDriver == "sqlite"
}

func detectDriver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getPathListEnv splits a list of paths or glob patterns on the OS list separator.
func getPathListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var paths []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".folio/folio.db"
	}
	return filepath.Join(home, ".folio", "folio.db")
}
