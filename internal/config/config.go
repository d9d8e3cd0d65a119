package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port          int
	Env           string
	EnableSwagger bool

	// CORS
	AllowedOrigins []string

	// Database URLs. ClickHouse and Redis are optional: without them the
	// prediction log and metrics cache are disabled.
	PostgresURL      string
	PostgresMaxConns int
	ClickHouseURL    string
	RedisURL         string

	// MySQL archive read by apexctl import-legacy
	LegacyMySQLDSN string

	// Store fault isolation
	StoreTimeout       time.Duration
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// Prediction log worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Models
	WeightsFile string

	// Monitoring
	MonitorSchedule   string
	MonitorTimeout    time.Duration
	MetricsCacheTTL   time.Duration
	AlertDedupeWindow time.Duration

	// Rate limiting
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing or malformed.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvInt("PORT", 8080),
		Env:           getEnv("ENV", "development"),
		EnableSwagger: getEnvBool("ENABLE_SWAGGER", true),

		PostgresMaxConns: getEnvInt("POSTGRES_MAX_CONNS", 10),
		ClickHouseURL:    getEnv("CLICKHOUSE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		LegacyMySQLDSN:   getEnv("LEGACY_MYSQL_DSN", ""),

		StoreTimeout:       getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerTimeout:     getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),

		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),

		WeightsFile: getEnv("WEIGHTS_FILE", ""),

		MonitorSchedule:   getEnv("MONITOR_SCHEDULE", "@every 15m"),
		MonitorTimeout:    getEnvDuration("MONITOR_TIMEOUT", time.Minute),
		MetricsCacheTTL:   getEnvDuration("METRICS_CACHE_TTL", 10*time.Minute),
		AlertDedupeWindow: getEnvDuration("ALERT_DEDUPE_WINDOW", time.Hour),

		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 50),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 100),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}

	if cfg.RateLimitPerSecond <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive: %d/s burst %d", cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}
	if cfg.BreakerMaxFailures <= 0 {
		return nil, fmt.Errorf("BREAKER_MAX_FAILURES must be positive: %d", cfg.BreakerMaxFailures)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
