// Package config handles application configuration.
//
// Values come from environment variables and, when the CLI is given
// --config, from a config file read through viper. Environment variables win
// over the file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port           int
	BaseURL        string
	Debug          bool          // Mounts the profiler under /__debug__/
	RequestTimeout time.Duration // Per-request deadline for API calls
	IdleTimeout    time.Duration // Stop serving after this long without requests; 0 disables

	// Database
	DatabaseURL string // postgres://... for PostgreSQL, anything else is libsql/SQLite
	AutoMigrate bool   // Upgrade to head on serve startup

	// CORS
	CORSOrigins []string

	// Rate limiting
	RateLimitPerMinute int // Per client IP; 0 disables

	// Admin site
	AdminEnabled  bool
	AdminUsername string // Basic auth is enabled when both are set
	AdminPassword string

	// Metrics
	MetricsEnabled bool

	// Background work
	StatsRefreshInterval time.Duration // 0 disables the periodic TotalStats refresh

	// Object Storage (S3-compatible) for exports
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string // Bucket name
	StorageRegion    string // Region (auto for Tigris)

	// Export
	ExportPrefix string // Object key prefix for uploads
	ExportDir    string // Local directory used when storage is disabled
}

func init() {
	viper.AutomaticEnv()
}

// Load reads configuration from the environment and any config file viper
// has been pointed at.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		Debug:          getEnvBool("DEBUG", false),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		IdleTimeout:    getEnvDuration("IDLE_TIMEOUT", 0),

		DatabaseURL: getEnv("DATABASE_URL", "file:open_prices.db"),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		CORSOrigins:        getEnvSlice("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		AdminEnabled:  getEnvBool("ADMIN_ENABLED", true),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		StatsRefreshInterval: getEnvDuration("STATS_REFRESH_INTERVAL", time.Hour),

		// BUCKET_NAME is set automatically by `fly storage create`
		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),

		ExportPrefix: strings.Trim(getEnv("EXPORT_PREFIX", "exports"), "/"),
		ExportDir:    getEnv("EXPORT_DIR", "exports"),
	}

	// Enable storage if bucket is configured
	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.StatsRefreshInterval < 0 {
		return fmt.Errorf("STATS_REFRESH_INTERVAL must not be negative")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	return nil
}

// AdminAuthEnabled returns true if the admin site requires basic auth.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

func getEnv(key, defaultValue string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := viper.GetString(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := viper.GetString(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := viper.GetString(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := viper.GetString(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := viper.GetString(primary); value != "" {
		return value
	}
	if value := viper.GetString(fallback); value != "" {
		return value
	}
	return defaultValue
}
