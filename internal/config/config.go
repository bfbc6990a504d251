package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aurelia-gems/storefront/internal/admin/domain"
	"github.com/aurelia-gems/storefront/pkg/database"
)

// Config carries all deployment settings, loaded from the environment.
type Config struct {
	HTTPPort    string
	Environment string
	LogLevel    string

	DB database.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string

	JaegerEndpoint string

	UploadDir     string
	UploadBaseURL string

	// AdminIdentifier plus the bcrypt hash of the admin secret. The
	// hash has no default: it is a deployment concern, never embedded.
	AdminIdentifier   string
	AdminPasswordHash string

	JWTSecret string
	TokenTTL  time.Duration

	SessionLimits domain.Limits

	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

// Load reads the configuration from environment variables. It fails
// when a required secret is missing rather than falling back to a
// literal default.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DB: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),

		AdminIdentifier:   os.Getenv("ADMIN_IDENTIFIER"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		SessionLimits: domain.Limits{
			MaxAttempts:       getEnvInt("ADMIN_MAX_LOGIN_ATTEMPTS", 5),
			LockoutDuration:   getEnvDuration("ADMIN_LOCKOUT_DURATION", 15*time.Minute),
			InactivityTimeout: getEnvDuration("ADMIN_INACTIVITY_TIMEOUT", 30*time.Minute),
			MaxSessionAge:     getEnvDuration("ADMIN_MAX_SESSION_AGE", 24*time.Hour),
		},

		CacheTTL:        getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		RefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 10*time.Minute),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.AdminIdentifier == "" {
		return nil, fmt.Errorf("ADMIN_IDENTIFIER is required")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required (bcrypt hash of the admin secret)")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
