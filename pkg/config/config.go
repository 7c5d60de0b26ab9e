package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/openlearnco/classgate/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Backend (content/identity API) configuration
	Backend BackendConfig

	// Security configuration
	Security SecurityConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig holds the external content API configuration
type BackendConfig struct {
	// BaseURL of the Strapi-compatible content/identity API
	BaseURL string
	// Timeout per request to the backend
	Timeout time.Duration
}

// SecurityConfig holds authentication and throttling configuration
type SecurityConfig struct {
	// Production toggles Secure on all cookies
	Production bool

	// Session cookie lifetime
	SessionTTL time.Duration
	// CSRF cookie lifetime
	CSRFTTL time.Duration

	// Login throttling (fixed window)
	MaxLoginAttempts int
	LoginWindow      time.Duration
	// SweepInterval controls the background expiry sweep cadence
	SweepInterval time.Duration

	// LimiterBackend selects "memory" or "redis"
	LimiterBackend string
	RedisURL       string
	RedisPassword  string
	RedisDB        int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over .env values.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server:        loadServerConfig(),
		Backend:       loadBackendConfig(),
		Security:      loadSecurityConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("CLASSGATE_HOST", "0.0.0.0"),
		Port:            getEnv("CLASSGATE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("CLASSGATE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CLASSGATE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("CLASSGATE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("CLASSGATE_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadBackendConfig() BackendConfig {
	return BackendConfig{
		BaseURL: getEnv("CLASSGATE_CONTENT_API_URL", "http://127.0.0.1:1337"),
		Timeout: getEnvDuration("CLASSGATE_CONTENT_API_TIMEOUT", 10*time.Second),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		Production:       getEnv("CLASSGATE_ENV", "development") == "production",
		SessionTTL:       getEnvDuration("CLASSGATE_SESSION_TTL", 7*24*time.Hour),
		CSRFTTL:          getEnvDuration("CLASSGATE_CSRF_TTL", 24*time.Hour),
		MaxLoginAttempts: getEnvInt("CLASSGATE_MAX_LOGIN_ATTEMPTS", 5),
		LoginWindow:      getEnvDuration("CLASSGATE_LOGIN_WINDOW", 15*time.Minute),
		SweepInterval:    getEnvDuration("CLASSGATE_SWEEP_INTERVAL", time.Hour),
		LimiterBackend:   getEnv("CLASSGATE_LIMITER_BACKEND", "memory"),
		RedisURL:         getEnv("CLASSGATE_REDIS_URL", ""),
		RedisPassword:    getEnv("CLASSGATE_REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("CLASSGATE_REDIS_DB", 0),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("CLASSGATE_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("CLASSGATE_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("content API URL is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("content API timeout must be positive")
	}

	if c.Security.MaxLoginAttempts <= 0 {
		return fmt.Errorf("max login attempts must be positive")
	}
	if c.Security.LoginWindow <= 0 {
		return fmt.Errorf("login window must be positive")
	}

	switch c.Security.LimiterBackend {
	case "memory":
	case "redis":
		if c.Security.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis limiter backend")
		}
	default:
		return fmt.Errorf("invalid limiter backend: %s (must be memory or redis)", c.Security.LimiterBackend)
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
