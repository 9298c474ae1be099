package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Session  SessionConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// UpstreamConfig points at the black-box SkyLink API and tunes the outbound
// resilience wrapper.
type UpstreamConfig struct {
	BaseURL                string
	TimeoutSeconds         int
	RetryAttempts          int
	BreakerMaxRequests     uint32
	BreakerIntervalSeconds int
	BreakerTimeoutSeconds  int
	BreakerFailures        uint32
	RatePerSecond          float64
	RateBurst              int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig shapes the session cookie and the persisted credential key.
type SessionConfig struct {
	CookieName            string
	CookieSecure          bool
	CredentialTTLHours    int
	FlightCacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "skylink-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Upstream: UpstreamConfig{
			BaseURL:                getEnv("UPSTREAM_BASE_URL", "https://airline-backend-cdzk.onrender.com"),
			TimeoutSeconds:         getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 10),
			RetryAttempts:          getEnvAsInt("UPSTREAM_RETRY_ATTEMPTS", 3),
			BreakerMaxRequests:     uint32(getEnvAsInt("UPSTREAM_BREAKER_MAX_REQUESTS", 3)),
			BreakerIntervalSeconds: getEnvAsInt("UPSTREAM_BREAKER_INTERVAL_SECONDS", 5),
			BreakerTimeoutSeconds:  getEnvAsInt("UPSTREAM_BREAKER_TIMEOUT_SECONDS", 30),
			BreakerFailures:        uint32(getEnvAsInt("UPSTREAM_BREAKER_FAILURES", 5)),
			RatePerSecond:          float64(getEnvAsInt("UPSTREAM_RATE_PER_SECOND", 50)),
			RateBurst:              getEnvAsInt("UPSTREAM_RATE_BURST", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Session: SessionConfig{
			CookieName:            getEnv("SESSION_COOKIE_NAME", "skylink_session"),
			CookieSecure:          getEnvAsBool("SESSION_COOKIE_SECURE", false),
			CredentialTTLHours:    getEnvAsInt("SESSION_CREDENTIAL_TTL_HOURS", 24),
			FlightCacheTTLSeconds: getEnvAsInt("FLIGHT_CACHE_TTL_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call upstream timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// CredentialTTL bounds how long an abandoned credential stays persisted.
func (s SessionConfig) CredentialTTL() time.Duration {
	if s.CredentialTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.CredentialTTLHours) * time.Hour
}

// FlightCacheTTL returns the flight search cache lifetime.
func (s SessionConfig) FlightCacheTTL() time.Duration {
	if s.FlightCacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.FlightCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
