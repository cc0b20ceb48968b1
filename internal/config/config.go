package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported data providers.
const (
	ProviderMock   = "mock"
	ProviderWorker = "worker"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	DatabaseURL      string
	DatabaseMaxConns int32

	DataProvider     string
	WorkerBaseURL    string
	MockSeed         int64
	SimulatedLatency time.Duration
	PhoneRegion      string

	VerifyContactChannels bool
	LinkCheckTimeout      time.Duration

	RateLimitScrape RateLimitConfig

	AuthEnabled   bool
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string

	GeminiAPIKey string
	GeminiModel  string
	SenderName   string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DataProvider:  strings.ToLower(getEnv("DATA_PROVIDER", ProviderMock)),
		WorkerBaseURL: getEnv("WORKER_BASE_URL", "http://worker:9000"),
		PhoneRegion:   strings.ToUpper(getEnv("PHONE_REGION", "US")),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:      parseDuration(getEnv("JWT_TTL", "24h")),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		SenderName:    getEnv("SENDER_NAME", "The Team"),
	}

	switch cfg.DataProvider {
	case ProviderMock, ProviderWorker:
	default:
		return nil, fmt.Errorf("invalid DATA_PROVIDER value: %q", cfg.DataProvider)
	}

	seed, err := strconv.ParseInt(getEnv("MOCK_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_SEED value: %w", err)
	}
	cfg.MockSeed = seed

	latency, err := time.ParseDuration(getEnv("SIMULATED_LATENCY", "0s"))
	if err != nil || latency < 0 {
		return nil, fmt.Errorf("invalid SIMULATED_LATENCY value: %q", os.Getenv("SIMULATED_LATENCY"))
	}
	cfg.SimulatedLatency = latency

	maxConns, err := strconv.ParseInt(getEnv("DATABASE_MAX_CONNS", "10"), 10, 32)
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("invalid DATABASE_MAX_CONNS value: %q", os.Getenv("DATABASE_MAX_CONNS"))
	}
	cfg.DatabaseMaxConns = int32(maxConns)

	verify, err := strconv.ParseBool(getEnv("VERIFY_CONTACT_CHANNELS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFY_CONTACT_CHANNELS value: %w", err)
	}
	cfg.VerifyContactChannels = verify

	linkTimeout, err := time.ParseDuration(getEnv("LINK_CHECK_TIMEOUT", "5s"))
	if err != nil || linkTimeout <= 0 {
		return nil, fmt.Errorf("invalid LINK_CHECK_TIMEOUT value: %q", os.Getenv("LINK_CHECK_TIMEOUT"))
	}
	cfg.LinkCheckTimeout = linkTimeout

	authEnabled, err := strconv.ParseBool(getEnv("AUTH_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_ENABLED value: %w", err)
	}
	cfg.AuthEnabled = authEnabled

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCRAPE", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCRAPE value: %w", err)
	}
	cfg.RateLimitScrape = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
