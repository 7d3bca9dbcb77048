package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the fitment chat service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogLevel         string
	LogFormat        string

	AllowAnyOrigin bool

	SessionStore        string
	RedisURL            string
	SessionTTL          time.Duration
	SessionHistoryLimit int

	FitmentAskCooldown time.Duration
	LinkMaxItems       int

	MarketplaceDefault string
	AffiliateTagUS     string
	AffiliateTagUK     string
	AffiliateTagCA     string

	BrainMode      string
	BrainTimeout   time.Duration
	BrainRateLimit float64
	BrainRateBurst int
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	BrainHTTPURL   string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "fitbot"),
		LogLevel:            envOrDefault("APP_LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("APP_LOG_FORMAT", "json"),
		AllowAnyOrigin:      false,
		SessionStore:        strings.ToLower(envTrimmed("SESSION_STORE")),
		RedisURL:            envTrimmed("REDIS_URL"),
		SessionTTL:          30 * time.Minute,
		SessionHistoryLimit: 14,
		FitmentAskCooldown:  150 * time.Second,
		LinkMaxItems:        6,
		MarketplaceDefault:  strings.ToUpper(envOrDefault("MARKETPLACE_DEFAULT", "US")),
		AffiliateTagUS:      envTrimmed("AFFILIATE_TAG_US"),
		AffiliateTagUK:      envTrimmed("AFFILIATE_TAG_UK"),
		AffiliateTagCA:      envTrimmed("AFFILIATE_TAG_CA"),
		BrainMode:           envOrDefault("BRAIN_MODE", "auto"),
		BrainTimeout:        45 * time.Second,
		BrainRateLimit:      3,
		BrainRateBurst:      5,
		OpenAIAPIKey:        envTrimmed("OPENAI_API_KEY"),
		OpenAIBaseURL:       envTrimmed("OPENAI_BASE_URL"),
		OpenAIModel:         envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BrainHTTPURL:        envTrimmed("BRAIN_HTTP_URL"),
		DatabaseURL:         envTrimmed("DATABASE_URL"),
		ShutdownTimeout:     15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL, err = durationFromEnv("SESSION_TTL", cfg.SessionTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionHistoryLimit, err = intFromEnv("SESSION_HISTORY_LIMIT", cfg.SessionHistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.FitmentAskCooldown, err = durationFromEnv("FITMENT_ASK_COOLDOWN", cfg.FitmentAskCooldown)
	if err != nil {
		return Config{}, err
	}
	cfg.LinkMaxItems, err = intFromEnv("LINK_MAX_ITEMS", cfg.LinkMaxItems)
	if err != nil {
		return Config{}, err
	}
	cfg.BrainTimeout, err = durationFromEnv("BRAIN_TIMEOUT", cfg.BrainTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.BrainRateLimit, err = floatFromEnv("BRAIN_RATE_LIMIT", cfg.BrainRateLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.BrainRateBurst, err = intFromEnv("BRAIN_RATE_BURST", cfg.BrainRateBurst)
	if err != nil {
		return Config{}, err
	}

	switch cfg.SessionStore {
	case "", "memory", "redis":
	default:
		return Config{}, fmt.Errorf("SESSION_STORE must be memory or redis")
	}
	if cfg.SessionStore == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
	}
	if cfg.SessionTTL < time.Minute {
		return Config{}, fmt.Errorf("SESSION_TTL must be at least 1m")
	}
	if cfg.SessionHistoryLimit < 4 || cfg.SessionHistoryLimit > 64 {
		return Config{}, fmt.Errorf("SESSION_HISTORY_LIMIT must be between 4 and 64")
	}
	if cfg.FitmentAskCooldown < 0 {
		return Config{}, fmt.Errorf("FITMENT_ASK_COOLDOWN must be >= 0")
	}
	if cfg.LinkMaxItems < 1 || cfg.LinkMaxItems > 12 {
		return Config{}, fmt.Errorf("LINK_MAX_ITEMS must be between 1 and 12")
	}
	if cfg.BrainTimeout <= 0 {
		return Config{}, fmt.Errorf("BRAIN_TIMEOUT must be positive")
	}
	if cfg.BrainRateLimit < 0 {
		return Config{}, fmt.Errorf("BRAIN_RATE_LIMIT must be >= 0")
	}
	if cfg.BrainRateBurst <= 0 {
		return Config{}, fmt.Errorf("BRAIN_RATE_BURST must be positive")
	}

	return cfg, nil
}

// AffiliateTags maps marketplace countries to their configured tags.
func (c Config) AffiliateTags() map[string]string {
	return map[string]string{
		"US": c.AffiliateTagUS,
		"UK": c.AffiliateTagUK,
		"CA": c.AffiliateTagCA,
	}
}

func envOrDefault(key, fallback string) string {
	v := envTrimmed(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
