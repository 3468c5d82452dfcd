package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// v0 Platform API
	V0APIKey     string
	V0APIBaseURL string

	// Per-call provider deadlines. Project creation and prompt submission are
	// bounded independently so a slow generation step never delays the cheap
	// project step.
	ProviderEnsureTimeout time.Duration
	ProviderSubmitTimeout time.Duration
	ProviderStatusTimeout time.Duration

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	cfg := &Config{
		V0APIKey:     getEnv("V0_API_KEY", ""),
		V0APIBaseURL: getEnv("V0_API_BASE_URL", "https://api.v0.dev/v1"),

		ProviderEnsureTimeout: getDurationEnv("PROVIDER_ENSURE_TIMEOUT", 10*time.Second),
		ProviderSubmitTimeout: getDurationEnv("PROVIDER_SUBMIT_TIMEOUT", 15*time.Second),
		ProviderStatusTimeout: getDurationEnv("PROVIDER_STATUS_TIMEOUT", 10*time.Second),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "generated-designs"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.V0APIKey == "" {
		return fmt.Errorf("V0_API_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
