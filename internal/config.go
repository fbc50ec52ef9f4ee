package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Application base URL (for Stripe redirect links)
	BaseURL string

	// State store configuration.
	// The state store persists per-user chat state (response cache, usage
	// counter) outside the relational database.
	StateStoreProvider string // "local" or "r2"

	// Local state store (development)
	LocalStatePath string // Base directory for local state files

	// R2 state store (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// Chat configuration
	ResponderProvider string        // "mock" is the only supported provider
	ResponderDelay    time.Duration // Artificial latency of the mock responder
	ChatCacheSize     int           // Max cached responses per user
	ChatCacheTTL      time.Duration // Retention window for cached responses
	ChatCachedDelay   time.Duration // Delay before delivering a cached reply
	ChatPaywallDelay  time.Duration // Delay between limit-reached and paywall open
	PlanRefreshEvery  time.Duration // Minimum interval between subscription refreshes
	ChatIdleTimeout   time.Duration // Idle time before a chat session is evicted
	MaintenanceEvery  time.Duration // Interval between maintenance worker runs

	// Stripe Billing Configuration
	// In development, billing handlers function as stubs if these are empty.
	StripeSecretKey     string // Stripe API secret key (sk_test_... or sk_live_...)
	StripeWebhookSecret string // Stripe webhook signing secret (whsec_...)

	// Stripe price IDs for subscription plans
	StripeStarterMonthlyPriceID string
	StripeStarterYearlyPriceID  string
	StripePopularMonthlyPriceID string
	StripePopularYearlyPriceID  string
	StripeProMonthlyPriceID     string
	StripeProYearlyPriceID      string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Base URL defaults to localhost for development
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		// State store defaults to local filesystem for development
		StateStoreProvider: getEnv("STATE_STORE_PROVIDER", "local"),
		LocalStatePath:     getEnv("LOCAL_STATE_PATH", "./state"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),

		// Chat defaults
		ResponderProvider: getEnv("RESPONDER_PROVIDER", "mock"),
		ResponderDelay:    getEnvDuration("RESPONDER_DELAY", 1500*time.Millisecond),
		ChatCacheSize:     getEnvInt("CHAT_CACHE_SIZE", 50),
		ChatCacheTTL:      getEnvDuration("CHAT_CACHE_TTL", 24*time.Hour),
		ChatCachedDelay:   getEnvDuration("CHAT_CACHED_DELAY", 500*time.Millisecond),
		ChatPaywallDelay:  getEnvDuration("CHAT_PAYWALL_DELAY", 1500*time.Millisecond),
		PlanRefreshEvery:  getEnvDuration("PLAN_REFRESH_EVERY", 60*time.Second),
		ChatIdleTimeout:   getEnvDuration("CHAT_IDLE_TIMEOUT", 30*time.Minute),
		MaintenanceEvery:  getEnvDuration("MAINTENANCE_EVERY", time.Hour),

		// Stripe billing (optional; stubs work without these)
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		// Stripe price IDs (optional; required when billing is enabled)
		StripeStarterMonthlyPriceID: getEnv("STRIPE_STARTER_MONTHLY_PRICE_ID", ""),
		StripeStarterYearlyPriceID:  getEnv("STRIPE_STARTER_YEARLY_PRICE_ID", ""),
		StripePopularMonthlyPriceID: getEnv("STRIPE_POPULAR_MONTHLY_PRICE_ID", ""),
		StripePopularYearlyPriceID:  getEnv("STRIPE_POPULAR_YEARLY_PRICE_ID", ""),
		StripeProMonthlyPriceID:     getEnv("STRIPE_PRO_MONTHLY_PRICE_ID", ""),
		StripeProYearlyPriceID:      getEnv("STRIPE_PRO_YEARLY_PRICE_ID", ""),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Validate state store configuration
	if cfg.StateStoreProvider == "r2" {
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when STATE_STORE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STATE_STORE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STATE_STORE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STATE_STORE_PROVIDER is 'r2'")
		}
	} else if cfg.StateStoreProvider != "local" {
		return nil, fmt.Errorf("STATE_STORE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.StateStoreProvider)
	}

	// Validate responder configuration
	if cfg.ResponderProvider != "mock" {
		return nil, fmt.Errorf("RESPONDER_PROVIDER must be 'mock', got: %s", cfg.ResponderProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
