package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/service"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./farm.db)

	Issuer      string        // Required: expected "iss" of caller tokens
	Audience    []string      // Optional: accepted "aud" values, comma separated (default: any)
	JWKSFile    string        // One of JWKSFile/JWKSURL is required
	JWKSURL     string        // Identity provider JWKS endpoint
	JWKSRefresh time.Duration // How often keys are reloaded (default: 15m, 0 disables)

	InvitationTTL time.Duration // Invitation lifetime (default: 168h)

	BillingWebhookSecret string // Optional: enables POST /v1/billing/webhook
	NATSURL              string // Optional: enables the JetStream billing consumer
	BillingSubject       string // Subject carrying plan-change events (default: billing.plan.changed)
	BillingDurable       string // Durable consumer name (default: farm-plan-bridge)
	BillingStream        string // Stream created for BillingSubject if missing (default: BILLING)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Invitation expiry sweep interval (default: 0, disabled)
}

func LoadConfig() Config {
	cfg := Config{
		DatabaseFile:         getEnvOrDefault("FARM_DATABASE_FILE", "farm.db"),
		Issuer:               os.Getenv("AUTH_ISSUER"),
		Audience:             splitList(os.Getenv("AUTH_AUDIENCE")),
		JWKSFile:             os.Getenv("AUTH_JWKS_FILE"),
		JWKSURL:              os.Getenv("AUTH_JWKS_URL"),
		JWKSRefresh:          getEnvDurationOrDefault("AUTH_JWKS_REFRESH", 15*time.Minute),
		InvitationTTL:        getEnvDurationOrDefault("INVITATION_TTL", service.DefaultInvitationTTL),
		BillingWebhookSecret: os.Getenv("BILLING_WEBHOOK_SECRET"),
		NATSURL:              os.Getenv("NATS_URL"),
		BillingSubject:       getEnvOrDefault("BILLING_SUBJECT", "billing.plan.changed"),
		BillingDurable:       getEnvOrDefault("BILLING_DURABLE", "farm-plan-bridge"),
		BillingStream:        getEnvOrDefault("BILLING_STREAM", "BILLING"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 0),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "bartab-auth"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
