package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oncallchat/portal/pkg/observability"
)

// Config holds the complete portal configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Stripe        StripeConfig
	Backend       BackendConfig
	LeadIntake    LeadIntakeConfig
	Slack         SlackConfig
	Notify        NotifyConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	HealthPort      int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
	PingTimeout time.Duration
}

// RedisConfig holds the optional Redis connection. An empty URL
// disables rate limiting and the Redis readiness check.
type RedisConfig struct {
	URL string
}

// StripeConfig holds Stripe API credentials and the price catalog
type StripeConfig struct {
	SecretKey          string
	WebhookSecret      string
	PriceStarter       string
	PricePro           string
	PriceEnterprise    string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	PortalReturnURL    string
}

// Enabled reports whether billing is configured
func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// BackendConfig holds the chatbot backend API settings
type BackendConfig struct {
	URL    string
	APIKey string
}

// LeadIntakeConfig holds the lead intake service settings
type LeadIntakeConfig struct {
	URL string
}

// SlackConfig holds Slack incoming webhook URLs. Empty URLs disable
// the corresponding notification.
type SlackConfig struct {
	SignupWebhookURL string
	LeadsWebhookURL  string
}

// NotifyConfig sizes the background notification queue
type NotifyConfig struct {
	Workers    int
	BufferSize int
}

// RateLimitConfig bounds API requests per organization
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// ObservabilityConfig holds logging and metrics configuration
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("PORTAL_HOST", "0.0.0.0"),
			Port:            getEnvInt("PORTAL_PORT", 8080),
			HealthPort:      getEnvInt("PORTAL_HEALTH_PORT", 8081),
			ReadTimeout:     getEnvDuration("PORTAL_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("PORTAL_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("PORTAL_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("PORTAL_SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSOrigins:     getEnvList("PORTAL_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:         getEnv("PORTAL_POSTGRES_URL", ""),
			MaxConns:    getEnvInt("PORTAL_POSTGRES_MAX_CONNS", 25),
			MinConns:    getEnvInt("PORTAL_POSTGRES_MIN_CONNS", 5),
			MaxLifetime: getEnvDuration("PORTAL_POSTGRES_MAX_LIFETIME", time.Hour),
			MaxIdleTime: getEnvDuration("PORTAL_POSTGRES_MAX_IDLE_TIME", 10*time.Minute),
			PingTimeout: getEnvDuration("PORTAL_POSTGRES_PING_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("PORTAL_REDIS_URL", ""),
		},
		Stripe: StripeConfig{
			SecretKey:          getEnv("PORTAL_STRIPE_SECRET_KEY", ""),
			WebhookSecret:      getEnv("PORTAL_STRIPE_WEBHOOK_SECRET", ""),
			PriceStarter:       getEnv("PORTAL_STRIPE_PRICE_STARTER", ""),
			PricePro:           getEnv("PORTAL_STRIPE_PRICE_PRO", ""),
			PriceEnterprise:    getEnv("PORTAL_STRIPE_PRICE_ENTERPRISE", ""),
			CheckoutSuccessURL: getEnv("PORTAL_CHECKOUT_SUCCESS_URL", "http://localhost:3000/dashboard?upgraded=true"),
			CheckoutCancelURL:  getEnv("PORTAL_CHECKOUT_CANCEL_URL", "http://localhost:3000/dashboard"),
			PortalReturnURL:    getEnv("PORTAL_PORTAL_RETURN_URL", "http://localhost:3000/dashboard"),
		},
		Backend: BackendConfig{
			URL:    getEnv("PORTAL_BACKEND_URL", ""),
			APIKey: getEnv("PORTAL_BACKEND_API_KEY", ""),
		},
		LeadIntake: LeadIntakeConfig{
			URL: getEnv("PORTAL_LEAD_INTAKE_URL", ""),
		},
		Slack: SlackConfig{
			SignupWebhookURL: getEnv("PORTAL_SLACK_WEBHOOK_URL", ""),
			LeadsWebhookURL:  getEnv("PORTAL_SLACK_LEADS_WEBHOOK_URL", ""),
		},
		Notify: NotifyConfig{
			Workers:    getEnvInt("PORTAL_NOTIFY_WORKERS", 2),
			BufferSize: getEnvInt("PORTAL_NOTIFY_BUFFER", 64),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("PORTAL_RATE_LIMIT_REQUESTS", 120),
			WindowDuration:    getEnvDuration("PORTAL_RATE_LIMIT_WINDOW", time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:       parseLogLevel(getEnv("PORTAL_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("PORTAL_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HealthPort < 1 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", c.Server.HealthPort)
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must differ: %d", c.Server.Port)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("PORTAL_POSTGRES_URL is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("invalid max connections: %d", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("invalid min connections: %d", c.Database.MinConns)
	}

	if c.Stripe.Enabled() {
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("PORTAL_STRIPE_WEBHOOK_SECRET is required when Stripe is configured")
		}
		if c.Stripe.PriceStarter == "" || c.Stripe.PricePro == "" || c.Stripe.PriceEnterprise == "" {
			return fmt.Errorf("all Stripe price IDs are required when Stripe is configured")
		}
	}

	if c.Notify.Workers < 1 {
		return fmt.Errorf("invalid notify worker count: %d", c.Notify.Workers)
	}
	if c.Notify.BufferSize < 1 {
		return fmt.Errorf("invalid notify buffer size: %d", c.Notify.BufferSize)
	}

	if c.RateLimit.RequestsPerWindow < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.RateLimit.RequestsPerWindow)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

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
