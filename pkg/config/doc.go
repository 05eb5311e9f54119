// Package config loads portal configuration from environment variables.
//
// # Overview
//
// All settings come from PORTAL_* environment variables with sensible
// defaults for local development. LoadConfig reads the environment,
// applies defaults, and validates the result; a misconfigured portal
// fails at startup rather than at the first request.
//
// # Variables
//
// Server:
//
//	PORTAL_HOST                     bind address (default 0.0.0.0)
//	PORTAL_PORT                     HTTP port (default 8080)
//	PORTAL_HEALTH_PORT              health endpoint port (default 8081)
//	PORTAL_READ_TIMEOUT             (default 30s)
//	PORTAL_WRITE_TIMEOUT            (default 30s)
//	PORTAL_IDLE_TIMEOUT             (default 120s)
//	PORTAL_SHUTDOWN_TIMEOUT         (default 30s)
//	PORTAL_CORS_ORIGINS             comma-separated (default *)
//
// Database and cache:
//
//	PORTAL_POSTGRES_URL             required
//	PORTAL_POSTGRES_MAX_CONNS       (default 25)
//	PORTAL_POSTGRES_MIN_CONNS       (default 5)
//	PORTAL_POSTGRES_MAX_LIFETIME    (default 1h)
//	PORTAL_REDIS_URL                optional; enables rate limiting
//
// Stripe:
//
//	PORTAL_STRIPE_SECRET_KEY        required unless billing disabled
//	PORTAL_STRIPE_WEBHOOK_SECRET
//	PORTAL_STRIPE_PRICE_STARTER
//	PORTAL_STRIPE_PRICE_PRO
//	PORTAL_STRIPE_PRICE_ENTERPRISE
//	PORTAL_CHECKOUT_SUCCESS_URL
//	PORTAL_CHECKOUT_CANCEL_URL
//	PORTAL_PORTAL_RETURN_URL
//
// External services:
//
//	PORTAL_BACKEND_URL              chatbot backend base URL
//	PORTAL_BACKEND_API_KEY
//	PORTAL_LEAD_INTAKE_URL          lead intake base URL
//	PORTAL_SLACK_WEBHOOK_URL        signup notifications
//	PORTAL_SLACK_LEADS_WEBHOOK_URL  lead notifications
//
// # Related Packages
//
//   - pkg/storage: opens the database described here
//   - pkg/billing: consumes the Stripe settings
//   - pkg/observability: log level parsing target
package config
