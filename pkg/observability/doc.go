// Package observability provides structured logging, Prometheus
// metrics, health checks, and graceful shutdown.
//
// # Overview
//
// Logging is JSON via stdlib slog behind a small fluent wrapper:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("organization_id", orgID).Info("plan changed")
//
// # Prometheus Metrics
//
// NewMetrics registers the portal's HTTP and business metrics on a
// registry; HTTPMetricsMiddleware instruments the router:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//
// # Health Checks
//
// HealthChecker pings PostgreSQL and (when configured) Redis. Redis
// being down degrades rather than fails readiness since the portal
// only uses it for rate limiting.
//
// # Related Packages
//
//   - pkg/config: log level and metrics settings
//   - pkg/contextkeys: request-scoped identifiers loggers pick up
package observability
