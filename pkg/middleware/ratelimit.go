package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/oncallchat/portal/pkg/observability"
)

// RateLimitConfig bounds requests per window
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// DefaultRateLimitConfig returns the per-organization default
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 120,
		WindowDuration:    time.Minute,
	}
}

// OrgRateLimiter is a fixed-window counter in Redis, shared across
// portal instances.
type OrgRateLimiter struct {
	redis  *redis.Client
	config *RateLimitConfig
	prefix string
}

// NewOrgRateLimiter creates a Redis-backed rate limiter
func NewOrgRateLimiter(redisClient *redis.Client, config *RateLimitConfig) *OrgRateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &OrgRateLimiter{
		redis:  redisClient,
		config: config,
		prefix: "ratelimit:org",
	}
}

// Allow counts a request against the key's window. A Redis error
// returns allowed=true with the error; callers fail open.
func (rl *OrgRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}

	return incr.Val() <= int64(rl.config.RequestsPerWindow), nil
}

// TTL returns the time until the window resets
func (rl *OrgRateLimiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return rl.redis.TTL(ctx, fmt.Sprintf("%s:%s", rl.prefix, key)).Result()
}

// OrgRateLimitMiddleware applies the per-organization budget. Requests
// without an auth context (the webhook route is mounted elsewhere, but
// login/signup pass through here) are keyed by client IP.
type OrgRateLimitMiddleware struct {
	limiter *OrgRateLimiter
	logger  *observability.Logger
}

// NewOrgRateLimitMiddleware creates the middleware. A nil Redis client
// disables rate limiting entirely.
func NewOrgRateLimitMiddleware(redisClient *redis.Client, config *RateLimitConfig, logger *observability.Logger) *OrgRateLimitMiddleware {
	m := &OrgRateLimitMiddleware{logger: logger}
	if redisClient != nil {
		m.limiter = NewOrgRateLimiter(redisClient, config)
	}
	return m
}

// Handler wraps next with rate limiting
func (m *OrgRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	if m.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var key string
		if authCtx := GetAuthContext(r); authCtx != nil {
			key = fmt.Sprintf("%d", authCtx.OrganizationID)
		} else {
			key = "ip:" + clientIP(r)
		}

		allowed, err := m.limiter.Allow(ctx, key)
		if err != nil {
			// Fail open: Redis being down must not take the portal down
			m.logger.WithError(err).Warn("rate limiter unavailable, admitting request")
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			retryAfter := m.limiter.config.WindowDuration.Seconds()
			if ttl, err := m.limiter.TTL(ctx, key); err == nil && ttl > 0 {
				retryAfter = ttl.Seconds()
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"rate limit exceeded","retry_after":%.0f}`, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
