// Package middleware provides the HTTP middleware chain.
//
// # Overview
//
// Two middlewares matter here:
//
//   - SessionMiddleware resolves a bearer session token into an
//     *auth.AuthContext (user plus home organization membership) and
//     rejects unauthenticated requests with 401.
//   - OrgRateLimitMiddleware applies a per-organization request budget
//     backed by Redis, shared across portal instances.
//
// # Fail-Open Rate Limiting
//
// The rate limiter fails open: a Redis error admits the request rather
// than taking the portal down with the cache. When no Redis client is
// configured the middleware is a passthrough.
//
// # Related Packages
//
//   - pkg/auth: session validation
//   - pkg/orgs: home membership resolution
//   - pkg/contextkeys: the context key the auth context travels under
package middleware
