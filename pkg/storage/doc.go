// Package storage opens the portal's backing stores.
//
// # Overview
//
// Two helpers live here: OpenPostgres, which opens and pings the
// PostgreSQL pool every service shares, and OpenRedis, which opens the
// optional Redis client used by rate limiting. Both verify
// connectivity before returning so a bad URL fails at startup.
//
// # Related Packages
//
//   - pkg/config: the connection settings
//   - pkg/observability: health checks ping the same connections
package storage
