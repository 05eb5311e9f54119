// Package apikeys issues and verifies programmatic API keys.
//
// Keys look like "lc_live_<base64url(24 random bytes)>". Only the
// SHA-256 digest and a 12-character display prefix are stored; the
// plaintext is returned exactly once at creation time and is
// unrecoverable afterwards. The external chatbot backend verifies
// incoming bearer keys by re-hashing them and looking up the digest —
// the prefix is display-only and never authenticates anything.
//
// Deletion is idempotent and organization-scoped: deleting an unknown
// key, or a key owned by another organization, silently does nothing.
package apikeys
