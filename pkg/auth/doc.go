// Package auth provides user accounts, credential verification, and
// opaque bearer tokens for the portal.
//
// # Overview
//
// Signup creates a user, their workspace organization, and the OWNER
// membership in a single transaction. Login issues an opaque session
// token; only the SHA-256 digest of a token is ever stored, so a
// leaked database dump cannot be replayed against the API.
//
// # Tokens
//
// Generator produces random bearer tokens with a scheme prefix:
//
//	gen := auth.NewGenerator("ocs_", 32, 12)
//	token, hash, prefix, err := gen.Generate()
//
// The same generator backs session tokens ("ocs_") and API keys
// ("lc_live_", see pkg/apikeys). The display prefix is a UI affordance
// only and is never used for authentication.
//
// # Related Packages
//
//   - pkg/orgs: organization and membership lookups
//   - pkg/apikeys: programmatic API keys built on Generator
package auth
