package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SessionTokenPrefix identifies portal session tokens
	SessionTokenPrefix = "ocs_"
	// SessionTokenLength is the random payload size in bytes
	SessionTokenLength = 32
)

// Generator generates and validates opaque bearer tokens.
// Format: <prefix><base64url(random bytes)>.
type Generator struct {
	prefix     string
	length     int
	displayLen int
}

// NewGenerator creates a token generator. displayLen is how many
// characters of the full token are kept as the human-visible prefix.
func NewGenerator(prefix string, length, displayLen int) *Generator {
	return &Generator{prefix: prefix, length: length, displayLen: displayLen}
}

// Generate creates a new token and returns the plaintext, its SHA-256
// hex digest for storage, and the display prefix. The plaintext is
// never stored; callers must hand it out exactly once.
func (g *Generator) Generate() (token, tokenHash, displayPrefix string, err error) {
	randomBytes := make([]byte, g.length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = g.prefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	tokenHash = HashToken(token)
	displayPrefix = token
	if len(token) > g.displayLen {
		displayPrefix = token[:g.displayLen]
	}

	return token, tokenHash, displayPrefix, nil
}

// ValidateFormat checks that a token has this generator's shape
func (g *Generator) ValidateFormat(token string) error {
	if !strings.HasPrefix(token, g.prefix) {
		return fmt.Errorf("token must start with %q", g.prefix)
	}
	encoded := strings.TrimPrefix(token, g.prefix)
	if encoded == "" {
		return fmt.Errorf("token is too short")
	}
	if _, err := base64.RawURLEncoding.DecodeString(encoded); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}
	return nil
}

// HashToken computes the SHA-256 hex digest of a token for storage and
// lookup. Verification re-hashes the presented plaintext and compares
// digests; the stored value is irreversible.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
