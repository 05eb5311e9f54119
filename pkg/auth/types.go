package auth

import "time"

// Role represents organization-level roles
type Role string

const (
	RoleOwner  Role = "OWNER"  // Full control, billing included
	RoleAdmin  Role = "ADMIN"  // Manage chatbots, keys, and billing
	RoleMember Role = "MEMBER" // Day-to-day dashboard access
)

// User represents a portal account
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose the hash
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents an issued login session. Only the token digest is
// stored; the plaintext token lives in the caller's cookie/header.
type Session struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// SignupRequest represents the signup form payload
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the credential login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResult reports what signup created
type SignupResult struct {
	User           *User  `json:"user"`
	OrganizationID int64  `json:"organization_id"`
	OrgSlug        string `json:"org_slug"`
}

// AuthContext holds the authenticated caller for a request
type AuthContext struct {
	User           *User
	OrganizationID int64
	Role           Role
}
