package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors surfaced by the service. Handlers map these to HTTP
// status codes; anything else is an internal failure.
var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// ValidationError represents a malformed signup/login field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// sessionTTL is how long an issued session token stays valid
const sessionTTL = 30 * 24 * time.Hour

// Service defines the interface for account and session management
type Service interface {
	Signup(req *SignupRequest) (*SignupResult, error)
	Login(req *LoginRequest) (token string, user *User, err error)
	ValidateSession(token string) (*User, error)
	Logout(token string) error
	GetUserByEmail(email string) (*User, error)
}

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db       *sql.DB
	sessions *Generator
	now      func() time.Time
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{
		db:       db,
		sessions: NewGenerator(SessionTokenPrefix, SessionTokenLength, 12),
		now:      time.Now,
	}
}

// Signup creates a user, their workspace organization, and the OWNER
// membership in one transaction. A duplicate email leaves no rows
// behind and returns ErrEmailTaken.
func (s *PostgresService) Signup(req *SignupRequest) (*SignupResult, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	existing, err := s.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user := &User{Name: req.Name, Email: strings.ToLower(req.Email), PasswordHash: passwordHash}
	err = tx.QueryRow(
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slug := WorkspaceSlug(user.Email, s.now())
	var orgID int64
	err = tx.QueryRow(
		`INSERT INTO organizations (name, slug, owner_id, plan) VALUES ($1, $2, $3, 'FREE')
		 RETURNING id`,
		user.Name+"'s Workspace", slug, user.ID,
	).Scan(&orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO organization_members (organization_id, user_id, role) VALUES ($1, $2, $3)`,
		orgID, user.ID, RoleOwner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit signup: %w", err)
	}

	return &SignupResult{User: user, OrganizationID: orgID, OrgSlug: slug}, nil
}

// Login verifies credentials and issues a session token. The plaintext
// token is returned once; only its digest is stored.
func (s *PostgresService) Login(req *LoginRequest) (string, *User, error) {
	user, err := s.GetUserByEmail(req.Email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, tokenHash, _, err := s.sessions.Generate()
	if err != nil {
		return "", nil, err
	}

	expiresAt := s.now().Add(sessionTTL)
	_, err = s.db.Exec(
		`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		user.ID, tokenHash, expiresAt,
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, user, nil
}

// ValidateSession resolves a bearer token to its user
func (s *PostgresService) ValidateSession(token string) (*User, error) {
	if err := s.sessions.ValidateFormat(token); err != nil {
		return nil, ErrInvalidSession
	}

	user := &User{}
	err := s.db.QueryRow(
		`SELECT u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash = $1 AND s.expires_at > NOW()`,
		HashToken(token),
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	return user, nil
}

// Logout revokes a session token. Revoking an unknown token is a no-op.
func (s *PostgresService) Logout(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token_hash = $1`, HashToken(token))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email; nil if not found
func (s *PostgresService) GetUserByEmail(email string) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// WorkspaceSlug derives the workspace slug from an email local part
// plus a timestamp suffix, so repeated local parts never collide.
func WorkspaceSlug(email string, at time.Time) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	local = strings.ToLower(local)
	local = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, local)
	return fmt.Sprintf("%s-%d", local, at.UnixMilli())
}

func validateSignup(req *SignupRequest) error {
	if len(strings.TrimSpace(req.Name)) < 2 {
		return &ValidationError{Field: "name", Message: "Name must be at least 2 characters"}
	}
	if !strings.Contains(req.Email, "@") || strings.HasPrefix(req.Email, "@") || strings.HasSuffix(req.Email, "@") {
		return &ValidationError{Field: "email", Message: "Invalid email address"}
	}
	if len(req.Password) < 8 {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	return nil
}
