package apikeys

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/oncallchat/portal/pkg/auth"
)

const (
	// KeyPrefix identifies live portal API keys
	KeyPrefix = "lc_live_"
	// KeyLength is the random payload size in bytes
	KeyLength = 24
	// DisplayPrefixLen is how much of the key the dashboard shows
	DisplayPrefixLen = 12
)

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db  *sql.DB
	gen *auth.Generator
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{
		db:  db,
		gen: auth.NewGenerator(KeyPrefix, KeyLength, DisplayPrefixLen),
	}
}

// Create issues a new API key for an organization. The plaintext is
// returned exactly once; only its hash and display prefix are stored.
func (s *PostgresService) Create(orgID int64, name string) (*CreatedKey, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	plaintext, keyHash, keyPrefix, err := s.gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	key := &APIKey{
		OrganizationID: orgID,
		Name:           name,
		KeyHash:        keyHash,
		KeyPrefix:      keyPrefix,
	}
	err = s.db.QueryRow(
		`INSERT INTO api_keys (organization_id, name, key_hash, key_prefix)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		key.OrganizationID, key.Name, key.KeyHash, key.KeyPrefix,
	).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store key: %w", err)
	}

	return &CreatedKey{Key: plaintext, APIKey: key}, nil
}

// List returns an organization's keys, newest first
func (s *PostgresService) List(orgID int64) ([]*APIKey, error) {
	rows, err := s.db.Query(
		`SELECT id, organization_id, name, key_prefix, created_at, last_used_at
		 FROM api_keys
		 WHERE organization_id = $1
		 ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		key := &APIKey{}
		if err := rows.Scan(&key.ID, &key.OrganizationID, &key.Name, &key.KeyPrefix, &key.CreatedAt, &key.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Delete removes a key scoped to the owning organization. Deleting a
// nonexistent or foreign key is a silent no-op.
func (s *PostgresService) Delete(orgID, keyID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM api_keys WHERE id = $1 AND organization_id = $2`,
		keyID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Verify matches a presented plaintext key against stored hashes and
// touches last_used_at. This is the contract the external backend
// relies on for bearer authentication.
func (s *PostgresService) Verify(plaintext string) (*APIKey, error) {
	if err := s.gen.ValidateFormat(plaintext); err != nil {
		return nil, ErrKeyNotFound
	}

	key := &APIKey{}
	err := s.db.QueryRow(
		`UPDATE api_keys SET last_used_at = NOW()
		 WHERE key_hash = $1
		 RETURNING id, organization_id, name, key_prefix, created_at, last_used_at`,
		auth.HashToken(plaintext),
	).Scan(&key.ID, &key.OrganizationID, &key.Name, &key.KeyPrefix, &key.CreatedAt, &key.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify key: %w", err)
	}
	return key, nil
}
