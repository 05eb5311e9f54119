package apikeys

import (
	"errors"
	"time"
)

// APIKey represents a stored API key record. The plaintext key never
// appears here; KeyPrefix is the short display hint shown in the
// dashboard.
type APIKey struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	Name           string     `json:"name"`
	KeyHash        string     `json:"-"` // Never expose the hash
	KeyPrefix      string     `json:"key_prefix"`
	CreatedAt      time.Time  `json:"created_at"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
}

// CreatedKey pairs a new record with its plaintext, returned once
type CreatedKey struct {
	Key    string  `json:"key"`
	APIKey *APIKey `json:"api_key"`
}

// Sentinel errors for the service layer
var (
	ErrNameRequired = errors.New("name is required")
	ErrKeyNotFound  = errors.New("api key not found")
)

// Service defines the interface for API key management
type Service interface {
	Create(orgID int64, name string) (*CreatedKey, error)
	List(orgID int64) ([]*APIKey, error)
	Delete(orgID, keyID int64) error
	Verify(plaintext string) (*APIKey, error)
}
