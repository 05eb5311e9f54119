package orgs

import (
	"errors"
	"time"

	"github.com/oncallchat/portal/pkg/auth"
)

// PlanTier represents subscription plan tiers
type PlanTier string

const (
	PlanFree       PlanTier = "FREE"
	PlanStarter    PlanTier = "STARTER"
	PlanPro        PlanTier = "PRO"
	PlanEnterprise PlanTier = "ENTERPRISE"
)

// Valid reports whether the tier is one of the known plans
func (p PlanTier) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Organization represents a tenant workspace
type Organization struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	OwnerID              int64     `json:"owner_id"`
	Plan                 PlanTier  `json:"plan"`
	StripeCustomerID     string    `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string    `json:"stripe_subscription_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// OrgMember represents an organization membership row
type OrgMember struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	Role           auth.Role `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// CanManageBilling reports whether the member may start checkout or
// open the billing portal.
func (m *OrgMember) CanManageBilling() bool {
	return m.Role == auth.RoleOwner || m.Role == auth.RoleAdmin
}

// Sentinel errors for the service layer
var (
	ErrNotFound     = errors.New("organization not found")
	ErrNoMembership = errors.New("no organization found")
)

// Service defines the interface for organization management
type Service interface {
	GetOrganization(id int64) (*Organization, error)
	GetOrganizationBySlug(slug string) (*Organization, error)
	GetOrganizationByStripeCustomer(customerID string) (*Organization, error)

	// HomeMembership resolves the caller's organization. The portal
	// models one workspace per user; this is the only place that
	// assumption is encoded.
	HomeMembership(userID int64) (*OrgMember, error)
	GetMember(orgID, userID int64) (*OrgMember, error)
	ListMembers(orgID int64) ([]*OrgMember, error)
	AddMember(orgID, userID int64, role auth.Role) error

	SetPlan(orgID int64, plan PlanTier, subscriptionID string) error
	SetStripeCustomerID(orgID int64, customerID string) error
}
