package orgs

import (
	"database/sql"
	"fmt"

	"github.com/oncallchat/portal/pkg/auth"
)

const orgColumns = `id, name, slug, owner_id, plan, stripe_customer_id, stripe_subscription_id, created_at, updated_at`

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

func (s *PostgresService) scanOrganization(row *sql.Row) (*Organization, error) {
	org := &Organization{}
	err := row.Scan(
		&org.ID, &org.Name, &org.Slug, &org.OwnerID, &org.Plan,
		&org.StripeCustomerID, &org.StripeSubscriptionID,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// GetOrganization retrieves an organization by ID
func (s *PostgresService) GetOrganization(id int64) (*Organization, error) {
	row := s.db.QueryRow(`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	return s.scanOrganization(row)
}

// GetOrganizationBySlug retrieves an organization by slug
func (s *PostgresService) GetOrganizationBySlug(slug string) (*Organization, error) {
	row := s.db.QueryRow(`SELECT `+orgColumns+` FROM organizations WHERE slug = $1`, slug)
	return s.scanOrganization(row)
}

// GetOrganizationByStripeCustomer retrieves the organization mapped to
// a Stripe customer id. The billing reconciler keys every webhook
// event off this lookup.
func (s *PostgresService) GetOrganizationByStripeCustomer(customerID string) (*Organization, error) {
	row := s.db.QueryRow(`SELECT `+orgColumns+` FROM organizations WHERE stripe_customer_id = $1`, customerID)
	return s.scanOrganization(row)
}

// HomeMembership resolves a user's organization membership. Oldest
// membership wins; ErrNoMembership when the user belongs to none.
func (s *PostgresService) HomeMembership(userID int64) (*OrgMember, error) {
	member := &OrgMember{}
	err := s.db.QueryRow(
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_members
		 WHERE user_id = $1
		 ORDER BY created_at ASC
		 LIMIT 1`,
		userID,
	).Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoMembership
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return member, nil
}

// GetMember retrieves a specific membership
func (s *PostgresService) GetMember(orgID, userID int64) (*OrgMember, error) {
	member := &OrgMember{}
	err := s.db.QueryRow(
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_members
		 WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID,
	).Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoMembership
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// ListMembers lists memberships for an organization
func (s *PostgresService) ListMembers(orgID int64) ([]*OrgMember, error) {
	rows, err := s.db.Query(
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_members
		 WHERE organization_id = $1
		 ORDER BY created_at ASC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*OrgMember
	for rows.Next() {
		member := &OrgMember{}
		if err := rows.Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// AddMember adds a user to an organization
func (s *PostgresService) AddMember(orgID, userID int64, role auth.Role) error {
	_, err := s.db.Exec(
		`INSERT INTO organization_members (organization_id, user_id, role) VALUES ($1, $2, $3)`,
		orgID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// SetPlan sets the plan and subscription id to absolute values.
// Replaying the same webhook event applies the same final state.
func (s *PostgresService) SetPlan(orgID int64, plan PlanTier, subscriptionID string) error {
	result, err := s.db.Exec(
		`UPDATE organizations SET plan = $1, stripe_subscription_id = $2, updated_at = NOW() WHERE id = $3`,
		plan, subscriptionID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStripeCustomerID persists the Stripe customer mapping
func (s *PostgresService) SetStripeCustomerID(orgID int64, customerID string) error {
	result, err := s.db.Exec(
		`UPDATE organizations SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`,
		customerID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
