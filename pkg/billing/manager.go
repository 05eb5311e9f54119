package billing

import (
	"errors"
	"fmt"

	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
)

// Sentinel errors surfaced to the HTTP layer
var (
	ErrForbidden        = errors.New("only owners and admins can manage billing")
	ErrNoBillingAccount = errors.New("No billing account found. Please subscribe to a plan first.")
)

// URLs are where Stripe sends the browser back after hosted flows
type URLs struct {
	CheckoutSuccess string
	CheckoutCancel  string
	PortalReturn    string
}

// Manager drives the outbound billing flows: checkout for a paid plan
// and the customer billing portal.
type Manager struct {
	stripe StripeAPI
	orgs   orgs.Service
	prices PriceTable
	urls   URLs
	logger *observability.Logger
}

// NewManager creates a billing manager
func NewManager(stripe StripeAPI, orgService orgs.Service, prices PriceTable, urls URLs, logger *observability.Logger) *Manager {
	return &Manager{
		stripe: stripe,
		orgs:   orgService,
		prices: prices,
		urls:   urls,
		logger: logger,
	}
}

// ensureCustomer returns the organization's Stripe customer id,
// creating the customer on first use. Two concurrent first-time
// checkouts can race here and create two customers; the second
// SetStripeCustomerID wins and the orphan is harmless.
func (m *Manager) ensureCustomer(org *orgs.Organization, user *auth.User) (string, error) {
	if org.StripeCustomerID != "" {
		return org.StripeCustomerID, nil
	}

	customer, err := m.stripe.CreateCustomer(user.Email, org.Name, org.ID)
	if err != nil {
		return "", err
	}
	if err := m.orgs.SetStripeCustomerID(org.ID, customer.ID); err != nil {
		return "", fmt.Errorf("failed to persist customer id: %w", err)
	}

	m.logger.WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"customer_id":     customer.ID,
	}).Info("created stripe customer")

	return customer.ID, nil
}

// StartCheckout creates a subscription checkout session for a paid
// plan and returns the hosted checkout URL.
func (m *Manager) StartCheckout(user *auth.User, member *orgs.OrgMember, plan orgs.PlanTier) (string, error) {
	if !member.CanManageBilling() {
		return "", ErrForbidden
	}

	priceID, err := m.prices.PriceForPlan(plan)
	if err != nil {
		return "", err
	}

	org, err := m.orgs.GetOrganization(member.OrganizationID)
	if err != nil {
		return "", fmt.Errorf("failed to load organization: %w", err)
	}

	customerID, err := m.ensureCustomer(org, user)
	if err != nil {
		return "", err
	}

	session, err := m.stripe.CreateCheckoutSession(customerID, priceID, m.urls.CheckoutSuccess, m.urls.CheckoutCancel)
	if err != nil {
		return "", err
	}

	m.logger.WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"plan":            plan,
	}).Info("started checkout session")

	return session.URL, nil
}

// OpenPortal creates a billing portal session. Organizations that have
// never checked out have no Stripe customer and get ErrNoBillingAccount.
func (m *Manager) OpenPortal(member *orgs.OrgMember) (string, error) {
	if !member.CanManageBilling() {
		return "", ErrForbidden
	}

	org, err := m.orgs.GetOrganization(member.OrganizationID)
	if err != nil {
		return "", fmt.Errorf("failed to load organization: %w", err)
	}
	if org.StripeCustomerID == "" {
		return "", ErrNoBillingAccount
	}

	session, err := m.stripe.CreatePortalSession(org.StripeCustomerID, m.urls.PortalReturn)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}
