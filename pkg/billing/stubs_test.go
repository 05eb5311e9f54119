package billing

import (
	"errors"
	"io"

	"github.com/stripe/stripe-go/v82"

	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

// recordingOrgs records plan mutations so tests can assert on the
// absolute state each webhook handler writes.
type recordingOrgs struct {
	org *orgs.Organization

	setPlanCalls []setPlanCall
	customerSets []string
}

type setPlanCall struct {
	OrgID          int64
	Plan           orgs.PlanTier
	SubscriptionID string
}

func (s *recordingOrgs) GetOrganization(id int64) (*orgs.Organization, error) {
	if s.org == nil || s.org.ID != id {
		return nil, orgs.ErrNotFound
	}
	return s.org, nil
}

func (s *recordingOrgs) GetOrganizationBySlug(string) (*orgs.Organization, error) {
	return s.org, nil
}

func (s *recordingOrgs) GetOrganizationByStripeCustomer(customerID string) (*orgs.Organization, error) {
	if s.org == nil || s.org.StripeCustomerID != customerID {
		return nil, orgs.ErrNotFound
	}
	return s.org, nil
}

func (s *recordingOrgs) HomeMembership(int64) (*orgs.OrgMember, error) {
	return nil, orgs.ErrNoMembership
}

func (s *recordingOrgs) GetMember(int64, int64) (*orgs.OrgMember, error) {
	return nil, orgs.ErrNoMembership
}

func (s *recordingOrgs) ListMembers(int64) ([]*orgs.OrgMember, error) { return nil, nil }
func (s *recordingOrgs) AddMember(int64, int64, auth.Role) error      { return nil }

func (s *recordingOrgs) SetPlan(orgID int64, plan orgs.PlanTier, subscriptionID string) error {
	s.setPlanCalls = append(s.setPlanCalls, setPlanCall{orgID, plan, subscriptionID})
	if s.org != nil && s.org.ID == orgID {
		s.org.Plan = plan
		s.org.StripeSubscriptionID = subscriptionID
	}
	return nil
}

func (s *recordingOrgs) SetStripeCustomerID(orgID int64, customerID string) error {
	s.customerSets = append(s.customerSets, customerID)
	if s.org != nil && s.org.ID == orgID {
		s.org.StripeCustomerID = customerID
	}
	return nil
}

// stubStripe is a canned StripeAPI
type stubStripe struct {
	customer     *stripe.Customer
	checkout     *stripe.CheckoutSession
	portal       *stripe.BillingPortalSession
	subscription *stripe.Subscription

	subscriptionErr error
}

func (s *stubStripe) CreateCustomer(string, string, int64) (*stripe.Customer, error) {
	if s.customer == nil {
		return nil, errors.New("no customer configured")
	}
	return s.customer, nil
}

func (s *stubStripe) CreateCheckoutSession(string, string, string, string) (*stripe.CheckoutSession, error) {
	if s.checkout == nil {
		return nil, errors.New("no checkout configured")
	}
	return s.checkout, nil
}

func (s *stubStripe) CreatePortalSession(string, string) (*stripe.BillingPortalSession, error) {
	if s.portal == nil {
		return nil, errors.New("no portal configured")
	}
	return s.portal, nil
}

func (s *stubStripe) GetSubscription(string) (*stripe.Subscription, error) {
	if s.subscriptionErr != nil {
		return nil, s.subscriptionErr
	}
	if s.subscription == nil {
		return nil, errors.New("no subscription configured")
	}
	return s.subscription, nil
}
