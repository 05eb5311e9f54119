package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeAPI is the slice of Stripe this package needs. The concrete
// implementation wraps the official client; tests substitute a stub.
type StripeAPI interface {
	CreateCustomer(email, name string, orgID int64) (*stripe.Customer, error)
	CreateCheckoutSession(customerID, priceID, successURL, cancelURL string) (*stripe.CheckoutSession, error)
	CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error)
	GetSubscription(subscriptionID string) (*stripe.Subscription, error)
}

// StripeClient implements StripeAPI against the Stripe API
type StripeClient struct {
	api *client.API
}

// NewStripeClient creates a client bound to a secret key. No package
// level key is set; every call goes through this instance.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

// CreateCustomer creates a Stripe customer tagged with the owning
// organization id.
func (c *StripeClient) CreateCustomer(email, name string, orgID int64) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.AddMetadata("organization_id", fmt.Sprintf("%d", orgID))

	customer, err := c.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe customer: %w", err)
	}
	return customer, nil
}

// CreateCheckoutSession starts a subscription-mode checkout
func (c *StripeClient) CreateCheckoutSession(customerID, priceID, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, nil
}

// CreatePortalSession opens the Stripe customer billing portal
func (c *StripeClient) CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}

	session, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}
	return session, nil
}

// GetSubscription fetches a subscription with its price items
func (c *StripeClient) GetSubscription(subscriptionID string) (*stripe.Subscription, error) {
	subscription, err := c.api.Subscriptions.Get(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return subscription, nil
}
