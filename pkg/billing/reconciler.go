package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
)

// Reconciler folds Stripe webhook events into the organization's plan
// column. Each handler sets absolute state so redelivery is harmless.
type Reconciler struct {
	orgs   orgs.Service
	stripe StripeAPI
	prices PriceTable
	logger *observability.Logger
}

// NewReconciler creates a webhook event reconciler
func NewReconciler(orgService orgs.Service, stripe StripeAPI, prices PriceTable, logger *observability.Logger) *Reconciler {
	return &Reconciler{
		orgs:   orgService,
		stripe: stripe,
		prices: prices,
		logger: logger,
	}
}

// HandleEvent dispatches a verified Stripe event. A nil return means
// the event is settled and Stripe should not retry; that includes
// events for customers we have no organization for.
func (r *Reconciler) HandleEvent(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to decode checkout session: %w", err)
		}
		return r.checkoutCompleted(&session)

	case "customer.subscription.created", "customer.subscription.updated":
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		return r.subscriptionChanged(&subscription)

	case "customer.subscription.deleted":
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		return r.subscriptionDeleted(&subscription)

	case "invoice.payment_succeeded":
		r.logger.WithField("event_id", event.ID).Info("invoice payment succeeded")
		return nil

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("failed to decode invoice: %w", err)
		}
		return r.paymentFailed(&invoice)

	default:
		r.logger.WithField("type", string(event.Type)).Debug("ignoring stripe event")
		return nil
	}
}

// resolveOrg maps a Stripe customer id to an organization. Unknown
// customers return (nil, nil): the event is logged and dropped so
// Stripe stops retrying something we can never process.
func (r *Reconciler) resolveOrg(customerID string) (*orgs.Organization, error) {
	if customerID == "" {
		r.logger.Warn("stripe event missing customer id")
		return nil, nil
	}
	org, err := r.orgs.GetOrganizationByStripeCustomer(customerID)
	if errors.Is(err, orgs.ErrNotFound) {
		r.logger.WithField("customer_id", customerID).Warn("no organization for stripe customer")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organization: %w", err)
	}
	return org, nil
}

func customerIDOf(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

// firstPriceID returns the price id of the subscription's first item
func firstPriceID(subscription *stripe.Subscription) string {
	if subscription.Items == nil {
		return ""
	}
	for _, item := range subscription.Items.Data {
		if item.Price != nil && item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}

func (r *Reconciler) checkoutCompleted(session *stripe.CheckoutSession) error {
	org, err := r.resolveOrg(customerIDOf(session.Customer))
	if err != nil || org == nil {
		return err
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		r.logger.WithField("session_id", session.ID).Warn("checkout session has no subscription")
		return nil
	}

	// The session payload does not expand items, so fetch the
	// subscription to learn which price was bought.
	subscription, err := r.stripe.GetSubscription(session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	plan := r.prices.PlanForPrice(firstPriceID(subscription))
	if err := r.orgs.SetPlan(org.ID, plan, subscription.ID); err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"plan":            plan,
		"subscription_id": subscription.ID,
	}).Info("checkout completed")

	return nil
}

func (r *Reconciler) subscriptionChanged(subscription *stripe.Subscription) error {
	org, err := r.resolveOrg(customerIDOf(subscription.Customer))
	if err != nil || org == nil {
		return err
	}

	switch subscription.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		plan := r.prices.PlanForPrice(firstPriceID(subscription))
		if err := r.orgs.SetPlan(org.ID, plan, subscription.ID); err != nil {
			return fmt.Errorf("failed to set plan: %w", err)
		}
		r.logger.WithFields(map[string]interface{}{
			"organization_id": org.ID,
			"plan":            plan,
			"status":          subscription.Status,
		}).Info("subscription active")

	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		// No plan mutation yet; leaves room to restrict delinquent
		// organizations later.
		r.logger.WithFields(map[string]interface{}{
			"organization_id": org.ID,
			"status":          subscription.Status,
		}).Warn("subscription delinquent")

	default:
		r.logger.WithFields(map[string]interface{}{
			"organization_id": org.ID,
			"status":          subscription.Status,
		}).Info("ignoring subscription status")
	}

	return nil
}

func (r *Reconciler) subscriptionDeleted(subscription *stripe.Subscription) error {
	org, err := r.resolveOrg(customerIDOf(subscription.Customer))
	if err != nil || org == nil {
		return err
	}

	if err := r.orgs.SetPlan(org.ID, orgs.PlanFree, ""); err != nil {
		return fmt.Errorf("failed to downgrade plan: %w", err)
	}

	r.logger.WithField("organization_id", org.ID).Info("subscription deleted, downgraded to FREE")
	return nil
}

func (r *Reconciler) paymentFailed(invoice *stripe.Invoice) error {
	org, err := r.resolveOrg(customerIDOf(invoice.Customer))
	if err != nil || org == nil {
		return err
	}

	r.logger.WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"invoice_id":      invoice.ID,
	}).Warn("invoice payment failed")
	return nil
}
