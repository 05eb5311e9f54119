// Package billing integrates Stripe subscription billing.
//
// # Overview
//
// Billing state lives in two places: Stripe owns the subscription
// lifecycle, and the organizations table carries a denormalized plan
// tier plus the Stripe customer and subscription ids. This package
// keeps the two in sync in both directions:
//
//   - Manager starts checkout and billing-portal sessions on behalf of
//     an organization member (outbound).
//   - Reconciler folds Stripe webhook events back into the plan column
//     (inbound).
//
// # Webhook Security
//
// Signature verification over the raw request body is the only
// admission control on the webhook endpoint. A missing or invalid
// Stripe-Signature header rejects the request before any state is
// touched.
//
// # Idempotency
//
// Every reconciliation sets absolute state (plan, subscription id)
// rather than incrementing anything, so Stripe redelivering an event
// is harmless. Events for customers we have no organization for are
// logged and dropped with a 200 so Stripe stops retrying them.
//
// # Related Packages
//
//   - pkg/orgs: plan tiers and the SetPlan persistence
//   - pkg/api: mounts the webhook and checkout routes
package billing
