// Package orgs provides multi-tenant organization management for the portal.
//
// # Overview
//
// Every signup creates exactly one organization owned by the new user.
// All tenant-scoped resources (chatbots, API keys) hang off an
// organization; authorization is "belongs to the caller's
// organization". The caller's organization is resolved through
// HomeMembership, the single place where the one-workspace-per-user
// model lives.
//
// # Plan tiers
//
// FREE: 1 chatbot, 100 messages/month, website only.
// STARTER ($29/month): 1 chatbot, 1000 messages/month, website only.
// PRO ($99/month): 3 chatbots, 5000 messages/month, website + SMS + WhatsApp.
// ENTERPRISE: unlimited chatbots and messages, all channels.
//
// Plan changes arrive through the Stripe webhook reconciler
// (pkg/billing), which calls SetPlan with absolute values so replayed
// events are harmless.
//
// # Related Packages
//
//   - pkg/auth: users, roles, sessions
//   - pkg/billing: subscription lifecycle driving the plan field
package orgs
