// Package api exposes the portal's HTTP surface.
//
// # Overview
//
// The Server composes per-domain handlers onto a gorilla/mux router:
//
//   - AuthHandlers: signup, login, logout
//   - ChatbotHandlers: chatbot CRUD and dashboard stats
//   - KeyHandlers: API key issuance and revocation
//   - BillingHandlers: Stripe checkout and billing portal
//   - LeadHandlers: public lead capture from deployed widgets
//
// Routes under /api split into a public subrouter (signup, login, lead
// capture, the Stripe webhook) and a protected subrouter behind the
// session middleware. The webhook authenticates with its signature and
// is mounted outside both the session middleware and the rate limiter.
//
// # Error Mapping
//
// Handlers translate service sentinel errors into status codes:
// validation failures and duplicate emails are 400, bad credentials
// and bad sessions are 401, plan gates are 403, missing resources are
// 404. Anything else is a 500 with the detail kept in the logs.
//
// # Related Packages
//
//   - pkg/middleware: session auth and rate limiting
//   - pkg/httputil: response envelope helpers
package api
