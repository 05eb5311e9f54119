// Package chatbots manages chatbot configuration records.
//
// # Overview
//
// A chatbot belongs to exactly one organization and carries everything
// the external backend needs to serve it: a minted tenant identifier,
// widget appearance, the channel list, and a knowledge-base blob built
// from operator-supplied company text. All reads and writes are scoped
// by organization id; a chatbot that belongs to another organization is
// indistinguishable from one that does not exist.
//
// # Plan Limits
//
// Creation checks the owning organization's plan tier against the
// static limits table in pkg/orgs: chatbot count and requested
// channels. Updates do not re-check the count, so a downgraded
// organization keeps existing chatbots but cannot add more.
//
// # Usage Counters
//
// messages_this_month and leads_this_month are rolling counters the
// external backend increments out of band. ResetMonthlyUsage zeroes
// them; cmd/portal runs it from a cron entry on the first of each
// month.
//
// # Related Packages
//
//   - pkg/orgs: plan tiers and the limits table
//   - pkg/backend: the external API this package provisions tenants for
//   - pkg/notify: background queue carrying provisioning tasks
package chatbots
