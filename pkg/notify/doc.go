// Package notify runs background work the request path must not wait on.
//
// # Overview
//
// Three things ride the queue today: Slack announcements (signups and
// captured leads), tenant provisioning calls to the external chatbot
// backend, and lead forwarding to the intake system. All
// share the same contract: the enqueueing request returns immediately,
// failures are retried with exponential backoff, and a task that
// exhausts its retries is logged and counted, never surfaced to the
// user who triggered it.
//
// # Shutdown
//
// Close stops intake, drains queued tasks, and waits for in-flight
// work. cmd/portal calls it during graceful shutdown so an accepted
// signup doesn't silently lose its notification.
//
// # Related Packages
//
//   - pkg/backend: the client provisioning tasks call into
//   - pkg/leads: the intake client lead forwarding tasks call into
//   - pkg/observability: metrics registry the queue counters attach to
package notify
