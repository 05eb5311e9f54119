// Package backend is the REST client for the external chatbot backend.
//
// # Overview
//
// The backend owns everything conversational: message processing, AI
// inference, and channel webhook delivery. This portal only provisions
// tenants on it and reads data back for the dashboard. All endpoints
// are namespaced under a tenant id minted by pkg/chatbots.
//
// Requests carry an optional bearer API key and decode the backend's
// JSON error envelope ({"message": ...}) into an *APIError so callers
// can branch on the status code.
package backend
