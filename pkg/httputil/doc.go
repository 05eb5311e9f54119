// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses,
// path parameter parsing, and common HTTP middleware.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteSuccess(w, data)
//	httputil.WriteCreated(w, resource)
//
// Error responses:
//
//	httputil.WriteBadRequest(w, "invalid input")
//	httputil.WriteUnauthorized(w, "session expired")
//	httputil.WriteForbidden(w, "insufficient permissions")
//	httputil.WriteInternalError(w, err)
//
// # Request Parsing
//
// JSON parsing:
//
//	var req CreateChatbotRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path parameters:
//
//	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
//
// # Middleware
//
// Router-level middleware for request IDs, structured logging, panic
// recovery, and CORS:
//
//	router.Use(httputil.RequestIDMiddleware)
//	router.Use(httputil.LoggingMiddleware(logger))
//	router.Use(httputil.RecoveryMiddleware(logger))
//	router.Use(httputil.CORSMiddleware(origins))
//
// # Related Packages
//
//   - pkg/middleware: Session authentication and rate limiting middleware
//   - pkg/contextkeys: Context key definitions for request metadata
package httputil
