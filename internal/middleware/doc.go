// Package middleware provides HTTP middleware for the DareMatch API.
//
// The middleware package contains reusable middleware components for
// authentication, rate limiting, idempotency, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth: JWT token validation and user extraction
//   - RateLimit: Request rate limiting per user/IP
//   - Idempotency: Replay protection for retried mutations
//   - RequestID, Logger, Recovery, CORS, Compress: request plumbing
//
// # Authentication
//
// The auth middleware validates JWT tokens and extracts user information.
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//
// # Idempotency
//
// Clients retrying a mutation (a number submission, an accept) send the same
// Idempotency-Key header; the stored response is replayed instead of running
// the mutation twice.
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): Returns authenticated user ID
//   - GetUserEmail(ctx): Returns authenticated user email
//   - GetRequestID(ctx): Returns unique request identifier
package middleware
