// Package handler provides HTTP request handlers for the DareMatch API.
//
// The handler package contains all HTTP endpoint implementations organized by
// domain. Each handler struct encapsulates the dependencies needed to serve
// requests for a specific feature area (challenges, friends, stats, feeds).
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts its service dependencies
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: Single resource with optional HATEOAS links
//   - WriteCollection: Paginated list of resources
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// All game endpoints require authentication via JWT tokens issued by the
// external identity provider. The auth middleware verifies the signature and
// makes the user ID available via middleware.GetUserID.
//
// # Real-time feeds
//
// Two change-feed transports are offered: per-challenge SSE streams
// (GET /v1/challenges/{challengeId}/events) and a multiplexed WebSocket
// (GET /v1/ws) that carries user-directed events plus any challenge feeds
// the client subscribes to.
package handler
