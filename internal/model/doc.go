// Package model defines domain entities and data structures for the
// DareMatch API.
//
// The model package contains all struct definitions for domain objects,
// request/response types, and error definitions. Models are used across all
// layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - Challenge: one dare/number-match game between two users, the
//     aggregate root of the game engine
//   - FriendRequest / Friendship: the social graph
//   - User: profile data owned by this service (identity itself is
//     external)
//
// # Phases
//
// Phase and PhaseFor implement the client-facing view reducer: a pure
// function of (challenge, viewer, local range selection) with no
// server-side state. Handlers use it to decorate per-viewer reads; clients
// recompute it on every change-feed delivery.
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Challenge struct {
//	    ID       string          `json:"id"`
//	    Status   ChallengeStatus `json:"status"`
//	    Numbers  map[string]int  `json:"numbers,omitempty"`
//	}
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
