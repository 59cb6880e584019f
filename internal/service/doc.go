// Package service implements the business logic layer for the DareMatch API.
//
// Services sit between HTTP handlers and repositories. Each service declares
// the repository interface it needs, so tests can substitute mocks without
// touching the database layer.
//
// ChallengeService is the game engine: it owns the challenge state machine
// (pending, accepted, active, completed, rejected), validates every
// transition against the caller's role, and resolves the match once both
// numbers are in. All mutations run as a read-validate-write cycle on a
// version-guarded update, retried a bounded number of times on conflict.
//
// EventHub fans committed challenge changes out to connected clients. Every
// event carries the full updated record, never a diff, and events for one
// challenge are delivered in commit order because the service publishes
// while still holding the per-challenge commit lock.
package service
