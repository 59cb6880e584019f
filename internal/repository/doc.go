// Package repository implements the data access layer for the DareMatch API.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles CRUD operations for a specific domain
// entity.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Create, GetByID, ...)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # Optimistic Concurrency
//
// ChallengeRepository.CompareAndUpdate implements the compare-and-write
// primitive of the game engine: the UPDATE carries a WHERE version guard and
// a zero-row result is reported as database.ErrVersionConflict so the
// service layer can retry its read-validate-write cycle.
package repository
