// Package database provides the database abstraction layer for DareMatch.
//
// This package defines the Database interface that abstracts SurrealDB
// operations, allowing for clean separation between business logic and data
// access.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// # Transaction Support
//
// Transactions in this package are BATCH-BASED, not connection-level. When
// you call BeginTx(), queries are accumulated in memory until Commit() is
// called. At commit time, all queries are wrapped in BEGIN TRANSACTION /
// COMMIT TRANSACTION and executed atomically. For most use cases, prefer
// AtomicBatch over BeginTx() for clarity.
//
// # Optimistic Concurrency
//
// Challenge mutations use a version-guarded UPDATE: the statement includes
// WHERE version = $expected, and a zero-row result surfaces as
// ErrVersionConflict. Callers retry the read-validate-write cycle.
//
// # Error Handling
//
// Standard errors are defined for common failure cases. Use errors.Is() to
// check error types:
//
//	if errors.Is(err, database.ErrVersionConflict) {
//	    // Re-read and retry
//	}
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrVersionConflict indicates a version-guarded write matched no rows
	// because another writer committed first. Callers retry the
	// read-validate-write cycle rather than surfacing this to API clients.
	ErrVersionConflict = errors.New("version conflict")
)

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error

	// Transaction support
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
	Commit() error
	Rollback() error
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
