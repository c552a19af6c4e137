// Package database provides the table store abstraction layer for Dinmore.
//
// This package defines the TableStore interface: a partitioned, schemaless table
// store addressed by (partition key, row key). Two backends implement it:
//   - SurrealStore: SurrealDB over the Database query interface (production)
//   - SQLiteStore: embedded SQLite, one SQL table per logical table
//
// # Entities
//
// Every row is an Entity: the two keys, an opaque ETag assigned on insert, the
// backend write timestamp and a free-form property bag. Callers never see a
// backend's native record types.
//
// # Pagination
//
// QuerySegment returns at most pageSize entities plus an opaque continuation
// token. An empty token means the scan is complete.
//
// # Error Handling
//
// Backend failures are translated into the sentinels below. Use errors.Is():
//
//	if errors.Is(err, database.ErrConflict) {
//	    // (partition, row) already exists
//	}
//
// ErrConnection wraps ErrTransient, so checking for ErrTransient covers both.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Standard errors for table store operations.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrTableNotFound indicates the logical table has never been created.
	ErrTableNotFound = errors.New("table not found")

	// ErrConflict indicates an insert collided with an existing (partition, row).
	ErrConflict = errors.New("record already exists")

	// ErrPreconditionFailed indicates the row changed since it was read (ETag mismatch).
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrTransient indicates a retryable store-side failure (throttling, busy, network).
	ErrTransient = errors.New("transient store error")

	// ErrConnection indicates a failure to connect to or communicate with the store.
	ErrConnection = fmt.Errorf("%w: database connection error", ErrTransient)

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")

	// ErrInvalidInput indicates the caller supplied a malformed table name or token.
	ErrInvalidInput = errors.New("invalid input")
)

// AnyETag matches every row regardless of its current ETag.
const AnyETag = "*"

// MaxPageSize is the largest segment a backend will return.
const MaxPageSize = 1000

// Entity is a single flat row in a table.
type Entity struct {
	PartitionKey string
	RowKey       string
	ETag         string
	Timestamp    time.Time
	Properties   map[string]any
}

// Segment is one page of a table scan.
type Segment struct {
	Entities          []Entity
	ContinuationToken string
}

// TableStore defines the interface for partitioned table operations
type TableStore interface {
	// CreateTableIfNotExists creates the table; an existing table is not an error.
	CreateTableIfNotExists(ctx context.Context, table string) error

	// Insert adds a new row and returns it with ETag and Timestamp assigned.
	// Returns ErrConflict if the (partition, row) pair already exists.
	Insert(ctx context.Context, table string, entity Entity) (Entity, error)

	// Retrieve returns the row or ErrNotFound / ErrTableNotFound.
	Retrieve(ctx context.Context, table, partitionKey, rowKey string) (Entity, error)

	// Delete removes the row if its ETag still matches entity.ETag (or AnyETag).
	// Returns ErrNotFound if absent and ErrPreconditionFailed on ETag mismatch.
	Delete(ctx context.Context, table string, entity Entity) error

	// QuerySegment returns one page of rows starting after the continuation token.
	QuerySegment(ctx context.Context, table, token string, pageSize int) (Segment, error)

	Ping(ctx context.Context) error
	Close() error
}

// Database defines the interface for SurrealQL query execution
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
}

// Config holds SurrealDB connection configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// ClampPageSize applies the default and upper bound to a requested page size.
func ClampPageSize(pageSize int) int {
	if pageSize <= 0 || pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}
