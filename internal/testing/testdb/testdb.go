// Package testdb provides isolated table stores for integration tests.
//
// By default each TestDB is a private in-memory SQLite store. Setting
// TEST_DB_HOST runs the same tests against SurrealDB instead, with a unique
// namespace per TestDB.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    err := tdb.Store.CreateTableIfNotExists(tdb.Ctx(), "devices")
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/forgo/dinmore/api/internal/database"
)

// Backend names
const (
	BackendSQLite    = "sqlite"
	BackendSurrealDB = "surrealdb"
)

// TestDB provides an isolated table store for testing.
type TestDB struct {
	Store     database.TableStore
	Backend   string
	Namespace string
	surreal   *database.SurrealDB
	t         *testing.T
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// getTestConfig returns SurrealDB config from environment or defaults
func getTestConfig() database.Config {
	return database.Config{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     getEnv("TEST_DB_PORT", "8000"),
		User:     getEnv("TEST_DB_USER", "root"),
		Password: getEnv("TEST_DB_PASSWORD", "root"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates an isolated store: SurrealDB when TEST_DB_HOST is set,
// in-memory SQLite otherwise. The store is closed when the test ends.
func New(t *testing.T) *TestDB {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") != "" {
		return NewSurreal(t)
	}
	return NewSQLite(t)
}

// NewSQLite creates a private in-memory SQLite store.
func NewSQLite(t *testing.T) *TestDB {
	t.Helper()

	store, err := database.OpenSQLite(database.MemoryPath)
	if err != nil {
		t.Fatalf("testdb: failed to open sqlite: %v", err)
	}

	tdb := &TestDB{Store: store, Backend: BackendSQLite, t: t}
	t.Cleanup(tdb.Close)
	return tdb
}

// NewSurreal creates a SurrealDB store in a fresh namespace, skipping the
// test when TEST_DB_HOST is not set.
func NewSurreal(t *testing.T) *TestDB {
	t.Helper()

	cfg := getTestConfig()
	if cfg.Host == "" {
		t.Skip("testdb: TEST_DB_HOST not set, skipping SurrealDB test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg.Namespace = uniqueNamespace()
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	tdb := &TestDB{
		Store:     database.NewSurrealStore(db),
		Backend:   BackendSurrealDB,
		Namespace: cfg.Namespace,
		surreal:   db,
		t:         t,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close releases the store. SurrealDB namespaces are removed first.
func (tdb *TestDB) Close() {
	if tdb.Store == nil {
		return
	}

	if tdb.surreal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		query := fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace)
		_ = tdb.surreal.Execute(ctx, query, nil) // Ignore errors on cleanup
	}

	_ = tdb.Store.Close()
	tdb.Store = nil
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}
