// Package testdb provides test table stores for the Dinmore API.
//
// # Backends
//
//	tdb := testdb.New(t)        // SQLite in memory, or SurrealDB if TEST_DB_HOST is set
//	tdb := testdb.NewSQLite(t)  // always SQLite
//	tdb := testdb.NewSurreal(t) // skipped without TEST_DB_HOST
//
// # Isolation
//
// Every SQLite TestDB is its own in-memory database. SurrealDB TestDBs get a
// unique namespace that is removed on cleanup.
//
// # Timeout Context
//
//	ctx := tdb.Ctx() // 10 second timeout, cancelled at test end
package testdb
