// Package database provides table store connectivity for the Dinmore API.
//
// # Backends
//
// Select a backend at startup and hand it to the repository layer as a
// TableStore:
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    User:      "root",
//	    Password:  "secret",
//	    Namespace: "dinmore",
//	    Database:  "production",
//	})
//	if err := db.Connect(ctx); err != nil { ... }
//	store := database.NewSurrealStore(db)
//
// or, for single-node deployments and tests:
//
//	store, err := database.OpenSQLite(database.MemoryPath)
//
// # Error Types
//
//   - ErrNotFound: row does not exist
//   - ErrTableNotFound: table was never created
//   - ErrConflict: (partition, row) already taken
//   - ErrPreconditionFailed: ETag mismatch on delete
//   - ErrTransient / ErrConnection: retryable failures
//   - ErrInvalidInput: bad table name or continuation token
package database
