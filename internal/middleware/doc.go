// Package middleware provides HTTP middleware for the Dinmore API.
//
// Cross-cutting middleware is composed with Chain:
//
//	handler := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.Logger(logger),
//	    middleware.Recovery,
//	    middleware.CORS(origins),
//	    middleware.Compress,
//	)
//
// # Admin key
//
// Device management routes are guarded by AdminKey, which compares the
// X-Admin-Key header against a bcrypt hash from configuration. Generate
// the hash with cmd/admin-key.
//
// # Rate limiting
//
// RateLimit applies a token bucket per client. Sighting ingestion is limited
// per remote host by default; pass a KeyFunc to key on something else.
//
// # Context values
//
//   - GetRequestID(ctx): unique request identifier
package middleware
