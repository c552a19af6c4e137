package middleware

import (
	"net/http"

	"github.com/forgo/dinmore/api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the operator key for device management routes
const AdminKeyHeader = "X-Admin-Key"

// AdminKeyCost is the bcrypt cost used when hashing admin keys
const AdminKeyCost = 12

// HashAdminKey returns the bcrypt hash to configure for key
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), AdminKeyCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminKey returns a middleware that requires the X-Admin-Key header to match
// the configured bcrypt hash. With no hash configured every request is refused.
func AdminKey(hash string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				model.NewUnauthorizedError("admin access is not configured").WriteJSON(w)
				return
			}

			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				model.NewUnauthorizedError("missing admin key").WriteJSON(w)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				model.NewUnauthorizedError("invalid admin key").WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
