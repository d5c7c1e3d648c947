package httpx

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const AdminKeyHeader = "X-Admin-Key"

// WithAdminKey guards mutating endpoints with a shared admin key. The
// configured value is a bcrypt hash so the plaintext key never lives in the
// environment. An empty hash disables the guard (dev mode).
func WithAdminKey(bcryptHash string) Middleware {
	hash := []byte(strings.TrimSpace(bcryptHash))
	return func(next http.Handler) http.Handler {
		if len(hash) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(AdminKeyHeader))
			if key == "" {
				http.Error(w, "admin key required", http.StatusUnauthorized)
				return
			}
			if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
				http.Error(w, "invalid admin key", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
