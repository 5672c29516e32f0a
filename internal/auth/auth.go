// Package auth guards operator endpoints with HTTP basic auth checked
// against a bcrypt hash.
package auth

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/venue-opener/internal/internaltypes"
)

const AdminUser = "admin"

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

// Verify returns internaltypes.ErrUnauthorized unless user is the admin and pw
// matches hash.
func Verify(hash, user, pw string) error {
	if subtle.ConstantTimeCompare([]byte(user), []byte(AdminUser)) != 1 || !CheckPassword(hash, pw) {
		return internaltypes.ErrUnauthorized
	}
	return nil
}

// RequireAdmin rejects requests without valid admin credentials. An empty
// hash disables the wrapped handler entirely.
func RequireAdmin(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				http.Error(w, "admin endpoints disabled (ADMIN_PASSWORD_HASH not set)", http.StatusForbidden)
				return
			}
			user, pw, ok := r.BasicAuth()
			if !ok || Verify(hash, user, pw) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="venueopen"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
