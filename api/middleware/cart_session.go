package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CartSession copies the anonymous cart cookie into the request context.
// Values that are not uuids are ignored so a tampered cookie behaves like a
// missing one.
func CartSession(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			value := strings.TrimSpace(cookie.Value)
			if _, parseErr := uuid.Parse(value); parseErr != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCartSession(r.Context(), value)))
		})
	}
}
