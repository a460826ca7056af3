package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireAPIKey is middleware that guards the API with a static key. Clients
// send it in the X-Api-Key header or as a bearer token. An empty configured
// key disables the check so local setups stay open.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get("X-Api-Key")
			if presented == "" {
				presented = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
