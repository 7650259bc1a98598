package middleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireToken gates every request behind a single shared token, passed as
// the "token" query parameter — the in-world clients can't set headers, so
// the query string is the only channel available to them.
//
// An empty expected token disables the gate entirely: requests pass without
// any check. Callers should warn loudly at startup when that's the case.
// With a token configured, a request without one is a 400 and a request
// with the wrong one is a 401.
func RequireToken(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}

			given := r.URL.Query().Get("token")
			if given == "" {
				http.Error(w, "missing token", http.StatusBadRequest)
				return
			}

			if subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
