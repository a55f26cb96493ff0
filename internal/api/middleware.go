// Package api implements the quicknote REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/quicknote/internal/auth"
)

// AuthMiddleware returns middleware that resolves the Bearer token of each
// request to a user id through the registry. Requests without a known token
// are rejected with 401; accepted requests carry the user in their context.
func AuthMiddleware(registry *auth.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			userID, ok := registry.Lookup(token)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), userID)))
		})
	}
}

// currentUser returns the user id placed in the context by AuthMiddleware.
func currentUser(r *http.Request) string {
	id, _ := auth.UserFromContext(r.Context())
	return id
}
