package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"evhub/backend/services/admin-console/internal/models"
)

// SessionChecker reports whether the console holds a usable token.
type SessionChecker interface {
	Authenticated(ctx context.Context) bool
}

// RequireSession answers 401 with a login redirect unless the console
// session holds a live token.
func RequireSession(checker SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.Authenticated(r.Context()) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(models.Result{
					Error:    "Authentication required",
					Code:     "unauthorized",
					Redirect: "/login",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
