package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"agrilink-storefront/models"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// UserSource reports the signed-in user, or nil
type UserSource interface {
	User() *models.User
}

// CurrentUser returns the user attached by RequireSession
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}

// RequireSession rejects requests while nobody is signed in and attaches
// the user to the request context otherwise
func RequireSession(session UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := session.User()
			if user == nil {
				deny(w, http.StatusUnauthorized, "Please log in to continue")
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the signed-in user has one of roles. It must run
// after RequireSession.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "Please log in to continue")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, http.StatusForbidden, "Forbidden: "+string(roles[0])+"s only")
		})
	}
}
