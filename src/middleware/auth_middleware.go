package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"spendwise-server/src/auth"
	"spendwise-server/src/db"
	"spendwise-server/src/models"
	"spendwise-server/src/util"
)

type ctxKey int

const userKey ctxKey = 0

// UserFromContext returns the authenticated user placed by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// WithUser is exported for handler tests that bypass the middleware.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireAuth validates the bearer token and resolves it to a live
// user record. A valid token whose user has since disappeared is
// rejected the same way as a bad token.
func RequireAuth(tokens *auth.TokenManager, store db.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				util.Error(w, http.StatusUnauthorized, "Not authorized, no token provided")
				return
			}

			claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				util.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user, err := store.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					util.Error(w, http.StatusUnauthorized, "User not found or disabled")
					return
				}
				util.Error(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
