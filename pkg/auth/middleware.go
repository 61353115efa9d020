package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
)

// Realm is announced in WWW-Authenticate challenges.
const Realm = "GlowingStore"

// Context keys for user information.
type contextKey string

const (
	userContextKey contextKey = "user"
)

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok {
		return nil
	}

	return user
}

// ContextWithUser adds a user to the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Middleware authenticates basic credentials when present and stores the
// user in the context. Requests without valid credentials pass through
// anonymously; authorization is decided per route.
func Middleware(authSvc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if ok {
				user, err := authSvc.Authenticate(r.Context(), username, password)
				if err == nil {
					r = r.WithContext(ContextWithUser(r.Context(), user))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated creates middleware that rejects anonymous requests.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				unauthorized(w, r)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole creates middleware that requires a specific role.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				unauthorized(w, r)

				return
			}

			if !hasRole(user, role) {
				problem.Write(w, r, http.StatusForbidden, "The "+string(role)+" role is required.")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SwaggerMiddleware guards the requests selected by guarded with a single set
// of basic credentials. An empty username disables the guard.
func SwaggerMiddleware(username, password string, guarded func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if username == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guarded(r) {
				next.ServeHTTP(w, r)

				return
			}

			user, pass, ok := r.BasicAuth()
			if ok && secureEqual(user, username) && secureEqual(pass, password) {
				next.ServeHTTP(w, r)

				return
			}

			unauthorized(w, r)
		})
	}
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`", charset="UTF-8"`)
	problem.Write(w, r, http.StatusUnauthorized, "Valid credentials are required.")
}
