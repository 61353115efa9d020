package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/N1K0232/GlowingStoreApi/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T) *service {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc, err := newService(log, config.BasicAuthConfig{
		Enabled: true,
		Users: []config.UserAuth{
			{Username: "alice", Password: "wonderland", Role: config.RoleAdmin},
			{Username: "bob", Password: "builder"},
		},
	}, bcrypt.MinCost)
	require.NoError(t, err)

	return svc
}

func TestAuthenticate(t *testing.T) {
	svc := testService(t)

	user, err := svc.Authenticate(t.Context(), "alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.NotEmpty(t, user.ID)

	bob, err := svc.Authenticate(t.Context(), "bob", "builder")
	require.NoError(t, err)
	assert.Equal(t, RoleReadOnly, bob.Role)

	_, err = svc.Authenticate(t.Context(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(t.Context(), "mallory", "wonderland")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = svc.Authenticate(ctx, "alice", "wonderland")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthenticateReturnsCopy(t *testing.T) {
	svc := testService(t)

	user, err := svc.Authenticate(t.Context(), "bob", "builder")
	require.NoError(t, err)

	user.Role = RoleAdmin

	again, err := svc.Authenticate(t.Context(), "bob", "builder")
	require.NoError(t, err)
	assert.Equal(t, RoleReadOnly, again.Role)
}

func TestAuthenticateDisabled(t *testing.T) {
	svc, err := NewService(logrus.New(), config.BasicAuthConfig{})
	require.NoError(t, err)

	_, err = svc.Authenticate(t.Context(), "alice", "wonderland")
	assert.ErrorIs(t, err, ErrBasicAuthDisabled)
}

func TestDuplicateUser(t *testing.T) {
	_, err := newService(logrus.New(), config.BasicAuthConfig{
		Enabled: true,
		Users: []config.UserAuth{
			{Username: "alice", Password: "a"},
			{Username: "alice", Password: "b"},
		},
	}, bcrypt.MinCost)
	assert.Error(t, err)
}

func TestHasRole(t *testing.T) {
	svc := testService(t)

	admin := &User{Role: RoleAdmin}
	reader := &User{Role: RoleReadOnly}

	assert.True(t, svc.HasRole(admin, RoleReadOnly))
	assert.True(t, svc.IsAdmin(admin))
	assert.True(t, svc.HasRole(reader, RoleReadOnly))
	assert.False(t, svc.IsAdmin(reader))
	assert.False(t, svc.HasRole(nil, RoleReadOnly))
	assert.False(t, svc.HasRole(reader, RoleAdmin))
	assert.Equal(t, []Role{RoleAdmin, RoleReadOnly}, Roles())
}

func TestMiddleware(t *testing.T) {
	svc := testService(t)

	var seen *User

	h := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		username string
		password string
		want     string
	}{
		{name: "anonymous"},
		{name: "valid", username: "alice", password: "wonderland", want: "alice"},
		{name: "invalid", username: "alice", password: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil

			r := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
			if tt.username != "" {
				r.SetBasicAuth(tt.username, tt.password)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, http.StatusOK, rec.Code)

			if tt.want == "" {
				assert.Nil(t, seen)
			} else {
				require.NotNil(t, seen)
				assert.Equal(t, tt.want, seen.Username)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		user   *User
		guard  func(http.Handler) http.Handler
		status int
	}{
		{name: "anonymous authenticated", guard: RequireAuthenticated(), status: http.StatusUnauthorized},
		{name: "user authenticated", user: &User{Role: RoleReadOnly}, guard: RequireAuthenticated(), status: http.StatusOK},
		{name: "anonymous admin", guard: RequireRole(RoleAdmin), status: http.StatusUnauthorized},
		{name: "reader admin", user: &User{Role: RoleReadOnly}, guard: RequireRole(RoleAdmin), status: http.StatusForbidden},
		{name: "admin admin", user: &User{Role: RoleAdmin}, guard: RequireRole(RoleAdmin), status: http.StatusOK},
		{name: "admin reader", user: &User{Role: RoleAdmin}, guard: RequireRole(RoleReadOnly), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				r = r.WithContext(ContextWithUser(r.Context(), tt.user))
			}

			rec := httptest.NewRecorder()
			tt.guard(ok).ServeHTTP(rec, r)

			assert.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestSwaggerMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	docs := func(r *http.Request) bool {
		return r.URL.Path == "/" || strings.HasPrefix(r.URL.Path, "/swagger/")
	}

	h := SwaggerMiddleware("docs", "s3cret", docs)(ok)

	tests := []struct {
		name     string
		path     string
		username string
		password string
		status   int
	}{
		{name: "document anonymous", path: "/swagger/v1/swagger.json", status: http.StatusUnauthorized},
		{name: "index anonymous", path: "/", status: http.StatusUnauthorized},
		{name: "document wrong password", path: "/swagger/v1/swagger.json", username: "docs", password: "nope", status: http.StatusUnauthorized},
		{name: "document authorized", path: "/swagger/v1/swagger.json", username: "docs", password: "s3cret", status: http.StatusOK},
		{name: "api untouched", path: "/api/v1/status", status: http.StatusOK},
		{name: "unguarded path untouched", path: "/swaggerish", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.username != "" {
				r.SetBasicAuth(tt.username, tt.password)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSwaggerMiddlewareDisabled(t *testing.T) {
	all := func(*http.Request) bool { return true }

	h := SwaggerMiddleware("", "", all)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/v1/swagger.json", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
