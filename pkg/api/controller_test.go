package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/N1K0232/GlowingStoreApi/pkg/auth"
	"github.com/N1K0232/GlowingStoreApi/pkg/openapi"
	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	v1 = versioning.MustParseVersion("1.0")
	v2 = versioning.MustParseVersion("2.0")
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func testCatalog() *Catalog {
	c := NewCatalog([]versioning.Declaration{{Version: v1}})

	c.Add(
		Controller{
			Name: "products",
			Actions: []Action{
				{Name: "List", Method: http.MethodGet, Handler: ok},
				{Name: "GetById", Method: http.MethodGet, Pattern: "/{id:[0-9]+}", Handler: ok},
				{Name: "Delete", Method: http.MethodDelete, Pattern: "/{id:[0-9]+}", Roles: []auth.Role{auth.RoleAdmin}, Handler: ok},
			},
		},
		Controller{
			Name: "orders",
			Versions: []versioning.Declaration{
				{Version: v1, Deprecated: true},
				{Version: v2},
			},
			Actions: []Action{
				{Name: "List", Method: http.MethodGet, Authorize: true, Handler: ok},
			},
		},
	)

	return c
}

func TestCatalogSource(t *testing.T) {
	src := testCatalog().Source()

	versions := src.ListVersions()
	require.Len(t, versions, 2)

	// products declares 1.0 as active, so 1.0 is not deprecated overall.
	assert.Equal(t, "v1", versions[0].GroupName)
	assert.False(t, versions[0].Deprecated)
	assert.Equal(t, "v2", versions[1].GroupName)
}

func TestCatalogOperations(t *testing.T) {
	c := testCatalog()
	src := c.Source()

	d1, found := src.Lookup("1")
	require.True(t, found)

	ops := c.Operations(d1)
	require.Len(t, ops, 4)

	assert.Equal(t, "/api/v1/products", ops[0].Path)
	assert.Equal(t, "products", ops[0].RouteGroup)
	assert.Equal(t, "List", ops[0].ActionName)
	assert.Equal(t, []openapi.ResponseDescriptor{{Status: http.StatusOK}}, ops[0].Responses)

	assert.Equal(t, "/api/v1/products/{id}", ops[1].Path)
	assert.False(t, ops[1].RequiresAuth)
	assert.True(t, ops[2].RequiresAuth)

	// orders is deprecated in 1.0 only.
	assert.Equal(t, "/api/v1/orders", ops[3].Path)
	assert.True(t, ops[3].Deprecated)
	assert.True(t, ops[3].RequiresAuth)

	d2, found := src.Lookup("2.0")
	require.True(t, found)

	ops = c.Operations(d2)
	require.Len(t, ops, 1)
	assert.Equal(t, "/api/v2/orders", ops[0].Path)
	assert.False(t, ops[0].Deprecated)
}

func TestCatalogMount(t *testing.T) {
	c := testCatalog()
	r := chi.NewRouter()
	c.Mount(r, c.Source())

	admin := &auth.User{Username: "alice", Role: auth.RoleAdmin}
	reader := &auth.User{Username: "bob", Role: auth.RoleReadOnly}

	tests := []struct {
		name   string
		method string
		path   string
		user   *auth.User
		status int
	}{
		{name: "root action", method: http.MethodGet, path: "/api/v1/products", status: http.StatusOK},
		{name: "version with minor", method: http.MethodGet, path: "/api/v1.0/products", status: http.StatusOK},
		{name: "path parameter", method: http.MethodGet, path: "/api/v1/products/42", status: http.StatusOK},
		{name: "regexp mismatch", method: http.MethodGet, path: "/api/v1/products/abc", status: http.StatusNotFound},
		{name: "version not served by controller", method: http.MethodGet, path: "/api/v2/products", status: http.StatusBadRequest},
		{name: "unknown version", method: http.MethodGet, path: "/api/v7/orders", status: http.StatusBadRequest},
		{name: "anonymous authorize", method: http.MethodGet, path: "/api/v2/orders", status: http.StatusUnauthorized},
		{name: "user authorize", method: http.MethodGet, path: "/api/v2/orders", user: reader, status: http.StatusOK},
		{name: "reader admin role", method: http.MethodDelete, path: "/api/v1/products/42", user: reader, status: http.StatusForbidden},
		{name: "admin role", method: http.MethodDelete, path: "/api/v1/products/42", user: admin, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != nil {
				req = req.WithContext(auth.ContextWithUser(req.Context(), tt.user))
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "1.0, 2.0", rec.Header().Get(versioning.HeaderSupported))
		})
	}
}
