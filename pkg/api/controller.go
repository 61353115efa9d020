package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/N1K0232/GlowingStoreApi/pkg/auth"
	"github.com/N1K0232/GlowingStoreApi/pkg/openapi"
	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/go-chi/chi/v5"
)

// RoutePrefix is the versioned prefix every controller is mounted under.
const RoutePrefix = "/api/v{" + versioning.RouteParam + "}"

// Controller groups the actions served under /api/v{version}/{Name}.
type Controller struct {
	Name string
	// Versions lists the API versions the controller serves. Empty inherits
	// the catalog defaults.
	Versions []versioning.Declaration
	Actions  []Action
}

// Action is one route of a controller.
type Action struct {
	Name   string
	Method string
	// Pattern is the chi pattern relative to the controller, "" for its root.
	Pattern    string
	Summary    string
	Parameters []openapi.ParameterDescriptor
	Metadata   []openapi.ParameterMetadata
	Responses  []openapi.ResponseDescriptor
	Deprecated bool
	// Authorize requires an authenticated user. Roles additionally requires
	// each listed role.
	Authorize bool
	Roles     []auth.Role
	Handler   http.HandlerFunc
}

func (a Action) requiresAuth() bool {
	return a.Authorize || len(a.Roles) > 0
}

// Catalog holds the registered controllers. It is both the route table and
// the operation source of the document builder.
type Catalog struct {
	defaults    []versioning.Declaration
	controllers []Controller
}

// NewCatalog creates a catalog whose controllers default to defaults.
func NewCatalog(defaults []versioning.Declaration) *Catalog {
	return &Catalog{defaults: defaults}
}

// Add registers controllers in order.
func (c *Catalog) Add(controllers ...Controller) {
	c.controllers = append(c.controllers, controllers...)
}

func (c *Catalog) versions(ctrl Controller) []versioning.Declaration {
	if len(ctrl.Versions) == 0 {
		return c.defaults
	}

	return ctrl.Versions
}

// Declarations returns every version declaration of every controller.
func (c *Catalog) Declarations() []versioning.Declaration {
	var decls []versioning.Declaration

	for _, ctrl := range c.controllers {
		decls = append(decls, c.versions(ctrl)...)
	}

	return decls
}

// Source aggregates the declarations into the version descriptor source.
func (c *Catalog) Source() *versioning.Source {
	return versioning.NewSource(c.Declarations()...)
}

// Operations returns the operations served by one version, in registration
// order, with the version substituted into the path.
func (c *Catalog) Operations(d versioning.Descriptor) []openapi.OperationDescriptor {
	var ops []openapi.OperationDescriptor

	for _, ctrl := range c.controllers {
		decl, ok := declarationFor(c.versions(ctrl), d.Version)
		if !ok {
			continue
		}

		for _, a := range ctrl.Actions {
			responses := a.Responses
			if len(responses) == 0 {
				responses = []openapi.ResponseDescriptor{{Status: http.StatusOK}}
			}

			ops = append(ops, openapi.OperationDescriptor{
				RouteGroup:   ctrl.Name,
				ActionName:   a.Name,
				Method:       a.Method,
				Path:         documentPath(d, ctrl.Name, a.Pattern),
				Summary:      a.Summary,
				Parameters:   a.Parameters,
				Metadata:     a.Metadata,
				Responses:    responses,
				Deprecated:   a.Deprecated || decl.Deprecated,
				RequiresAuth: a.requiresAuth(),
			})
		}
	}

	return ops
}

// Mount registers every controller on r below RoutePrefix.
func (c *Catalog) Mount(r chi.Router, src *versioning.Source) {
	r.Route(RoutePrefix, func(r chi.Router) {
		r.Use(versioning.ReportVersions(src))

		for _, ctrl := range c.controllers {
			decls := c.versions(ctrl)
			allowed := make([]versioning.Version, 0, len(decls))

			for _, d := range decls {
				allowed = append(allowed, d.Version)
			}

			r.Route("/"+ctrl.Name, func(r chi.Router) {
				r.Use(versioning.RequireVersion(allowed))

				for _, a := range ctrl.Actions {
					r.Method(a.Method, routePattern(a.Pattern), authorize(a, a.Handler))
				}
			})
		}
	})
}

func authorize(a Action, h http.Handler) http.Handler {
	for i := len(a.Roles) - 1; i >= 0; i-- {
		h = auth.RequireRole(a.Roles[i])(h)
	}

	if a.requiresAuth() {
		h = auth.RequireAuthenticated()(h)
	}

	return h
}

func declarationFor(decls []versioning.Declaration, v versioning.Version) (versioning.Declaration, bool) {
	found := false
	out := versioning.Declaration{Version: v, Deprecated: true}

	for _, d := range decls {
		if d.Version == v {
			found = true
			out.Deprecated = out.Deprecated && d.Deprecated
		}
	}

	return out, found
}

func routePattern(pattern string) string {
	if pattern == "" {
		return "/"
	}

	return pattern
}

// chi parameters may carry a regexp ({id:[0-9]+}); OpenAPI paths only keep
// the name.
var paramRegexp = regexp.MustCompile(`\{([^}:]+):[^}]*\}`)

func documentPath(d versioning.Descriptor, controller, pattern string) string {
	path := "/api/" + d.GroupName + "/" + controller + strings.TrimRight(pattern, "/")

	return paramRegexp.ReplaceAllString(path, "{$1}")
}
