package versioning

import (
	"context"
	"net/http"
	"strings"

	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
	"github.com/go-chi/chi/v5"
)

// RouteParam is the chi URL parameter holding the requested version.
const RouteParam = "version"

// Response headers reporting the available versions.
const (
	HeaderSupported  = "api-supported-versions"
	HeaderDeprecated = "api-deprecated-versions"
)

type contextKey string

const versionContextKey contextKey = "api-version"

// VersionFromContext returns the version resolved for the request.
func VersionFromContext(ctx context.Context) (Version, bool) {
	v, ok := ctx.Value(versionContextKey).(Version)

	return v, ok
}

// ContextWithVersion stores v in ctx.
func ContextWithVersion(ctx context.Context, v Version) context.Context {
	return context.WithValue(ctx, versionContextKey, v)
}

// ReportVersions adds the supported and deprecated version headers to every response.
func ReportVersions(src *Source) func(http.Handler) http.Handler {
	supported := joinVersions(src.Supported())
	deprecated := joinVersions(src.Deprecated())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if supported != "" {
				w.Header().Set(HeaderSupported, supported)
			}

			if deprecated != "" {
				w.Header().Set(HeaderDeprecated, deprecated)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireVersion rejects requests whose {version} route parameter is not one
// of the allowed versions.
func RequireVersion(allowed []Version) func(http.Handler) http.Handler {
	set := make(map[string]Version, len(allowed)*2)
	for _, v := range allowed {
		set[v.URLSegment()] = v
		set[v.String()] = v
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, RouteParam)

			v, ok := set[raw]
			if !ok {
				if parsed, err := ParseVersion(raw); err == nil {
					v, ok = set[parsed.URLSegment()]
				}
			}

			if !ok {
				problem.New(r, http.StatusBadRequest,
					"The HTTP resource that matches the request URI '"+r.URL.Path+"' does not support the API version '"+raw+"'.").
					WithCode("UnsupportedApiVersion").
					Write(w)

				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithVersion(r.Context(), v)))
		})
	}
}

func joinVersions(vs []Version) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.String())
	}

	return strings.Join(parts, ", ")
}
