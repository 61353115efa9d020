package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/N1K0232/GlowingStoreApi/pkg/auth"
	"github.com/N1K0232/GlowingStoreApi/pkg/localization"
	"github.com/N1K0232/GlowingStoreApi/pkg/openapi"
	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// StatusResponse is returned by status/Get.
type StatusResponse struct {
	ApplicationName string `json:"applicationName"`
	Description     string `json:"description,omitempty"`
	APIVersion      string `json:"apiVersion"`
	Culture         string `json:"culture"`
	ServerTime      Time   `json:"serverTime"`
}

// CultureResponse describes one supported culture.
type CultureResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	NativeName  string `json:"nativeName"`
	IsDefault   bool   `json:"isDefault"`
}

// AccountResponse describes the authenticated user.
type AccountResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Role        auth.Role   `json:"role"`
	IsAdmin     bool        `json:"isAdmin"`
	Permissions []auth.Role `json:"permissions"`
	CreatedAt   Time        `json:"createdAt"`
}

// controllers returns the controllers served by the API.
func (s *server) controllers() []Controller {
	problemResponse := func(status int) openapi.ResponseDescriptor {
		return openapi.ResponseDescriptor{Status: status, Schema: openapi.Ref(openapi.ProblemDetailsSchema)}
	}

	return []Controller{
		{
			Name: "status",
			Actions: []Action{
				{
					Name:    "Get",
					Method:  http.MethodGet,
					Summary: "Gets the application status",
					Responses: []openapi.ResponseDescriptor{
						{Status: http.StatusOK, Schema: statusSchema()},
					},
					Handler: s.handleStatus,
				},
			},
		},
		{
			Name: "cultures",
			Actions: []Action{
				{
					Name:    "List",
					Method:  http.MethodGet,
					Summary: "Lists the supported cultures",
					Parameters: []openapi.ParameterDescriptor{
						{
							Name:             "prefix",
							In:               openapi.InQuery,
							Type:             "string",
							ModelDescription: "Only cultures whose name starts with this value are returned.",
						},
					},
					Responses: []openapi.ResponseDescriptor{
						{
							Status: http.StatusOK,
							Schema: openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(cultureSchema())),
						},
					},
					Handler: s.handleListCultures,
				},
				{
					Name:    "GetByName",
					Method:  http.MethodGet,
					Pattern: "/{name}",
					Summary: "Gets a supported culture by name",
					Parameters: []openapi.ParameterDescriptor{
						{Name: "name", In: openapi.InPath, Type: "string", Required: true},
					},
					Metadata: []openapi.ParameterMetadata{
						{Name: "name", Description: "The culture name, for example it-IT."},
					},
					Responses: []openapi.ResponseDescriptor{
						{Status: http.StatusOK, Schema: openapi3.NewSchemaRef("", cultureSchema())},
						problemResponse(http.StatusNotFound),
					},
					Handler: s.handleGetCulture,
				},
			},
		},
		{
			Name: "account",
			Actions: []Action{
				{
					Name:      "Me",
					Method:    http.MethodGet,
					Summary:   "Gets the authenticated user",
					Authorize: true,
					Responses: []openapi.ResponseDescriptor{
						{Status: http.StatusOK, Schema: accountSchema()},
						problemResponse(http.StatusUnauthorized),
					},
					Handler: s.handleMe,
				},
			},
		},
	}
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		ApplicationName: s.cfg.App.ApplicationName,
		Description:     s.cfg.App.ApplicationDescription,
		Culture:         s.culture(r),
		ServerTime:      Time(s.now()),
	}

	if v, ok := versioning.VersionFromContext(r.Context()); ok {
		resp.APIVersion = v.String()
	}

	writeJSON(s.log, w, http.StatusOK, resp)
}

func (s *server) handleListCultures(w http.ResponseWriter, r *http.Request) {
	prefix := strings.ToLower(r.URL.Query().Get("prefix"))
	requested := s.culture(r)

	cultures := make([]CultureResponse, 0)

	for _, name := range s.localizer.Cultures() {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}

		cultures = append(cultures, s.describeCulture(name, requested))
	}

	writeJSON(s.log, w, http.StatusOK, cultures)
}

func (s *server) handleGetCulture(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "name")

	name, ok := s.localizer.Supported(raw)
	if !ok {
		problem.New(r, http.StatusNotFound, fmt.Sprintf("The culture %q is not supported.", raw)).
			WithError("name", "Supported cultures are "+strings.Join(s.localizer.Cultures(), ", ")+".").
			Write(w)

		return
	}

	writeJSON(s.log, w, http.StatusOK, s.describeCulture(name, s.culture(r)))
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, "Not authenticated.")

		return
	}

	permissions := make([]auth.Role, 0, len(auth.Roles()))

	for _, role := range auth.Roles() {
		if s.auth.HasRole(user, role) {
			permissions = append(permissions, role)
		}
	}

	writeJSON(s.log, w, http.StatusOK, AccountResponse{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		IsAdmin:     s.auth.IsAdmin(user),
		Permissions: permissions,
		CreatedAt:   Time(user.CreatedAt),
	})
}

func (s *server) culture(r *http.Request) string {
	if c := localization.CultureFromContext(r.Context()); c != "" {
		return c
	}

	return s.localizer.Default()
}

func (s *server) describeCulture(name, requested string) CultureResponse {
	tag := language.Make(name)

	return CultureResponse{
		Name:        name,
		DisplayName: display.Tags(language.Make(requested)).Name(tag),
		NativeName:  display.Self.Name(tag),
		IsDefault:   name == s.localizer.Default(),
	}
}

func statusSchema() *openapi3.SchemaRef {
	schema := openapi3.NewObjectSchema().
		WithProperty("applicationName", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("apiVersion", openapi3.NewStringSchema()).
		WithProperty("culture", openapi3.NewStringSchema()).
		WithPropertyRef("serverTime", openapi.Ref(openapi.TypeDateTime))
	schema.Required = []string{"applicationName", "apiVersion", "culture", "serverTime"}

	return openapi3.NewSchemaRef("", schema)
}

func cultureSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("displayName", openapi3.NewStringSchema()).
		WithProperty("nativeName", openapi3.NewStringSchema()).
		WithProperty("isDefault", openapi3.NewBoolSchema())
	schema.Required = []string{"name", "displayName", "nativeName", "isDefault"}

	return schema
}

func accountSchema() *openapi3.SchemaRef {
	role := openapi3.NewStringSchema()
	for _, r := range auth.Roles() {
		role.Enum = append(role.Enum, string(r))
	}

	schema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("role", role).
		WithProperty("isAdmin", openapi3.NewBoolSchema()).
		WithProperty("permissions", openapi3.NewArraySchema().WithItems(role)).
		WithPropertyRef("createdAt", openapi.Ref(openapi.TypeDateTime))
	schema.Required = []string{"id", "username", "role", "isAdmin", "permissions", "createdAt"}

	return openapi3.NewSchemaRef("", schema)
}
