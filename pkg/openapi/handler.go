package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UnknownGroup is the group reported to OnServe for requests naming a group
// that has no document.
const UnknownGroup = "unknown"

// HandlerConfig configures the documentation endpoints.
type HandlerConfig struct {
	// DocsPrefix is where documents and the UI are served (default "/swagger"):
	// <DocsPrefix>/{group}/swagger.json, <DocsPrefix>/{group}/swagger.yaml,
	// <DocsPrefix>/{group}/doc.json and <DocsPrefix>/index.html.
	DocsPrefix string

	// InstancePrefix prefixes the swag instance name of every group.
	InstancePrefix string

	// Title overrides the UI page title.
	Title string

	// Stylesheet is an extra stylesheet injected into the UI page.
	Stylesheet string

	// OnServe is called after each document request with the group and status.
	OnServe func(group string, status int)
}

// Handler serves the registered documents and the Swagger UI.
type Handler struct {
	chi.Router

	log      logrus.FieldLogger
	registry *Registry
	cfg      HandlerConfig

	// swag serves <DocsPrefix>/{group}/doc.json from the published instance.
	swag map[string]http.Handler
}

// NewHandler publishes the registry to swag and creates the documentation
// router. The registry must be frozen.
func NewHandler(log logrus.FieldLogger, registry *Registry, cfg HandlerConfig) *Handler {
	cfg.DocsPrefix = strings.TrimRight(cfg.DocsPrefix, "/")
	if cfg.DocsPrefix == "" {
		cfg.DocsPrefix = "/swagger"
	}

	h := &Handler{
		Router:   chi.NewRouter(),
		log:      log.WithField("component", "openapi_handler"),
		registry: registry,
		cfg:      cfg,
		swag:     make(map[string]http.Handler, registry.Len()),
	}

	instances := registry.Publish(cfg.InstancePrefix)
	for _, g := range registry.Groups() {
		h.swag[g.Name] = httpSwagger.Handler(httpSwagger.InstanceName(h.instance(g.Name)))
	}

	h.log.WithField("instances", instances).Debug("Published OpenAPI documents to swag")

	h.Get(cfg.DocsPrefix+"/{group}/swagger.json", h.handleJSON)
	h.Get(cfg.DocsPrefix+"/{group}/swagger.yaml", h.handleYAML)
	h.Get(cfg.DocsPrefix+"/{group}/doc.json", h.handleSwagDoc)
	h.Get(cfg.DocsPrefix+"/*", httpSwagger.Handler(h.uiOptions()...))

	h.Get(cfg.DocsPrefix, h.redirectToUI)
	h.Get("/", h.redirectToUI)
	h.Get("/index.html", h.redirectToUI)

	return h
}

// Matches reports whether the request targets a documentation route.
func (h *Handler) Matches(r *http.Request) bool {
	return h.Match(chi.NewRouteContext(), r.Method, r.URL.Path)
}

// DocumentURL returns the JSON path of a group's document.
func (h *Handler) DocumentURL(group string) string {
	return h.cfg.DocsPrefix + "/" + group + "/swagger.json"
}

// UIURL returns the path of the Swagger UI page.
func (h *Handler) UIURL() string {
	return h.cfg.DocsPrefix + "/index.html"
}

func (h *Handler) instance(group string) string {
	return h.cfg.InstancePrefix + group
}

func (h *Handler) handleJSON(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	doc, ok := h.lookup(w, r, group)
	if !ok {
		return
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		h.fail(w, r, group, err)

		return
	}

	h.write(w, group, "application/json", data)
}

func (h *Handler) handleYAML(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	doc, ok := h.lookup(w, r, group)
	if !ok {
		return
	}

	data, err := doc.YAML()
	if err != nil {
		h.fail(w, r, group, err)

		return
	}

	h.write(w, group, "application/x-yaml", data)
}

func (h *Handler) handleSwagDoc(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	if _, ok := h.lookup(w, r, group); !ok {
		return
	}

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	h.swag[group].ServeHTTP(ww, r)

	h.observe(group, ww.Status())
}

func (h *Handler) redirectToUI(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.UIURL(), http.StatusMovedPermanently)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, group string) (*Document, bool) {
	doc, err := h.registry.Get(group)
	if errors.Is(err, ErrDocumentNotFound) {
		problem.Write(w, r, http.StatusNotFound, fmt.Sprintf("No OpenAPI document exists for %q.", group))
		h.observe(UnknownGroup, http.StatusNotFound)

		return nil, false
	}

	if err != nil {
		h.fail(w, r, UnknownGroup, err)

		return nil, false
	}

	return doc, true
}

func (h *Handler) write(w http.ResponseWriter, group, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)

	h.observe(group, http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, group string, err error) {
	h.log.WithError(err).WithField("group", group).Error("Failed to serve OpenAPI document")
	problem.Write(w, r, http.StatusInternalServerError, "The OpenAPI document could not be serialized.")
	h.observe(group, http.StatusInternalServerError)
}

func (h *Handler) observe(group string, status int) {
	if h.cfg.OnServe != nil {
		h.cfg.OnServe(group, status)
	}
}

type uiURL struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// uiOptions configures the Swagger UI: the first group is opened by default
// and every group is listed in the version dropdown, deprecated ones labelled.
func (h *Handler) uiOptions() []func(*httpSwagger.Config) {
	groups := h.registry.Groups()
	urls := make([]uiURL, 0, len(groups))
	title := h.cfg.Title

	for _, g := range groups {
		name := g.Name
		if g.Deprecated {
			name += " (deprecated)"
		}

		urls = append(urls, uiURL{URL: h.DocumentURL(g.Name), Name: name})

		if title == "" {
			if doc, err := h.registry.Get(g.Name); err == nil {
				title = doc.Title
			}
		}
	}

	if title == "" {
		title = "API documentation"
	}

	opts := []func(*httpSwagger.Config){
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.UIConfig(map[string]string{
			"urls":       jsLiteral(urls),
			"onComplete": h.onComplete(title),
		}),
	}

	if len(groups) > 0 {
		opts = append(opts,
			httpSwagger.URL(h.DocumentURL(groups[0].Name)),
			httpSwagger.InstanceName(h.instance(groups[0].Name)),
		)
	}

	return opts
}

// onComplete sets the page title and injects the configured stylesheet once
// the UI has rendered.
func (h *Handler) onComplete(title string) string {
	var sb strings.Builder

	sb.WriteString("function() {\n")
	sb.WriteString("      document.title = " + jsLiteral(title) + ";\n")

	if h.cfg.Stylesheet != "" {
		sb.WriteString("      const link = document.createElement(\"link\");\n")
		sb.WriteString("      link.rel = \"stylesheet\";\n")
		sb.WriteString("      link.href = " + jsLiteral(h.cfg.Stylesheet) + ";\n")
		sb.WriteString("      document.head.appendChild(link);\n")
	}

	sb.WriteString("    }")

	return sb.String()
}

// jsLiteral encodes v as a JavaScript literal. json.Marshal escapes <, > and
// &, so the result is safe inside a script element.
func jsLiteral(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}

	return string(data)
}
