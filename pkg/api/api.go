package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/auth"
	"github.com/N1K0232/GlowingStoreApi/pkg/config"
	"github.com/N1K0232/GlowingStoreApi/pkg/localization"
	"github.com/N1K0232/GlowingStoreApi/pkg/metrics"
	"github.com/N1K0232/GlowingStoreApi/pkg/openapi"
	"github.com/N1K0232/GlowingStoreApi/pkg/pipeline"
	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server is the HTTP API server.
type Server interface {
	Start(ctx context.Context) error
	Stop() error

	// Handler is the complete request pipeline.
	Handler() http.Handler
	Pipeline() pipeline.Pipeline
	Registry() *openapi.Registry
}

// Dependencies are the services the server is built from.
type Dependencies struct {
	Auth      auth.Service
	Localizer *localization.Localizer
	Metrics   *metrics.Metrics
	// Now is the clock used for responses and document examples. Defaults to
	// time.Now.
	Now func() time.Time
}

// server implements Server.
type server struct {
	log       logrus.FieldLogger
	cfg       *config.Config
	auth      auth.Service
	localizer *localization.Localizer
	metrics   *metrics.Metrics
	now       func() time.Time

	catalog  *Catalog
	source   *versioning.Source
	registry *openapi.Registry
	docs     *openapi.Handler

	pipeline pipeline.Pipeline
	handler  http.Handler
	srv      *http.Server

	publicRateLimiter *IPRateLimiter
}

// Ensure server implements Server.
var _ Server = (*server)(nil)

// NewServer registers the controllers, builds one OpenAPI document per API
// version and assembles the request pipeline.
func NewServer(ctx context.Context, log logrus.FieldLogger, cfg *config.Config, deps Dependencies) (Server, error) {
	if deps.Auth == nil || deps.Localizer == nil || deps.Metrics == nil {
		return nil, errors.New("auth, localizer and metrics are required")
	}

	s := &server{
		log:       log.WithField("component", "api"),
		cfg:       cfg,
		auth:      deps.Auth,
		localizer: deps.Localizer,
		metrics:   deps.Metrics,
		now:       deps.Now,
	}

	if s.now == nil {
		s.now = time.Now
	}

	s.catalog = NewCatalog(cfg.Declarations())
	s.catalog.Add(s.controllers()...)
	s.source = s.catalog.Source()

	if err := s.buildDocuments(ctx); err != nil {
		return nil, err
	}

	// Initialize rate limiter if enabled.
	if rpm := cfg.Server.RateLimit.RequestsPerMinute; rpm > 0 {
		s.publicRateLimiter = NewIPRateLimiter(rpm)

		s.log.WithField("public_rpm", rpm).Info("Rate limiting enabled")
	}

	s.setupPipeline()

	return s, nil
}

func (s *server) buildDocuments(ctx context.Context) error {
	builder := openapi.NewBuilder(s.log, openapi.BuilderConfig{
		Info: openapi.AppInfo{
			Name:        s.cfg.App.ApplicationName,
			Description: s.cfg.App.ApplicationDescription,
		},
		Cultures: s.localizer.Cultures(),
		Now:      s.now,
	})

	registry, err := builder.Build(ctx, s.source, s.catalog)
	if err != nil {
		return fmt.Errorf("building openapi documents: %w", err)
	}

	for _, g := range registry.Groups() {
		s.metrics.RecordDocumentBuilt(g.Name, g.Deprecated)
	}

	s.metrics.SetDocumentCount(registry.Len())
	s.registry = registry

	return nil
}

// Start starts the HTTP server.
func (s *server) Start(_ context.Context) error {
	s.srv = &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.WithField("addr", s.cfg.Server.Listen).Info("Starting API server")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("Server error")
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *server) Stop() error {
	if s.publicRateLimiter != nil {
		s.publicRateLimiter.Stop()
	}

	if s.srv == nil {
		return nil
	}

	s.log.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

// Handler returns the request pipeline.
func (s *server) Handler() http.Handler {
	return s.handler
}

// Pipeline returns the ordered pipeline stages.
func (s *server) Pipeline() pipeline.Pipeline {
	return s.pipeline
}

// Registry returns the frozen document registry.
func (s *server) Registry() *openapi.Registry {
	return s.registry
}

func (s *server) setupPipeline() {
	swagger := s.cfg.Swagger

	s.docs = openapi.NewHandler(s.log, s.registry, openapi.HandlerConfig{
		DocsPrefix:     swagger.DocsPrefix,
		InstancePrefix: swagger.InstancePrefix,
		Title:          s.cfg.App.ApplicationName,
		Stylesheet:     swagger.Stylesheet,
		OnServe:        s.metrics.RecordDocumentRequest,
	})

	s.pipeline = pipeline.New(
		pipeline.Stage{Name: "request-id", Middleware: middleware.RequestID},
		pipeline.Stage{Name: "real-ip", Middleware: middleware.RealIP},
		pipeline.Stage{
			Name: "request-logging",
			Middleware: middleware.RequestLogger(&middleware.DefaultLogFormatter{
				Logger:  s.log.WithField("component", "http"),
				NoColor: true,
			}),
		},
		pipeline.Stage{Name: "recovery", Stops: "on panic, with 500", Middleware: middleware.Recoverer},
		pipeline.When(s.cfg.Server.HTTPSRedirection, pipeline.Stage{
			Name:       "https-redirection",
			Stops:      "plain HTTP requests, with 308",
			Middleware: httpsRedirect,
		}),
		pipeline.When(len(s.cfg.Server.CORSOrigins) > 0, pipeline.Stage{
			Name:       "cors",
			Stops:      "preflight requests, with 204",
			Middleware: corsMiddleware(s.cfg.Server.CORSOrigins),
		}),
		pipeline.Stage{Name: "request-localization", Middleware: s.localizer.Middleware},
		pipeline.When(swagger.Enabled, pipeline.Stage{
			Name:       "swagger-authentication",
			Stops:      "documentation requests without valid credentials, with 401",
			Middleware: auth.SwaggerMiddleware(swagger.Username, swagger.Password, s.docs.Matches),
		}),
		pipeline.When(swagger.Enabled, pipeline.Stage{
			Name:       "documentation",
			Stops:      "documentation routes",
			Middleware: s.documentation,
		}),
		pipeline.When(!swagger.Enabled, pipeline.Stage{
			Name:       "static-files",
			Stops:      "existing files below the static root",
			Middleware: staticFiles(s.cfg.Server.StaticRoot),
		}),
		pipeline.Stage{Name: "authentication", Middleware: auth.Middleware(s.auth)},
	)

	s.handler = s.pipeline.Then(s.router())

	s.log.WithField("pipeline", s.pipeline.Describe()).Info("Request pipeline assembled")
}

// router is the terminal stage: metrics, timeout, authorization and dispatch.
func (s *server) router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.metrics.Middleware)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Public endpoints with public rate limit.
	r.Group(func(r chi.Router) {
		if s.publicRateLimiter != nil {
			r.Use(s.publicRateLimiter.Middleware)
		}

		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", promhttp.Handler())
	})

	s.catalog.Mount(r, s.source)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, "The requested resource does not exist.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusMethodNotAllowed, "The method is not allowed for the requested resource.")
	})

	return r
}

// documentation answers documentation routes and passes everything else on.
func (s *server) documentation(next http.Handler) http.Handler {
	var docs http.Handler = s.docs
	if s.publicRateLimiter != nil {
		docs = s.publicRateLimiter.Middleware(docs)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.docs.Matches(r) {
			docs.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status   string        `json:"status"`
	Versions []HealthGroup `json:"versions"`
	Config   HealthConfig  `json:"config"`
}

// HealthGroup is one documented API version.
type HealthGroup struct {
	Name       string `json:"name"`
	Deprecated bool   `json:"deprecated"`
}

// HealthConfig contains public configuration information.
type HealthConfig struct {
	Swagger bool `json:"swagger"`
	Basic   bool `json:"basic"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	groups := s.registry.Groups()
	versions := make([]HealthGroup, 0, len(groups))

	for _, g := range groups {
		versions = append(versions, HealthGroup{Name: g.Name, Deprecated: g.Deprecated})
	}

	writeJSON(s.log, w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Versions: versions,
		Config: HealthConfig{
			Swagger: s.cfg.Swagger.Enabled,
			Basic:   s.cfg.Auth.Basic.Enabled,
		},
	})
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 1 && origins[0] == "*"

	originSet := make(map[string]bool, len(origins))
	for _, origin := range origins {
		originSet[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && (allowAll || originSet[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
				w.Header().Set("Access-Control-Expose-Headers",
					versioning.HeaderSupported+", "+versioning.HeaderDeprecated)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func httpsRedirect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSecureRequest(r) {
			next.ServeHTTP(w, r)

			return
		}

		http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusPermanentRedirect)
	})
}

// isSecureRequest checks if the request was made over HTTPS.
func isSecureRequest(r *http.Request) bool {
	// Check TLS directly.
	if r.TLS != nil {
		return true
	}

	// Check X-Forwarded-Proto header (common with reverse proxies).
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
