package openapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/sirupsen/logrus"
)

// SecuritySchemeBasic is the security scheme used by operations requiring auth.
const SecuritySchemeBasic = "basic"

// VersionSource enumerates the declared API versions.
type VersionSource interface {
	ListVersions() []versioning.Descriptor
}

// OperationSource lists the operations served by one API version.
type OperationSource interface {
	Operations(d versioning.Descriptor) []OperationDescriptor
}

// BuilderConfig holds the settings applied to every document.
type BuilderConfig struct {
	Info AppInfo
	// Cultures populates the Accept-Language header parameter. The first
	// entry is the default; no parameter is added when empty.
	Cultures []string
	// Now provides the date examples. Defaults to time.Now.
	Now func() time.Time
}

// Builder produces one document per API version.
type Builder struct {
	log logrus.FieldLogger
	cfg BuilderConfig
}

// NewBuilder creates a document builder.
func NewBuilder(log logrus.FieldLogger, cfg BuilderConfig) *Builder {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Builder{
		log: log.WithField("component", "openapi_builder"),
		cfg: cfg,
	}
}

// Build builds and registers a document for every version, then freezes the
// registry. A duplicate group name aborts the build.
func (b *Builder) Build(ctx context.Context, versions VersionSource, ops OperationSource) (*Registry, error) {
	reg := NewRegistry(b.log)

	for _, d := range versions.ListVersions() {
		doc, err := b.BuildVersion(ctx, d, ops.Operations(d))
		if err != nil {
			return nil, err
		}

		if err := reg.Register(d.GroupName, doc); err != nil {
			return nil, fmt.Errorf("registering document: %w", err)
		}

		b.log.WithFields(logrus.Fields{
			"group":      d.GroupName,
			"version":    doc.Version,
			"deprecated": doc.Deprecated,
			"operations": len(doc.Operations),
		}).Info("Built OpenAPI document")
	}

	reg.Freeze()

	return reg, nil
}

// BuildVersion builds the complete document for one version.
func (b *Builder) BuildVersion(ctx context.Context, d versioning.Descriptor, ops []OperationDescriptor) (*Document, error) {
	doc := BuildDocument(d, b.cfg.Info)
	doc.TypeSchemas = TypeSchemas(b.cfg.Now())
	doc.Operations = make([]OperationDescriptor, 0, len(ops))

	for _, op := range ops {
		doc.Operations = append(doc.Operations, Enrich(op))
	}

	spec := b.render(doc)

	if err := spec.Validate(ctx); err != nil {
		b.log.WithError(err).WithField("group", d.GroupName).Warn("OpenAPI document failed validation")
	}

	if err := doc.render(spec); err != nil {
		return nil, err
	}

	return doc, nil
}

func (b *Builder) render(doc *Document) *openapi3.T {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       doc.Title,
			Description: doc.Description,
			Version:     doc.Version,
		},
		Paths: openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				ProblemDetailsSchema: openapi3.NewSchemaRef("", problemDetails()),
			},
		},
	}

	for _, name := range sortedKeys(doc.TypeSchemas) {
		spec.Components.Schemas[name] = openapi3.NewSchemaRef("", doc.TypeSchemas[name])
	}

	secured := false

	for _, op := range doc.Operations {
		spec.AddOperation(op.Path, strings.ToUpper(op.Method), b.operation(op, doc.TypeSchemas))

		secured = secured || op.RequiresAuth
	}

	if secured {
		spec.Components.SecuritySchemes = openapi3.SecuritySchemes{
			SecuritySchemeBasic: &openapi3.SecuritySchemeRef{
				Value: &openapi3.SecurityScheme{Type: "http", Scheme: "basic"},
			},
		}
	}

	return spec
}

func (b *Builder) operation(op OperationDescriptor, overrides map[string]*openapi3.Schema) *openapi3.Operation {
	out := &openapi3.Operation{
		Tags:        []string{op.RouteGroup},
		Summary:     op.Summary,
		OperationID: op.OperationID,
		Deprecated:  op.Deprecated,
		Responses:   openapi3.Responses{},
	}

	for _, p := range op.Parameters {
		out.Parameters = append(out.Parameters, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:        p.Name,
				In:          p.In,
				Description: p.Description,
				Required:    p.Required || p.In == InPath,
				Schema:      parameterSchema(p.Type, overrides),
			},
		})
	}

	if header := b.acceptLanguage(); header != nil {
		out.Parameters = append(out.Parameters, &openapi3.ParameterRef{Value: header})
	}

	for _, r := range op.Responses {
		desc := r.Description
		if desc == "" {
			desc = http.StatusText(r.Status)
		}

		resp := openapi3.NewResponse().WithDescription(desc)
		if r.Schema != nil {
			resp.Content = openapi3.NewContentWithJSONSchemaRef(r.Schema)
		}

		out.Responses[strconv.Itoa(r.Status)] = &openapi3.ResponseRef{Value: resp}
	}

	problem := openapi3.NewResponse().WithDescription("Error")
	problem.Content = openapi3.Content{
		"application/problem+json": openapi3.NewMediaType().WithSchemaRef(Ref(ProblemDetailsSchema)),
	}
	out.Responses["default"] = &openapi3.ResponseRef{Value: problem}

	if op.RequiresAuth {
		out.Security = &openapi3.SecurityRequirements{
			openapi3.SecurityRequirement{SecuritySchemeBasic: []string{}},
		}
	}

	return out
}

func (b *Builder) acceptLanguage() *openapi3.Parameter {
	if len(b.cfg.Cultures) == 0 {
		return nil
	}

	schema := openapi3.NewStringSchema()
	schema.Default = b.cfg.Cultures[0]

	for _, c := range b.cfg.Cultures {
		schema.Enum = append(schema.Enum, c)
	}

	return &openapi3.Parameter{
		Name:        "Accept-Language",
		In:          InHeader,
		Description: "The culture used to localize the response.",
		Schema:      openapi3.NewSchemaRef("", schema),
	}
}

func sortedKeys(m map[string]*openapi3.Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
