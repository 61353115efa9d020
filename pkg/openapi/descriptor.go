package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Parameter locations.
const (
	InPath   = openapi3.ParameterInPath
	InQuery  = openapi3.ParameterInQuery
	InHeader = openapi3.ParameterInHeader
)

// ParameterDescriptor describes one operation parameter.
type ParameterDescriptor struct {
	Name             string
	In               string
	Description      string
	ModelDescription string
	// Type is a primitive ("string", "integer", "number", "boolean") or the
	// name of a type schema override such as TypeDateTime.
	Type     string
	Required bool
}

// ParameterMetadata is a parameter description taken from the bound model.
type ParameterMetadata struct {
	Name        string
	Description string
}

// ResponseDescriptor describes one response of an operation.
type ResponseDescriptor struct {
	Status      int
	Description string
	Schema      *openapi3.SchemaRef
}

// OperationDescriptor describes one route exposed by one API version.
type OperationDescriptor struct {
	RouteGroup string
	ActionName string
	Method     string
	// Path is the OpenAPI path with the version already substituted.
	Path    string
	Summary string

	Parameters []ParameterDescriptor
	// Metadata holds the descriptions visible for the operation's parameters,
	// matched by exact name.
	Metadata  []ParameterMetadata
	Responses []ResponseDescriptor

	Deprecated   bool
	RequiresAuth bool

	// OperationID is assigned by Enrich.
	OperationID string
}
