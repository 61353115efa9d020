package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

// DeprecatedSuffix is appended to the description of deprecated versions.
const DeprecatedSuffix = " This API version has been deprecated."

// AppInfo is the application name and description shown in every document.
type AppInfo struct {
	Name        string
	Description string
}

// Document is the OpenAPI document of one API version. It is built once at
// startup and never modified afterwards.
type Document struct {
	GroupName   string
	Title       string
	Version     string
	Description string
	Deprecated  bool

	Operations  []OperationDescriptor
	TypeSchemas map[string]*openapi3.Schema

	spec *openapi3.T
	data []byte
}

var _ swag.Swagger = (*Document)(nil)

// BuildDocument creates the document shell for a version descriptor.
func BuildDocument(d versioning.Descriptor, info AppInfo) *Document {
	doc := &Document{
		GroupName:   d.GroupName,
		Title:       info.Name,
		Version:     d.VersionString(),
		Description: info.Description,
		Deprecated:  d.Deprecated,
	}

	if d.Deprecated {
		doc.Description += DeprecatedSuffix
	}

	return doc
}

// OpenAPI returns the rendered document, or nil for a shell that was never built.
func (d *Document) OpenAPI() *openapi3.T {
	return d.spec
}

// MarshalJSON returns the rendered OpenAPI JSON. The caller owns the returned
// slice.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d.data != nil {
		return bytes.Clone(d.data), nil
	}

	if d.spec == nil {
		return nil, fmt.Errorf("document %s has not been rendered", d.GroupName)
	}

	return json.Marshal(d.spec)
}

// YAML returns the rendered document as YAML.
func (d *Document) YAML() ([]byte, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", d.GroupName, err)
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document %s as yaml: %w", d.GroupName, err)
	}

	return out, nil
}

// ReadDoc implements swag.Swagger.
func (d *Document) ReadDoc() string {
	data, err := d.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(data)
}

// render stores the final spec and its JSON encoding.
func (d *Document) render(spec *openapi3.T) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", d.GroupName, err)
	}

	d.spec = spec
	d.data = data

	return nil
}
