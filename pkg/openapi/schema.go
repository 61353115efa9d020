package openapi

import (
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// Names of the type schema overrides registered in every document.
const (
	TypeDateTime = "DateTime"
	TypeDateOnly = "DateOnly"
	TypeTimeSpan = "TimeSpan"

	// ProblemDetailsSchema is the component used by the default response.
	ProblemDetailsSchema = "ProblemDetails"
)

// Example layouts for date values.
const (
	DateTimeLayout = "2006-01-02T15:04:05Z"
	DateOnlyLayout = "2006-01-02"
)

const componentPrefix = "#/components/schemas/"

// TypeSchemas returns the type schema overrides with examples taken from now.
func TypeSchemas(now time.Time) map[string]*openapi3.Schema {
	utc := now.UTC()

	dateTime := openapi3.NewDateTimeSchema()
	dateTime.Example = utc.Format(DateTimeLayout)

	date := openapi3.NewStringSchema()
	date.Format = "date"
	date.Example = utc.Format(DateOnlyLayout)

	span := openapi3.NewStringSchema()
	span.Example = "02:00:00"

	return map[string]*openapi3.Schema{
		TypeDateTime: dateTime,
		TypeDateOnly: date,
		TypeTimeSpan: span,
	}
}

// Ref returns a reference to a component schema. Override types carry a
// value without example so the reference validates on its own.
func Ref(name string) *openapi3.SchemaRef {
	var value *openapi3.Schema

	switch name {
	case TypeDateTime:
		value = openapi3.NewDateTimeSchema()
	case TypeDateOnly:
		value = openapi3.NewStringSchema()
		value.Format = "date"
	case TypeTimeSpan:
		value = openapi3.NewStringSchema()
	case ProblemDetailsSchema:
		value = problemDetails()
	default:
		value = openapi3.NewObjectSchema()
	}

	return openapi3.NewSchemaRef(componentPrefix+name, value)
}

// parameterSchema returns the schema for a parameter type.
func parameterSchema(typ string, overrides map[string]*openapi3.Schema) *openapi3.SchemaRef {
	if _, ok := overrides[typ]; ok {
		return Ref(typ)
	}

	switch typ {
	case "integer":
		return openapi3.NewSchemaRef("", openapi3.NewIntegerSchema())
	case "number":
		return openapi3.NewSchemaRef("", openapi3.NewFloat64Schema())
	case "boolean":
		return openapi3.NewSchemaRef("", openapi3.NewBoolSchema())
	default:
		return openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	}
}

func problemDetails() *openapi3.Schema {
	errItem := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema())

	s := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewInt32Schema()).
		WithProperty("detail", openapi3.NewStringSchema()).
		WithProperty("instance", openapi3.NewStringSchema()).
		WithProperty("traceId", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("errors", openapi3.NewArraySchema().WithItems(errItem))
	s.Required = []string{"title", "status"}

	return s
}
