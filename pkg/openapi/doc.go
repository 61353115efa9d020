// Package openapi assembles one OpenAPI 3 document per API version.
//
// A Builder asks a VersionSource for the declared versions and an
// OperationSource for the operations each version serves. Every version gets a
// document shell from BuildDocument (title, version and description, with
// DeprecatedSuffix appended for deprecated versions). Operations pass through
// Enrich, which assigns "{routeGroup}_{actionName}" operation IDs and fills
// missing parameter descriptions from model metadata. The type schema
// overrides (DateTime, DateOnly, TimeSpan), a default ProblemDetails response
// and the Accept-Language header are added to every document.
//
// Finished documents are kept in a Registry keyed by group name ("v1"),
// published to swag as swag instances, and served by Handler:
//
//	/swagger/{group}/swagger.json
//	/swagger/{group}/swagger.yaml
//	/swagger/{group}/doc.json       the group's swag instance
//	/swagger/index.html             Swagger UI listing every version
//	/, /index.html                  redirect to the Swagger UI
//
// The registry is written only while building. Once Build freezes it, it is
// read-only and safe for concurrent readers.
package openapi
