// Package api hosts the GlowingStore HTTP API.
//
// Controllers are registered in a Catalog and mounted below
// /api/v{version}/{controller}. The same catalog describes every operation to
// the OpenAPI builder, so each declared API version gets its own document,
// served at /swagger/v{version}/swagger.json and browsable through the
// Swagger UI at /swagger/index.html.
//
// Requests run through an explicit pipeline (see Server.Pipeline):
//
//	request-id -> real-ip -> request-logging -> recovery -> https-redirection
//	-> cors -> request-localization -> swagger-authentication
//	-> documentation | static-files -> authentication -> routing
//
// Optional stages are left out when their feature is disabled.
package api
