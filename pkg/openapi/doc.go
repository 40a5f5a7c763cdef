// Package openapi exposes the public contract for importing OpenAPI component
// schemas as JSON Schema documents. The kin-openapi backed implementation lives
// under internal/openapi so the dependency stays hidden from consumers.
package openapi
