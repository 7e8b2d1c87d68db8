// Package api: встроенный OpenAPI-документ, который отдаётся под /swagger.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
