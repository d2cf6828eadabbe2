// Package docs registers the OpenAPI description of the HTTP API so the
// Swagger UI can serve it at /swagger/doc.json.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openapi string

type documento struct{}

func (documento) ReadDoc() string { return openapi }

func init() {
	swag.Register(swag.Name, documento{})
}
