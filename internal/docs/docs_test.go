package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocumentoRegistrado(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		OpenAPI string                            `json:"openapi"`
		Paths   map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)

	for path, metodo := range map[string]string{
		"/v1/orcamentos":                      "post",
		"/v1/orcamentos/{id}/itens/{itemId}":  "patch",
		"/v1/orcamentos/{id}/pdf":             "get",
		"/v1/assistente/acoes":                "post",
		"/v1/assistente/confirmacoes/{token}": "post",
		"/v1/auth/login":                      "post",
	} {
		require.Contains(t, doc.Paths, path)
		assert.Contains(t, doc.Paths[path], metodo, path)
	}
}
