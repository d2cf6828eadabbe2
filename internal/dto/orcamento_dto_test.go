package dto

import (
	"encoding/json"
	"testing"

	"orcamentos/internal/tamanho"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantidade_CoercesUserInput(t *testing.T) {
	var req ItemRequest
	body := `{"produto_id":"x","tamanhos":{"p":"2","M":5,"G":"abc","GG":-3,"G1":2.9,"G2":null},"quantidade":"7"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, Quantidade(7), req.Quantidade)
	assert.Equal(t, Quantidade(2), req.Tamanhos["p"])
	assert.Equal(t, Quantidade(5), req.Tamanhos["M"])
	assert.Equal(t, Quantidade(0), req.Tamanhos["G"])
	assert.Equal(t, Quantidade(0), req.Tamanhos["GG"])
	assert.Equal(t, Quantidade(2), req.Tamanhos["G1"])
	assert.Equal(t, Quantidade(0), req.Tamanhos["G2"])
}

func TestMapaQuantidades(t *testing.T) {
	assert.Nil(t, MapaQuantidades(nil))

	q := MapaQuantidades(map[string]Quantidade{"p": 2, "M": 5, "G": 3})
	assert.Equal(t, tamanho.Quantidades{"P": 2, "M": 5, "G": 3}, q)
	assert.Equal(t, 10, q.Total())
}
