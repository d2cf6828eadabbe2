package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"5":                      StatusProposta,
		" 4 ":                    StatusEmProducao,
		"proposta":               StatusProposta,
		"execucao":               StatusEmProducao,
		"Execução":               StatusEmProducao,
		"Em produção":            StatusEmProducao,
		"FATURAMENTO":            StatusAguardandoFaturamento,
		"Aguardando faturamento": StatusAguardandoFaturamento,
		"entregue":               StatusEntregue,
		"finalizado":             StatusFinalizado,
		"1":                      StatusFinalizado,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0", "6", "cancelado"} {
		_, err := ParseStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestStatus_UnmarshalJSON(t *testing.T) {
	var body struct {
		Status Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":3}`), &body))
	assert.Equal(t, StatusAguardandoFaturamento, body.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"status":"producao"}`), &body))
	assert.Equal(t, StatusEmProducao, body.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":9}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"x"}`), &body))
}

func TestStatus_MarshalsAsCode(t *testing.T) {
	b, err := json.Marshal(struct {
		S Status `json:"s"`
	}{StatusEntregue})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":2}`, string(b))
	assert.Equal(t, "Entregue", StatusEntregue.String())
}

func TestItemOrcamento_Totals(t *testing.T) {
	item := ItemOrcamento{Quantidade: 99}
	item.Tamanhos = map[string]int{"P": 2, "M": 5, "G": 3}
	item.RecalcularQuantidade()
	assert.Equal(t, 10, item.Quantidade)

	empty := ItemOrcamento{Quantidade: 7}
	empty.RecalcularQuantidade()
	assert.Equal(t, 7, empty.Quantidade, "no size map keeps the typed quantity")
}
