package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"orcamentos/internal/textnorm"
)

// Status is the workflow stage of a quotation. Codes descend as the order
// advances; any code may be assigned at any time.
type Status int

const (
	StatusFinalizado            Status = 1
	StatusEntregue              Status = 2
	StatusAguardandoFaturamento Status = 3
	StatusEmProducao            Status = 4
	StatusProposta              Status = 5
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusProposta,
	StatusEmProducao,
	StatusAguardandoFaturamento,
	StatusEntregue,
	StatusFinalizado,
}

var rotulos = map[Status]string{
	StatusProposta:              "Proposta",
	StatusEmProducao:            "Em produção",
	StatusAguardandoFaturamento: "Aguardando faturamento",
	StatusEntregue:              "Entregue",
	StatusFinalizado:            "Finalizado",
}

// legado maps the free-form strings found in older records. Keys are
// normalized with textnorm.
var legado = map[string]Status{
	"proposta":               StatusProposta,
	"orcamento":              StatusProposta,
	"execucao":               StatusEmProducao,
	"em execucao":            StatusEmProducao,
	"producao":               StatusEmProducao,
	"em producao":            StatusEmProducao,
	"faturamento":            StatusAguardandoFaturamento,
	"aguardando faturamento": StatusAguardandoFaturamento,
	"entregue":               StatusEntregue,
	"entrega":                StatusEntregue,
	"finalizado":             StatusFinalizado,
	"concluido":              StatusFinalizado,
}

func (s Status) Valido() bool {
	_, ok := rotulos[s]
	return ok
}

func (s Status) String() string {
	if r, ok := rotulos[s]; ok {
		return r
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus accepts a numeric code ("5") or a legacy/label string
// ("execucao", "Em produção").
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if s := Status(n); s.Valido() {
			return s, nil
		}
		return 0, fmt.Errorf("status desconhecido: %q", raw)
	}
	if s, ok := legado[textnorm.Normalizar(raw)]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("status desconhecido: %q", raw)
}

// UnmarshalJSON accepts either a JSON number or a string.
func (s *Status) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		v := Status(n)
		if !v.Valido() {
			return fmt.Errorf("status desconhecido: %d", n)
		}
		*s = v
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	v, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
