package dto

import (
	"encoding/json"
	"time"

	"orcamentos/internal/model"
	"orcamentos/internal/tamanho"

	"github.com/shopspring/decimal"
)

// Quantidade decodes a size quantity typed by a user. Numbers and numeric
// strings are accepted; anything invalid or negative becomes 0.
type Quantidade int

func (q *Quantidade) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		raw = string(b)
	}
	*q = Quantidade(tamanho.Coagir(raw))
	return nil
}

// MapaQuantidades converts the request map into the stored representation.
func MapaQuantidades(m map[string]Quantidade) tamanho.Quantidades {
	if m == nil {
		return nil
	}
	out := make(tamanho.Quantidades, len(m))
	for k, v := range m {
		out.Definir(k, int(v))
	}
	return out
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EstampaRequest struct {
	Posicao string `json:"posicao" validate:"max=120"`
	Tecnica string `json:"tecnica" validate:"max=120"`
	Largura string `json:"largura" validate:"max=40"`
}

type ItemRequest struct {
	ProdutoID           string                `json:"produto_id"           validate:"required,uuid"`
	PrecoUnitario       *decimal.Decimal      `json:"preco_unitario"`
	TecidoNome          *string               `json:"tecido_nome"          validate:"omitempty,max=120"`
	TecidoComposicao    *string               `json:"tecido_composicao"    validate:"omitempty,max=200"`
	Cor                 *string               `json:"cor"                  validate:"omitempty,max=60"`
	Tamanhos            map[string]Quantidade `json:"tamanhos"`
	Quantidade          Quantidade            `json:"quantidade"`
	Imagem              *string               `json:"imagem"` // base64, optionally a data: URL
	ObservacaoComercial string                `json:"observacao_comercial" validate:"max=2000"`
	ObservacaoTecnica   string                `json:"observacao_tecnica"   validate:"max=2000"`
	Estampas            []EstampaRequest      `json:"estampas"             validate:"omitempty,dive"`
}

// AtualizarItemRequest patches an item; absent fields are left untouched.
type AtualizarItemRequest struct {
	PrecoUnitario       *decimal.Decimal      `json:"preco_unitario"`
	TecidoNome          *string               `json:"tecido_nome"          validate:"omitempty,max=120"`
	TecidoComposicao    *string               `json:"tecido_composicao"    validate:"omitempty,max=200"`
	Cor                 *string               `json:"cor"                  validate:"omitempty,max=60"`
	Tamanhos            map[string]Quantidade `json:"tamanhos"`
	Quantidade          *Quantidade           `json:"quantidade"`
	Imagem              *string               `json:"imagem"`
	ObservacaoComercial *string               `json:"observacao_comercial" validate:"omitempty,max=2000"`
	ObservacaoTecnica   *string               `json:"observacao_tecnica"   validate:"omitempty,max=2000"`
	Estampas            *[]EstampaRequest     `json:"estampas"             validate:"omitempty,dive"`
}

type CriarOrcamentoRequest struct {
	ClienteID          *string          `json:"cliente_id"          validate:"omitempty,uuid"`
	DataEmissao        *time.Time       `json:"data_emissao"`
	Observacoes        string           `json:"observacoes"         validate:"max=4000"`
	CondicoesPagamento string           `json:"condicoes_pagamento" validate:"max=500"`
	PrazoEntrega       string           `json:"prazo_entrega"       validate:"max=200"`
	Validade           string           `json:"validade"            validate:"max=200"`
	Frete              *decimal.Decimal `json:"frete"`
	Status             *model.Status    `json:"status"`
	Itens              []ItemRequest    `json:"itens"               validate:"omitempty,dive"`
}

// AtualizarOrcamentoRequest edits the header fields. Items have their own endpoints.
type AtualizarOrcamentoRequest struct {
	DataEmissao        *time.Time       `json:"data_emissao"`
	Observacoes        *string          `json:"observacoes"         validate:"omitempty,max=4000"`
	CondicoesPagamento *string          `json:"condicoes_pagamento" validate:"omitempty,max=500"`
	PrazoEntrega       *string          `json:"prazo_entrega"       validate:"omitempty,max=200"`
	Validade           *string          `json:"validade"            validate:"omitempty,max=200"`
	Frete              *decimal.Decimal `json:"frete"`
	RemoverFrete       bool             `json:"remover_frete"`
}

type StatusRequest struct {
	Status model.Status `json:"status" validate:"required"`
}

type DefinirClienteRequest struct {
	ClienteID string `json:"cliente_id" validate:"required,uuid"`
}

// MoverItemRequest drops origem before destino, or at the end when Fim is set.
type MoverItemRequest struct {
	OrigemID  string `json:"origem_id"  validate:"required,uuid"`
	DestinoID string `json:"destino_id" validate:"omitempty,uuid"`
	Fim       bool   `json:"fim"`
}

type OrdemItensRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type EnviarOrcamentoRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Mensagem string `json:"mensagem" validate:"max=4000"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type OrcamentoFilter struct {
	Status    string `form:"status"`
	ClienteID string `form:"cliente_id"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EstampaResponse struct {
	Posicao string `json:"posicao"`
	Tecnica string `json:"tecnica"`
	Largura string `json:"largura"`
}

type ItemResponse struct {
	ID                  string            `json:"id"`
	ProdutoID           string            `json:"produto_id"`
	ProdutoNome         string            `json:"produto_nome"`
	Posicao             int               `json:"posicao"`
	TecidoNome          *string           `json:"tecido_nome"`
	TecidoComposicao    *string           `json:"tecido_composicao"`
	Cor                 *string           `json:"cor"`
	Tamanhos            []tamanho.Linha   `json:"tamanhos"`
	Quantidade          int               `json:"quantidade"`
	PrecoUnitario       decimal.Decimal   `json:"preco_unitario"`
	TotalLinha          decimal.Decimal   `json:"total_linha"`
	ImagemChave         *string           `json:"imagem_chave,omitempty"`
	TemImagem           bool              `json:"tem_imagem"`
	ObservacaoComercial string            `json:"observacao_comercial"`
	ObservacaoTecnica   string            `json:"observacao_tecnica"`
	Estampas            []EstampaResponse `json:"estampas"`
}

type OrcamentoResponse struct {
	ID                 string           `json:"id"`
	Numero             string           `json:"numero"`
	DataEmissao        time.Time        `json:"data_emissao"`
	ClienteID          *string          `json:"cliente_id"`
	Cliente            *ClienteResponse `json:"cliente,omitempty"`
	Itens              []ItemResponse   `json:"itens"`
	Observacoes        string           `json:"observacoes"`
	CondicoesPagamento string           `json:"condicoes_pagamento"`
	PrazoEntrega       string           `json:"prazo_entrega"`
	Validade           string           `json:"validade"`
	Frete              *decimal.Decimal `json:"frete"`
	Status             model.Status     `json:"status"`
	StatusRotulo       string           `json:"status_rotulo"`
	Subtotal           string           `json:"subtotal"`
	Total              string           `json:"total"`
	CreatedAt          time.Time        `json:"created_at"`
}

type OrcamentoListResponse struct {
	Data       []OrcamentoResponse `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// ItemResultado is returned by item edits. The in-memory change is always
// applied; Persistido=false means the database write failed and Aviso says why.
type ItemResultado struct {
	Orcamento  *OrcamentoResponse `json:"orcamento"`
	ItemID     string             `json:"item_id,omitempty"`
	Alterado   bool               `json:"alterado"`
	Persistido bool               `json:"persistido"`
	Aviso      string             `json:"aviso,omitempty"`
}

type ProximoNumeroResponse struct {
	Numero string `json:"numero"`
}
