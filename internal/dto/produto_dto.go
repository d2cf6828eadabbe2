package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TecidoRequest struct {
	Nome       string `json:"nome"       validate:"required,min=1,max=120"`
	Composicao string `json:"composicao" validate:"max=200"`
}

type CriarProdutoRequest struct {
	Nome      string          `json:"nome"       validate:"required,min=2,max=160"`
	PrecoBase decimal.Decimal `json:"preco_base" validate:"min=0"`
	Tecidos   []TecidoRequest `json:"tecidos"    validate:"omitempty,dive"`
	Cores     []string        `json:"cores"      validate:"omitempty,dive,required,max=60"`
	Tamanhos  []string        `json:"tamanhos"   validate:"omitempty,dive,tamanho"`
}

// AtualizarProdutoRequest replaces a list only when it is present in the body.
type AtualizarProdutoRequest struct {
	Nome      *string          `json:"nome"       validate:"omitempty,min=2,max=160"`
	PrecoBase *decimal.Decimal `json:"preco_base"`
	Tecidos   *[]TecidoRequest `json:"tecidos"    validate:"omitempty,dive"`
	Cores     *[]string        `json:"cores"      validate:"omitempty,dive,required,max=60"`
	Tamanhos  *[]string        `json:"tamanhos"   validate:"omitempty,dive,tamanho"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProdutoFilter struct {
	Nome  string `form:"nome"`
	Ativo string `form:"ativo"` // "false" = inativos, "all" = todos, default = ativos
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TecidoResponse struct {
	Nome       string `json:"nome"`
	Composicao string `json:"composicao"`
}

type ProdutoResponse struct {
	ID        string           `json:"id"`
	Nome      string           `json:"nome"`
	PrecoBase decimal.Decimal  `json:"preco_base"`
	Tecidos   []TecidoResponse `json:"tecidos"`
	Cores     []string         `json:"cores"`
	Tamanhos  []string         `json:"tamanhos"`
	Ativo     bool             `json:"ativo"`
}

type ProdutoCriadoResponse struct {
	ProdutoResponse
	Reutilizado bool `json:"reutilizado"`
}

type ProdutoListResponse struct {
	Data       []ProdutoResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// GradeResponse lists the sizes shown in a product's grid, in catalog order.
type GradeResponse struct {
	ProdutoID string   `json:"produto_id"`
	Tamanhos  []string `json:"tamanhos"`
}

// TamanhosResponse is the canonical catalog split by band.
type TamanhosResponse struct {
	Catalogo []string `json:"catalogo"`
	Letras   []string `json:"letras"`
	Adulto   []string `json:"adulto"`
	Infantil []string `json:"infantil"`
}
