package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarClienteRequest struct {
	RazaoSocial string  `json:"razao_social" validate:"required,min=2,max=200"`
	Documento   *string `json:"documento"    validate:"omitempty,max=20"`
	Endereco    *string `json:"endereco"     validate:"omitempty,max=300"`
	Telefone    *string `json:"telefone"     validate:"omitempty,max=30"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Contato     string  `json:"contato"      validate:"max=120"`
}

type AtualizarClienteRequest struct {
	RazaoSocial *string `json:"razao_social" validate:"omitempty,min=2,max=200"`
	Documento   *string `json:"documento"    validate:"omitempty,max=20"`
	Endereco    *string `json:"endereco"     validate:"omitempty,max=300"`
	Telefone    *string `json:"telefone"     validate:"omitempty,max=30"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Contato     *string `json:"contato"      validate:"omitempty,max=120"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ClienteFilter struct {
	Nome  string `form:"nome"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID          string  `json:"id"`
	RazaoSocial string  `json:"razao_social"`
	Documento   *string `json:"documento"`
	Endereco    *string `json:"endereco"`
	Telefone    *string `json:"telefone"`
	Email       *string `json:"email"`
	Contato     string  `json:"contato"`
	Ativo       bool    `json:"ativo"`
}

// ClienteCriadoResponse reports whether an existing client with the same
// name was returned instead of creating a new one.
type ClienteCriadoResponse struct {
	ClienteResponse
	Reutilizado bool `json:"reutilizado"`
}

type ClienteListResponse struct {
	Data       []ClienteResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
