package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tagged actions produced by the AI assistant.
const (
	AcaoCriarCliente     = "createClient"
	AcaoCriarProduto     = "createProduct"
	AcaoCriarOrcamento   = "createQuotation"
	AcaoExtrairOrcamento = "extractQuotation"
	AcaoDesconhecida     = "unknown"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InterpretarRequest struct {
	Instrucao string `json:"instrucao" validate:"required,min=2,max=8000"`
}

// AcaoAssistente is the tagged action envelope. Dados is decoded according to
// Acao into CriarClienteRequest, CriarProdutoRequest or OrcamentoAssistente.
type AcaoAssistente struct {
	Acao  string          `json:"acao"  validate:"required,oneof=createClient createProduct createQuotation extractQuotation unknown"`
	Dados json.RawMessage `json:"dados"`
}

// ItemAssistente references products by name, the way the assistant reads them
// from free text.
type ItemAssistente struct {
	Produto          string                `json:"produto"           validate:"required,min=1"`
	PrecoUnitario    *decimal.Decimal      `json:"preco_unitario"`
	TecidoNome       *string               `json:"tecido_nome"`
	TecidoComposicao *string               `json:"tecido_composicao"`
	Cor              *string               `json:"cor"`
	Tamanhos         map[string]Quantidade `json:"tamanhos"`
	Quantidade       Quantidade            `json:"quantidade"`
	Estampas         []EstampaRequest      `json:"estampas"          validate:"omitempty,dive"`
}

// OrcamentoAssistente is the payload of createQuotation / extractQuotation.
type OrcamentoAssistente struct {
	Cliente            string           `json:"cliente"`
	Contato            string           `json:"contato"`
	Itens              []ItemAssistente `json:"itens"               validate:"omitempty,dive"`
	Observacoes        string           `json:"observacoes"`
	CondicoesPagamento string           `json:"condicoes_pagamento"`
	PrazoEntrega       string           `json:"prazo_entrega"`
	Validade           string           `json:"validade"`
	Frete              *decimal.Decimal `json:"frete"`
}

// PedidoAssistente is what the AI sidecar receives: the instruction plus the
// names already registered, so it can refer to existing records.
type PedidoAssistente struct {
	Instrucao string   `json:"instrucao"`
	Clientes  []string `json:"clientes"`
	Produtos  []string `json:"produtos"`
}

// ConfirmarRequest answers a pending confirmation. Escolhas picks one of the
// candidates listed for each ambiguous name.
type ConfirmarRequest struct {
	Confirmar *bool     `json:"confirmar" validate:"required"`
	Escolhas  *Escolhas `json:"escolhas"`
}

// Escolhas maps an ambiguous name, as the assistant wrote it, to the id of the
// chosen record.
type Escolhas struct {
	Clientes map[string]string `json:"clientes"`
	Produtos map[string]string `json:"produtos"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// Resultado values of AcaoResultado.
const (
	ResultadoCriado      = "criado"
	ResultadoReutilizado = "reutilizado"
	ResultadoPendente    = "pendente"
	ResultadoRascunho    = "rascunho"
	ResultadoCancelado   = "cancelado"
	ResultadoIgnorado    = "ignorado"
)

// Tipo values of Ambiguidade.
const (
	TipoCliente = "cliente"
	TipoProduto = "produto"
)

type Candidato struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// Ambiguidade is a name that partially matches more than one record.
type Ambiguidade struct {
	Tipo       string      `json:"tipo"`
	Nome       string      `json:"nome"`
	Candidatos []Candidato `json:"candidatos"`
}

// ConfirmacaoPendente is returned when a quotation references clients or
// products that do not exist yet, or names that match several records.
// Nothing is written until it is confirmed.
type ConfirmacaoPendente struct {
	Token            string        `json:"token"`
	ClientesAusentes []string      `json:"clientes_ausentes"`
	ProdutosAusentes []string      `json:"produtos_ausentes"`
	Ambiguos         []Ambiguidade `json:"ambiguos,omitempty"`
	ExpiraEm         time.Time     `json:"expira_em"`
}

type AcaoResultado struct {
	Acao        string                 `json:"acao"`
	Resultado   string                 `json:"resultado"`
	Mensagem    string                 `json:"mensagem,omitempty"`
	Cliente     *ClienteResponse       `json:"cliente,omitempty"`
	Produto     *ProdutoResponse       `json:"produto,omitempty"`
	Orcamento   *OrcamentoResponse     `json:"orcamento,omitempty"`
	Rascunho    *CriarOrcamentoRequest `json:"rascunho,omitempty"`
	Confirmacao *ConfirmacaoPendente   `json:"confirmacao,omitempty"`
	Ausentes    []string               `json:"ausentes,omitempty"`
	Ambiguos    []Ambiguidade          `json:"ambiguos,omitempty"`
}
