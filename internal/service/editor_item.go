package service

import (
	"context"
	"strconv"

	"orcamentos/internal/idgen"
	"orcamentos/internal/model"
	"orcamentos/internal/tamanho"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogoProdutos resolves a product for the editor.
type CatalogoProdutos interface {
	ObterProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error)
}

// EditorItem holds the draft of one quotation line while it is being filled.
// Invalid drafts are never added; AdicionarItem just reports false.
type EditorItem struct {
	produtos  CatalogoProdutos
	ids       idgen.Provider
	numeracao NumeracaoService

	produto  *model.Produto
	rascunho model.ItemOrcamento
}

func NovoEditorItem(produtos CatalogoProdutos, ids idgen.Provider, numeracao NumeracaoService) *EditorItem {
	if ids == nil {
		ids = idgen.UUID()
	}
	return &EditorItem{produtos: produtos, ids: ids, numeracao: numeracao}
}

// SelecionarProduto loads the product, seeds the unit price from its base
// price and clears fabric and color. Quantities typed so far are kept.
func (e *EditorItem) SelecionarProduto(ctx context.Context, id uuid.UUID) error {
	p, err := e.produtos.ObterProduto(ctx, id)
	if err != nil {
		return err
	}
	e.produto = p
	e.rascunho.ProdutoID = p.ID
	e.rascunho.ProdutoNome = p.Nome
	e.rascunho.PrecoUnitario = p.PrecoBase
	e.rascunho.TecidoNome = nil
	e.rascunho.TecidoComposicao = nil
	e.rascunho.Cor = nil
	return nil
}

// Produto returns the selected product, or nil.
func (e *EditorItem) Produto() *model.Produto { return e.produto }

// DefinirQuantidade coerces raw input and returns the new total over every
// size in the draft, including sizes hidden by the product's grid.
func (e *EditorItem) DefinirQuantidade(label, raw string) int {
	if e.rascunho.Tamanhos == nil {
		e.rascunho.Tamanhos = tamanho.Quantidades{}
	}
	e.rascunho.Quantidade = e.rascunho.Tamanhos.Definir(label, tamanho.Coagir(raw))
	return e.rascunho.Quantidade
}

// DefinirQuantidadeTotal sets the quantity of a line without a size grid.
// It has no effect once sizes were typed.
func (e *EditorItem) DefinirQuantidadeTotal(raw string) int {
	if len(e.rascunho.Tamanhos) == 0 {
		e.rascunho.Quantidade = tamanho.Coagir(raw)
	}
	return e.rascunho.Quantidade
}

func (e *EditorItem) DefinirPreco(p decimal.Decimal) { e.rascunho.PrecoUnitario = p }

// DefinirTecido sets a free-form fabric. An empty name clears it.
func (e *EditorItem) DefinirTecido(nome, composicao string) {
	if nome == "" {
		e.rascunho.TecidoNome, e.rascunho.TecidoComposicao = nil, nil
		return
	}
	e.rascunho.TecidoNome = &nome
	if composicao == "" {
		e.rascunho.TecidoComposicao = nil
	} else {
		e.rascunho.TecidoComposicao = &composicao
	}
}

// SelecionarTecido picks one of the selected product's fabrics by index.
func (e *EditorItem) SelecionarTecido(i int) bool {
	if e.produto == nil || i < 0 || i >= len(e.produto.Tecidos) {
		return false
	}
	t := e.produto.Tecidos[i]
	e.DefinirTecido(t.Nome, t.Composicao)
	return true
}

func (e *EditorItem) DefinirCor(cor string) {
	if cor == "" {
		e.rascunho.Cor = nil
		return
	}
	e.rascunho.Cor = &cor
}

func (e *EditorItem) DefinirObservacoes(comercial, tecnica string) {
	e.rascunho.ObservacaoComercial = comercial
	e.rascunho.ObservacaoTecnica = tecnica
}

// DefinirImagem stores either an object key or an inline base64 payload.
func (e *EditorItem) DefinirImagem(chave, base64 *string) {
	e.rascunho.ImagemChave = chave
	e.rascunho.ImagemBase64 = base64
}

func (e *EditorItem) AdicionarEstampa(est model.Estampa) {
	est.Ordem = len(e.rascunho.Estampas)
	e.rascunho.Estampas = append(e.rascunho.Estampas, est)
}

func (e *EditorItem) RemoverEstampa(i int) bool {
	if i < 0 || i >= len(e.rascunho.Estampas) {
		return false
	}
	e.rascunho.Estampas = append(e.rascunho.Estampas[:i], e.rascunho.Estampas[i+1:]...)
	for j := range e.rascunho.Estampas {
		e.rascunho.Estampas[j].Ordem = j
	}
	return true
}

// Grade returns the rows shown for the selected product, or nil.
func (e *EditorItem) Grade() []tamanho.Linha {
	if e.produto == nil {
		return nil
	}
	return tamanho.Grade(e.produto.TamanhosVisiveis(), e.rascunho.Tamanhos)
}

// Rascunho returns a copy of the current draft.
func (e *EditorItem) Rascunho() model.ItemOrcamento {
	r := e.rascunho
	r.Tamanhos = e.rascunho.Tamanhos.Copia()
	r.Estampas = append([]model.Estampa(nil), e.rascunho.Estampas...)
	return r
}

func (e *EditorItem) PodeAdicionar() bool {
	return e.produto != nil && e.rascunho.PrecoUnitario.IsPositive()
}

// AdicionarItem appends the draft to orc with a fresh id and resets the
// editor. When it is the first item and a client is set, the quotation
// number is rebuilt. Returns the appended item, or nil when the draft is
// not complete.
func (e *EditorItem) AdicionarItem(ctx context.Context, orc *model.Orcamento) *model.ItemOrcamento {
	if !e.PodeAdicionar() {
		return nil
	}
	item := e.Rascunho()
	item.ID = e.ids.NovoID()
	item.OrcamentoID = orc.ID
	item.Posicao = len(orc.Itens)
	item.RecalcularQuantidade()
	for i := range item.Estampas {
		item.Estampas[i].ItemID = item.ID
	}
	orc.Itens = append(orc.Itens, item)

	if len(orc.Itens) == 1 && orc.Cliente != nil && e.numeracao != nil {
		orc.Numero = e.numeracao.Reconstruir(ctx, orc.Numero, item.ProdutoNome, orc.Cliente.RazaoSocial, orc.Cliente.Contato)
	}
	e.Resetar()
	return &orc.Itens[len(orc.Itens)-1]
}

func (e *EditorItem) Resetar() {
	e.produto = nil
	e.rascunho = model.ItemOrcamento{}
}

// ─── List operations ─────────────────────────────────────────────────────────

// PatchItem carries optional changes to an existing item. A non-nil Tamanhos
// replaces the size map and recomputes the quantity.
type PatchItem struct {
	PrecoUnitario       *decimal.Decimal
	TecidoNome          *string
	TecidoComposicao    *string
	Cor                 *string
	Tamanhos            tamanho.Quantidades
	Quantidade          *int
	ObservacaoComercial *string
	ObservacaoTecnica   *string
	Estampas            *[]model.Estampa
	ImagemChave         *string
	ImagemBase64        *string
	LimparImagem        bool
}

// RemoverItem deletes the item with id and renumbers positions. No-op when
// the id is not in orc.
func RemoverItem(orc *model.Orcamento, id uuid.UUID) bool {
	i := orc.IndiceItem(id)
	if i < 0 {
		return false
	}
	orc.Itens = append(orc.Itens[:i], orc.Itens[i+1:]...)
	orc.Renumerar()
	return true
}

// AtualizarItem applies patch to the item with id. No-op when the id is not
// in orc.
func AtualizarItem(orc *model.Orcamento, id uuid.UUID, patch PatchItem) bool {
	i := orc.IndiceItem(id)
	if i < 0 {
		return false
	}
	it := &orc.Itens[i]
	if patch.PrecoUnitario != nil {
		it.PrecoUnitario = *patch.PrecoUnitario
	}
	if patch.TecidoNome != nil {
		it.TecidoNome = vazioNil(*patch.TecidoNome)
	}
	if patch.TecidoComposicao != nil {
		it.TecidoComposicao = vazioNil(*patch.TecidoComposicao)
	}
	if patch.Cor != nil {
		it.Cor = vazioNil(*patch.Cor)
	}
	if patch.Quantidade != nil && *patch.Quantidade >= 0 {
		it.Quantidade = *patch.Quantidade
	}
	if patch.Tamanhos != nil {
		it.Tamanhos = patch.Tamanhos.Copia()
	}
	it.RecalcularQuantidade()
	if patch.ObservacaoComercial != nil {
		it.ObservacaoComercial = *patch.ObservacaoComercial
	}
	if patch.ObservacaoTecnica != nil {
		it.ObservacaoTecnica = *patch.ObservacaoTecnica
	}
	if patch.Estampas != nil {
		it.Estampas = make([]model.Estampa, len(*patch.Estampas))
		for j, est := range *patch.Estampas {
			est.ItemID = it.ID
			est.Ordem = j
			it.Estampas[j] = est
		}
	}
	if patch.LimparImagem || patch.ImagemChave != nil || patch.ImagemBase64 != nil {
		it.ImagemChave = patch.ImagemChave
		it.ImagemBase64 = patch.ImagemBase64
	}
	return true
}

func vazioNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func quantidadeTexto(q int) string { return strconv.Itoa(q) }
