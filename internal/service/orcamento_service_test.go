package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"orcamentos/internal/documento"
	"orcamentos/internal/dto"
	"orcamentos/internal/idgen"
	"orcamentos/internal/model"
	"orcamentos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAIAAAACCAIAAAD91JpzAAAAEElEQVR4nGP4z8AARAwQCgAf7gP9i18U1AAAAABJRU5ErkJggg=="

type fakeDespacho struct {
	payloads []worker.EnvioOrcamentoPayload
	err      error
}

func (f *fakeDespacho) EnqueueEnvioOrcamento(_ context.Context, p worker.EnvioOrcamentoPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type cenarioOrcamento struct {
	svc      OrcamentoService
	repo     *memOrcamentoRepo
	clientes *memClienteRepo
	produtos *memProdutoRepo
	imagens  *memImagens
	despacho *fakeDespacho
}

func novoCenario(t *testing.T) *cenarioOrcamento {
	t.Helper()
	c := &cenarioOrcamento{
		repo:     newMemOrcamentoRepo(),
		clientes: newMemClienteRepo(model.Cliente{RazaoSocial: "Metalúrgica Alfa", Contato: "Joana"}),
		imagens:  newMemImagens(),
		despacho: &fakeDespacho{},
	}
	camiseta := camisaPolo()
	camiseta.Nome = "Camiseta"
	camiseta.PrecoBase = decimal.NewFromInt(10)
	calca := model.Produto{Nome: "Calça Brim", PrecoBase: decimal.NewFromInt(20)}
	c.produtos = newMemProdutoRepo(camiseta, calca)

	num := NewNumeracaoService(c.repo, "")
	c.svc = NewOrcamentoService(c.repo, c.clientes, catalogoRepo{c.produtos}, num, idgen.NovaSequencia(),
		c.imagens, c.despacho, documento.Emissor{Nome: "Uniformes Teste"}, 1<<20)
	return c
}

func (c *cenarioOrcamento) clienteID() string { return c.clientes.itens[0].ID.String() }
func (c *cenarioOrcamento) camiseta() string { return c.produtos.itens[0].ID.String() }
func (c *cenarioOrcamento) calca() string { return c.produtos.itens[1].ID.String() }
func (c *cenarioOrcamento) orcID(r *dto.OrcamentoResponse) uuid.UUID {
	return uuid.MustParse(r.ID)
}

func (c *cenarioOrcamento) criarPadrao(t *testing.T) *dto.OrcamentoResponse {
	t.Helper()
	frete := decimal.RequireFromString("15.00")
	cid := c.clienteID()
	resp, err := c.svc.Criar(context.Background(), dto.CriarOrcamentoRequest{
		ClienteID: &cid,
		Frete:     &frete,
		Itens: []dto.ItemRequest{
			{ProdutoID: c.camiseta(), Tamanhos: map[string]dto.Quantidade{"P": 2, "G": 3}},
			{ProdutoID: c.calca(), Quantidade: 3},
		},
	})
	require.NoError(t, err)
	return resp
}

func TestOrcamento_CriarCalculaTotais(t *testing.T) {
	c := novoCenario(t)
	resp := c.criarPadrao(t)

	assert.Equal(t, "0140 - Camiseta - Metalúrgica Alfa - Joana", resp.Numero)
	assert.Equal(t, "110.00", resp.Subtotal)
	assert.Equal(t, "125.00", resp.Total)
	assert.Equal(t, model.StatusProposta, resp.Status)
	require.Len(t, resp.Itens, 2)
	assert.Equal(t, 5, resp.Itens[0].Quantidade)
	assert.Equal(t, "50", resp.Itens[0].TotalLinha.String())
	assert.Equal(t, 1, resp.Itens[1].Posicao)

	// the next quotation continues the sequence
	assert.Equal(t, "0141", c.svc.ProximoNumero(context.Background()))
}

func TestOrcamento_CriarValidaReferencias(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	var verr *ValidacaoError

	outro := uuid.NewString()
	_, err := c.svc.Criar(ctx, dto.CriarOrcamentoRequest{ClienteID: &outro})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exists", verr.Campos["cliente_id"])

	_, err = c.svc.Criar(ctx, dto.CriarOrcamentoRequest{Itens: []dto.ItemRequest{{ProdutoID: uuid.NewString()}}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exists", verr.Campos["produto_id"])

	zero := decimal.Zero
	_, err = c.svc.Criar(ctx, dto.CriarOrcamentoRequest{Itens: []dto.ItemRequest{{ProdutoID: c.camiseta(), PrecoUnitario: &zero}}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "Itens[0].PrecoUnitario")

	assert.Equal(t, 0, c.repo.escritas)
}

func TestOrcamento_AdicionarPrimeiroItemRenumera(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	cid := c.clienteID()
	orc, err := c.svc.Criar(ctx, dto.CriarOrcamentoRequest{ClienteID: &cid})
	require.NoError(t, err)
	assert.Equal(t, "0140 - Metalúrgica Alfa - Joana", orc.Numero)

	res, err := c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Quantidade: 4})
	require.NoError(t, err)
	assert.True(t, res.Alterado)
	assert.True(t, res.Persistido)
	assert.Equal(t, "0140 - Calça Brim - Metalúrgica Alfa - Joana", res.Orcamento.Numero)

	salvo, err := c.svc.ObterPorID(ctx, c.orcID(orc))
	require.NoError(t, err)
	assert.Equal(t, res.Orcamento.Numero, salvo.Numero)
	require.Len(t, salvo.Itens, 1)
	assert.Equal(t, "80.00", salvo.Total)
}

func TestOrcamento_AdicionarItemIncompleto(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc, err := c.svc.Criar(ctx, dto.CriarOrcamentoRequest{})
	require.NoError(t, err)

	zero := decimal.Zero
	res, err := c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), PrecoUnitario: &zero})
	require.NoError(t, err)
	assert.False(t, res.Alterado)
	assert.NotEmpty(t, res.Aviso)
	assert.Empty(t, res.Orcamento.Itens)
}

func TestOrcamento_FalhaDeGravacaoMantemAlteracao(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)

	c.repo.falhar = true
	res, err := c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Quantidade: 1})
	require.NoError(t, err)
	assert.True(t, res.Alterado)
	assert.False(t, res.Persistido)
	assert.Contains(t, res.Aviso, errBanco.Error())
	assert.Len(t, res.Orcamento.Itens, 3)

	c.repo.falhar = false
	salvo, err := c.svc.ObterPorID(ctx, c.orcID(orc))
	require.NoError(t, err)
	assert.Len(t, salvo.Itens, 2)
}

func TestOrcamento_AtualizarItem(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)
	itemID := uuid.MustParse(orc.Itens[0].ID)

	preco := decimal.RequireFromString("12.50")
	res, err := c.svc.AtualizarItem(ctx, c.orcID(orc), itemID, dto.AtualizarItemRequest{
		PrecoUnitario: &preco,
		Tamanhos:      map[string]dto.Quantidade{"M": 4},
	})
	require.NoError(t, err)
	assert.True(t, res.Persistido)
	assert.Equal(t, 4, res.Orcamento.Itens[0].Quantidade)
	assert.Equal(t, "50.00", res.Orcamento.Itens[0].TotalLinha.StringFixed(2))

	res, err = c.svc.AtualizarItem(ctx, c.orcID(orc), uuid.New(), dto.AtualizarItemRequest{PrecoUnitario: &preco})
	require.NoError(t, err)
	assert.False(t, res.Alterado)
}

func TestOrcamento_RemoverPrimeiroItemRenumera(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)

	res, err := c.svc.RemoverItem(ctx, c.orcID(orc), uuid.MustParse(orc.Itens[0].ID))
	require.NoError(t, err)
	assert.True(t, res.Persistido)
	require.Len(t, res.Orcamento.Itens, 1)
	assert.Equal(t, 0, res.Orcamento.Itens[0].Posicao)
	assert.Equal(t, "0140 - Calça Brim - Metalúrgica Alfa - Joana", res.Orcamento.Numero)

	salvo, err := c.svc.ObterPorID(ctx, c.orcID(orc))
	require.NoError(t, err)
	assert.Equal(t, res.Orcamento.Numero, salvo.Numero)
	assert.Len(t, salvo.Itens, 1)
}

func TestOrcamento_ReordenarItens(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)
	id := c.orcID(orc)

	add, err := c.svc.AdicionarItem(ctx, id, dto.ItemRequest{ProdutoID: c.camiseta(), Quantidade: 1})
	require.NoError(t, err)
	a, b, d := orc.Itens[0].ID, orc.Itens[1].ID, add.ItemID

	// drop d before a
	res, err := c.svc.ReordenarItens(ctx, id, dto.MoverItemRequest{OrigemID: d, DestinoID: a})
	require.NoError(t, err)
	assert.True(t, res.Alterado)
	assert.Equal(t, []string{d, a, b}, idsResposta(res.Orcamento))

	// self drop is a no-op
	res, err = c.svc.ReordenarItens(ctx, id, dto.MoverItemRequest{OrigemID: a, DestinoID: a})
	require.NoError(t, err)
	assert.False(t, res.Alterado)

	// a to the end
	res, err = c.svc.ReordenarItens(ctx, id, dto.MoverItemRequest{OrigemID: d, Fim: true})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, d}, idsResposta(res.Orcamento))

	salvo, err := c.svc.ObterPorID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, d}, idsResposta(salvo))
	for i, it := range salvo.Itens {
		assert.Equal(t, i, it.Posicao)
	}
}

func TestOrcamento_DefinirOrdem(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)
	id := c.orcID(orc)
	a, b := orc.Itens[0].ID, orc.Itens[1].ID

	var verr *ValidacaoError
	_, err := c.svc.DefinirOrdem(ctx, id, []string{a})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "permutacao", verr.Campos["ids"])

	res, err := c.svc.DefinirOrdem(ctx, id, []string{b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, idsResposta(res.Orcamento))
	assert.Equal(t, "0140 - Calça Brim - Metalúrgica Alfa - Joana", res.Orcamento.Numero)
}

func idsResposta(o *dto.OrcamentoResponse) []string {
	out := make([]string, len(o.Itens))
	for i, it := range o.Itens {
		out[i] = it.ID
	}
	return out
}

func TestOrcamento_ImagemVaiParaStorage(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc, err := c.svc.Criar(ctx, dto.CriarOrcamentoRequest{})
	require.NoError(t, err)

	img := "data:image/png;base64," + pngBase64
	res, err := c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Imagem: &img})
	require.NoError(t, err)
	require.Len(t, res.Orcamento.Itens, 1)
	it := res.Orcamento.Itens[0]
	assert.True(t, it.TemImagem)
	require.NotNil(t, it.ImagemChave)
	assert.Contains(t, c.imagens.objs, *it.ImagemChave)

	c.imagens.falhar = true
	res, err = c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Imagem: &img})
	require.NoError(t, err)
	it = res.Orcamento.Itens[1]
	assert.True(t, it.TemImagem)
	assert.Nil(t, it.ImagemChave)

	ruim := "não é base64"
	_, err = c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Imagem: &ruim})
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "base64", verr.Campos["imagem"])
}

func TestOrcamento_ImagensSemReferenciaSaoRemovidas(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	img := "data:image/png;base64," + pngBase64

	orc, err := c.svc.Criar(ctx, dto.CriarOrcamentoRequest{})
	require.NoError(t, err)
	res, err := c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Imagem: &img})
	require.NoError(t, err)
	item := res.Orcamento.Itens[0]
	primeira := *item.ImagemChave
	require.Len(t, c.imagens.objs, 1)

	// failed write: the upload is discarded
	c.repo.falhar = true
	res, err = c.svc.AdicionarItem(ctx, c.orcID(orc), dto.ItemRequest{ProdutoID: c.calca(), Imagem: &img})
	require.NoError(t, err)
	require.False(t, res.Persistido)
	assert.Len(t, c.imagens.objs, 1)
	assert.Contains(t, c.imagens.objs, primeira)

	// failed replacement keeps the stored object
	res, err = c.svc.AtualizarItem(ctx, c.orcID(orc), uuid.MustParse(item.ID), dto.AtualizarItemRequest{Imagem: &img})
	require.NoError(t, err)
	require.False(t, res.Persistido)
	assert.Len(t, c.imagens.objs, 1)
	assert.Contains(t, c.imagens.objs, primeira)
	c.repo.falhar = false

	// successful replacement drops the old object
	res, err = c.svc.AtualizarItem(ctx, c.orcID(orc), uuid.MustParse(item.ID), dto.AtualizarItemRequest{Imagem: &img})
	require.NoError(t, err)
	require.True(t, res.Persistido)
	segunda := *res.Orcamento.Itens[0].ImagemChave
	assert.NotEqual(t, primeira, segunda)
	assert.Len(t, c.imagens.objs, 1)
	assert.Contains(t, c.imagens.objs, segunda)

	res, err = c.svc.RemoverItem(ctx, c.orcID(orc), uuid.MustParse(item.ID))
	require.NoError(t, err)
	require.True(t, res.Persistido)
	assert.Empty(t, c.imagens.objs)

	// a quotation that fails to save leaves no objects behind
	c.repo.falhar = true
	_, err = c.svc.Criar(ctx, dto.CriarOrcamentoRequest{Itens: []dto.ItemRequest{{ProdutoID: c.calca(), Quantidade: 1, Imagem: &img}}})
	require.ErrorIs(t, err, errBanco)
	assert.Empty(t, c.imagens.objs)
}

func TestDecodificarImagem_LimiteAntesDeDecodificar(t *testing.T) {
	dados, ct, err := decodificarImagem(pngBase64, 1<<10)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.NotEmpty(t, dados)

	var verr *ValidacaoError
	_, _, err = decodificarImagem(strings.Repeat("A", 4000), 100)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max", verr.Campos["imagem"])

	// oversized input is refused before decoding, whatever its content
	_, _, err = decodificarImagem(strings.Repeat("!", 4000), 100)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max", verr.Campos["imagem"])

	_, _, err = decodificarImagem(strings.Repeat("!", 40), 100)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "base64", verr.Campos["imagem"])
}

func TestOrcamento_StatusEListagem(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)
	_, err := c.svc.Criar(ctx, dto.CriarOrcamentoRequest{})
	require.NoError(t, err)

	_, err = c.svc.DefinirStatus(ctx, c.orcID(orc), model.Status(9))
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)

	atualizado, err := c.svc.DefinirStatus(ctx, c.orcID(orc), model.StatusEmProducao)
	require.NoError(t, err)
	assert.Equal(t, "Em produção", atualizado.StatusRotulo)

	lista, err := c.svc.Listar(ctx, dto.OrcamentoFilter{Status: "producao", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, lista.Data, 1)
	assert.Equal(t, orc.ID, lista.Data[0].ID)

	lista, err = c.svc.Listar(ctx, dto.OrcamentoFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), lista.Total)
	assert.Equal(t, 2, lista.TotalPages)
}

func TestOrcamento_AtualizarCabecalho(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)

	prazo := "30 dias"
	resp, err := c.svc.Atualizar(ctx, c.orcID(orc), dto.AtualizarOrcamentoRequest{PrazoEntrega: &prazo, RemoverFrete: true})
	require.NoError(t, err)
	assert.Equal(t, "30 dias", resp.PrazoEntrega)
	assert.Nil(t, resp.Frete)
	assert.Equal(t, "110.00", resp.Total)

	salvo, err := c.svc.ObterPorID(ctx, c.orcID(orc))
	require.NoError(t, err)
	assert.Len(t, salvo.Itens, 2)
}

func TestOrcamento_Documentos(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)

	pdf, nome, err := c.svc.GerarPDF(ctx, c.orcID(orc))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "orcamento-0140.pdf", nome)

	planilha, nome, err := c.svc.GerarXLSX(ctx, c.orcID(orc))
	require.NoError(t, err)
	assert.Equal(t, "orcamento-0140.xlsx", nome)
	f, err := excelize.OpenReader(bytes.NewReader(planilha))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Orçamento")

	_, _, err = c.svc.GerarPDF(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNaoEncontrado)
}

func TestOrcamento_Enviar(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	orc := c.criarPadrao(t)

	require.NoError(t, c.svc.Enviar(ctx, c.orcID(orc), dto.EnviarOrcamentoRequest{Email: "compras@alfa.com.br"}))
	require.Len(t, c.despacho.payloads, 1)
	assert.Equal(t, orc.ID, c.despacho.payloads[0].OrcamentoID)
	assert.Equal(t, orc.Numero, c.despacho.payloads[0].Numero)

	c.despacho.err = errors.New("redis fora")
	err := c.svc.Enviar(ctx, c.orcID(orc), dto.EnviarOrcamentoRequest{Email: "compras@alfa.com.br"})
	assert.ErrorIs(t, err, ErrIndisponivel)

	semFila := NewOrcamentoService(c.repo, c.clientes, catalogoRepo{c.produtos}, NewNumeracaoService(c.repo, ""),
		nil, nil, nil, documento.Emissor{}, 0)
	assert.ErrorIs(t, semFila.Enviar(ctx, c.orcID(orc), dto.EnviarOrcamentoRequest{}), ErrIndisponivel)
}
