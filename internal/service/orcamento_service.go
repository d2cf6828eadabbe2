package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"orcamentos/internal/documento"
	"orcamentos/internal/dto"
	"orcamentos/internal/idgen"
	"orcamentos/internal/infra"
	"orcamentos/internal/model"
	"orcamentos/internal/reordenar"
	"orcamentos/internal/repository"
	"orcamentos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OrcamentoService defines the business logic contract for quotations.
type OrcamentoService interface {
	Criar(ctx context.Context, req dto.CriarOrcamentoRequest) (*dto.OrcamentoResponse, error)
	// CriarComCadastros creates the quotation in the same transaction as the
	// clients and products in novos. req may reference them by id.
	CriarComCadastros(ctx context.Context, req dto.CriarOrcamentoRequest, novos Cadastros) (*dto.OrcamentoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.OrcamentoResponse, error)
	Listar(ctx context.Context, filter dto.OrcamentoFilter) (*dto.OrcamentoListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarOrcamentoRequest) (*dto.OrcamentoResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
	DefinirStatus(ctx context.Context, id uuid.UUID, status model.Status) (*dto.OrcamentoResponse, error)
	DefinirCliente(ctx context.Context, id, clienteID uuid.UUID) (*dto.OrcamentoResponse, error)
	ProximoNumero(ctx context.Context) string

	// Item edits return an ItemResultado: the change is applied to the loaded
	// quotation even when the database write fails (Persistido=false).
	AdicionarItem(ctx context.Context, id uuid.UUID, req dto.ItemRequest) (*dto.ItemResultado, error)
	AtualizarItem(ctx context.Context, id, itemID uuid.UUID, req dto.AtualizarItemRequest) (*dto.ItemResultado, error)
	RemoverItem(ctx context.Context, id, itemID uuid.UUID) (*dto.ItemResultado, error)
	ReordenarItens(ctx context.Context, id uuid.UUID, req dto.MoverItemRequest) (*dto.ItemResultado, error)
	DefinirOrdem(ctx context.Context, id uuid.UUID, ids []string) (*dto.ItemResultado, error)

	GerarPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	GerarXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Enviar(ctx context.Context, id uuid.UUID, req dto.EnviarOrcamentoRequest) error
}

// Cadastros are records that only exist once the quotation referencing them
// is saved. Gravar writes them inside the quotation's transaction.
type Cadastros struct {
	Clientes []model.Cliente
	Produtos []model.Produto
	Gravar   func(tx *gorm.DB) error
}

// Despachante enqueues the email delivery of a quotation.
type Despachante interface {
	EnqueueEnvioOrcamento(ctx context.Context, payload worker.EnvioOrcamentoPayload) error
}

type orcamentoService struct {
	repo      repository.OrcamentoRepository
	clientes  repository.ClienteRepository
	produtos  CatalogoProdutos
	numeracao NumeracaoService
	ids       idgen.Provider
	imagens   ImagemStore
	despacho  Despachante
	emissor   documento.Emissor
	imagemMax int
}

// NewOrcamentoService wires the quotation service. imagens and despacho may be
// nil: images then stay inline and sending by email is unavailable.
func NewOrcamentoService(
	repo repository.OrcamentoRepository,
	clientes repository.ClienteRepository,
	produtos CatalogoProdutos,
	numeracao NumeracaoService,
	ids idgen.Provider,
	imagens ImagemStore,
	despacho Despachante,
	emissor documento.Emissor,
	imagemMax int,
) OrcamentoService {
	if ids == nil {
		ids = idgen.UUID()
	}
	return &orcamentoService{
		repo:      repo,
		clientes:  clientes,
		produtos:  produtos,
		numeracao: numeracao,
		ids:       ids,
		imagens:   imagens,
		despacho:  despacho,
		emissor:   emissor,
		imagemMax: imagemMax,
	}
}

// ── Quotation ────────────────────────────────────────────────────────────────

func (s *orcamentoService) Criar(ctx context.Context, req dto.CriarOrcamentoRequest) (*dto.OrcamentoResponse, error) {
	return s.CriarComCadastros(ctx, req, Cadastros{})
}

func (s *orcamentoService) CriarComCadastros(ctx context.Context, req dto.CriarOrcamentoRequest, novos Cadastros) (*dto.OrcamentoResponse, error) {
	catalogo := s.produtos
	if len(novos.Produtos) > 0 {
		catalogo = catalogoComNovos{base: s.produtos, novos: novos.Produtos}
	}
	orc := &model.Orcamento{
		ID:                 s.ids.NovoID(),
		DataEmissao:        time.Now(),
		Observacoes:        req.Observacoes,
		CondicoesPagamento: req.CondicoesPagamento,
		PrazoEntrega:       req.PrazoEntrega,
		Validade:           req.Validade,
		Frete:              req.Frete,
		Status:             model.StatusProposta,
	}
	if req.DataEmissao != nil {
		orc.DataEmissao = *req.DataEmissao
	}
	if req.Status != nil {
		if !req.Status.Valido() {
			return nil, &ValidacaoError{Campos: map[string]string{"status": "oneof"}}
		}
		orc.Status = *req.Status
	}
	if req.ClienteID != nil && *req.ClienteID != "" {
		c, err := s.carregarCliente(ctx, *req.ClienteID, novos.Clientes)
		if err != nil {
			return nil, err
		}
		orc.ClienteID = &c.ID
		orc.Cliente = c
	}

	orc.Numero = s.numeracao.ProximoNumero(ctx)
	for i, ir := range req.Itens {
		item, err := s.montarItem(ctx, orc, ir, catalogo)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, &ValidacaoError{Campos: map[string]string{fmt.Sprintf("Itens[%d].PrecoUnitario", i): "gt"}}
		}
	}
	s.reconstruirNumero(ctx, orc)

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if novos.Gravar != nil {
			if err := novos.Gravar(tx); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, tx, orc)
	}); err != nil {
		s.descartarImagens(ctx, chavesImagens(orc)...)
		return nil, fmt.Errorf("criar orçamento: %w", err)
	}
	log.Info().Str("orcamento_id", orc.ID.String()).Str("numero", orc.Numero).Msg("orcamento: criado")
	return orcamentoToResponse(orc), nil
}

func (s *orcamentoService) carregarCliente(ctx context.Context, raw string, novos []model.Cliente) (*model.Cliente, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &ValidacaoError{Campos: map[string]string{"cliente_id": "uuid"}}
	}
	for i := range novos {
		if novos[i].ID == id {
			c := novos[i]
			return &c, nil
		}
	}
	c, err := s.clientes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidacaoError{Campos: map[string]string{"cliente_id": "exists"}}
		}
		return nil, err
	}
	return c, nil
}

func (s *orcamentoService) carregar(ctx context.Context, id uuid.UUID) (*model.Orcamento, error) {
	orc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "orçamento")
	}
	return orc, nil
}

func (s *orcamentoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.OrcamentoResponse, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	return orcamentoToResponse(orc), nil
}

func (s *orcamentoService) Listar(ctx context.Context, filter dto.OrcamentoFilter) (*dto.OrcamentoListResponse, error) {
	filtro := repository.OrcamentoFiltro{Page: filter.Page, Limit: filter.Limit}
	if filter.Status != "" {
		st, err := model.ParseStatus(filter.Status)
		if err != nil {
			return nil, &ValidacaoError{Campos: map[string]string{"status": "oneof"}}
		}
		filtro.Status = &st
	}
	if filter.ClienteID != "" {
		cid, err := uuid.Parse(filter.ClienteID)
		if err != nil {
			return nil, &ValidacaoError{Campos: map[string]string{"cliente_id": "uuid"}}
		}
		filtro.ClienteID = &cid
	}

	orcs, total, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrcamentoListResponse{
		Data:       make([]dto.OrcamentoResponse, len(orcs)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range orcs {
		resp.Data[i] = *orcamentoToResponse(&orcs[i])
	}
	return resp, nil
}

func (s *orcamentoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarOrcamentoRequest) (*dto.OrcamentoResponse, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DataEmissao != nil {
		orc.DataEmissao = *req.DataEmissao
	}
	if req.Observacoes != nil {
		orc.Observacoes = *req.Observacoes
	}
	if req.CondicoesPagamento != nil {
		orc.CondicoesPagamento = *req.CondicoesPagamento
	}
	if req.PrazoEntrega != nil {
		orc.PrazoEntrega = *req.PrazoEntrega
	}
	if req.Validade != nil {
		orc.Validade = *req.Validade
	}
	if req.RemoverFrete {
		orc.Frete = nil
	} else if req.Frete != nil {
		orc.Frete = req.Frete
	}
	if err := s.repo.UpdateCabecalhoTx(ctx, nil, orc); err != nil {
		return nil, fmt.Errorf("atualizar orçamento: %w", err)
	}
	return orcamentoToResponse(orc), nil
}

func (s *orcamentoService) Excluir(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return naoEncontrado(err, "orçamento")
	}
	log.Info().Str("orcamento_id", id.String()).Msg("orcamento: excluído")
	return nil
}

func (s *orcamentoService) DefinirStatus(ctx context.Context, id uuid.UUID, status model.Status) (*dto.OrcamentoResponse, error) {
	if !status.Valido() {
		return nil, &ValidacaoError{Campos: map[string]string{"status": "oneof"}}
	}
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	orc.Status = status
	if err := s.repo.UpdateCabecalhoTx(ctx, nil, orc); err != nil {
		return nil, fmt.Errorf("atualizar status: %w", err)
	}
	return orcamentoToResponse(orc), nil
}

// DefinirCliente links the client and rebuilds the quotation number.
func (s *orcamentoService) DefinirCliente(ctx context.Context, id, clienteID uuid.UUID) (*dto.OrcamentoResponse, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return nil, naoEncontrado(err, "cliente")
	}
	orc.ClienteID = &c.ID
	orc.Cliente = c
	s.reconstruirNumero(ctx, orc)
	if err := s.repo.UpdateCabecalhoTx(ctx, nil, orc); err != nil {
		return nil, fmt.Errorf("definir cliente: %w", err)
	}
	return orcamentoToResponse(orc), nil
}

func (s *orcamentoService) ProximoNumero(ctx context.Context) string {
	return s.numeracao.ProximoNumero(ctx)
}

func primeiroItem(orc *model.Orcamento) (uuid.UUID, string) {
	if len(orc.Itens) == 0 {
		return uuid.Nil, ""
	}
	return orc.Itens[0].ID, orc.Itens[0].ProdutoNome
}

func (s *orcamentoService) reconstruirNumero(ctx context.Context, orc *model.Orcamento) {
	_, produto := primeiroItem(orc)
	var cliente, contato string
	if orc.Cliente != nil {
		cliente, contato = orc.Cliente.RazaoSocial, orc.Cliente.Contato
	}
	orc.Numero = s.numeracao.Reconstruir(ctx, orc.Numero, produto, cliente, contato)
}

// renumerarSeMudou rebuilds the number when the first item changed and a
// client is set. Returns true when the number changed.
func (s *orcamentoService) renumerarSeMudou(ctx context.Context, orc *model.Orcamento, primeiroAntes uuid.UUID) bool {
	if orc.Cliente == nil {
		return false
	}
	if atual, _ := primeiroItem(orc); atual == primeiroAntes {
		return false
	}
	antes := orc.Numero
	s.reconstruirNumero(ctx, orc)
	return orc.Numero != antes
}

// ── Items ────────────────────────────────────────────────────────────────────

// montarItem fills an editor from the request and appends the item to orc.
// Returns nil without error when the draft is incomplete.
func (s *orcamentoService) montarItem(ctx context.Context, orc *model.Orcamento, r dto.ItemRequest, catalogo CatalogoProdutos) (*model.ItemOrcamento, error) {
	pid, err := uuid.Parse(r.ProdutoID)
	if err != nil {
		return nil, &ValidacaoError{Campos: map[string]string{"produto_id": "uuid"}}
	}
	var img []byte
	var ct string
	if r.Imagem != nil && *r.Imagem != "" {
		if img, ct, err = decodificarImagem(*r.Imagem, s.imagemMax); err != nil {
			return nil, err
		}
	}

	ed := NovoEditorItem(catalogo, s.ids, s.numeracao)
	if err := ed.SelecionarProduto(ctx, pid); err != nil {
		if errors.Is(err, ErrNaoEncontrado) {
			return nil, &ValidacaoError{Campos: map[string]string{"produto_id": "exists"}}
		}
		return nil, err
	}
	if r.PrecoUnitario != nil {
		ed.DefinirPreco(*r.PrecoUnitario)
	}
	if r.TecidoNome != nil {
		comp := ""
		if r.TecidoComposicao != nil {
			comp = *r.TecidoComposicao
		}
		ed.DefinirTecido(*r.TecidoNome, comp)
	}
	if r.Cor != nil {
		ed.DefinirCor(*r.Cor)
	}
	for label, q := range r.Tamanhos {
		ed.DefinirQuantidade(label, quantidadeTexto(int(q)))
	}
	ed.DefinirQuantidadeTotal(quantidadeTexto(int(r.Quantidade)))
	ed.DefinirObservacoes(r.ObservacaoComercial, r.ObservacaoTecnica)
	for _, e := range estampasFromRequest(r.Estampas) {
		ed.AdicionarEstampa(e)
	}

	item := ed.AdicionarItem(ctx, orc)
	if item == nil {
		return nil, nil
	}
	if img != nil {
		item.ImagemChave, item.ImagemBase64 = s.guardarImagem(ctx, orc.ID, item.ID, img, ct)
	}
	return item, nil
}

// catalogoComNovos serves products that are not committed yet before falling
// back to the catalog.
type catalogoComNovos struct {
	base  CatalogoProdutos
	novos []model.Produto
}

func (c catalogoComNovos) ObterProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	for i := range c.novos {
		if c.novos[i].ID == id {
			p := c.novos[i]
			return &p, nil
		}
	}
	return c.base.ObterProduto(ctx, id)
}

// persistir runs the write of an item edit. A failure is logged and
// reported in the result; the in-memory quotation keeps the change.
func (s *orcamentoService) persistir(ctx context.Context, orc *model.Orcamento, itemID uuid.UUID, fn func(tx *gorm.DB) error) *dto.ItemResultado {
	res := &dto.ItemResultado{Alterado: true, Persistido: true}
	if itemID != uuid.Nil {
		res.ItemID = itemID.String()
	}
	if err := runTx(ctx, s.repo.DB(), fn); err != nil {
		log.Error().Err(err).Str("orcamento_id", orc.ID.String()).Msg("orcamento: falha ao gravar alteração de itens")
		res.Persistido = false
		res.Aviso = "A alteração não foi salva: " + err.Error()
	}
	res.Orcamento = orcamentoToResponse(orc)
	return res
}

func semAlteracao(orc *model.Orcamento, aviso string) *dto.ItemResultado {
	return &dto.ItemResultado{Orcamento: orcamentoToResponse(orc), Persistido: true, Aviso: aviso}
}

func chavesImagens(orc *model.Orcamento) []*string {
	chaves := make([]*string, 0, len(orc.Itens))
	for i := range orc.Itens {
		chaves = append(chaves, orc.Itens[i].ImagemChave)
	}
	return chaves
}

func idsItens(orc *model.Orcamento) []uuid.UUID {
	ids := make([]uuid.UUID, len(orc.Itens))
	for i := range orc.Itens {
		ids[i] = orc.Itens[i].ID
	}
	return ids
}

func (s *orcamentoService) AdicionarItem(ctx context.Context, id uuid.UUID, req dto.ItemRequest) (*dto.ItemResultado, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	numeroAntes := orc.Numero
	item, err := s.montarItem(ctx, orc, req, s.produtos)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return semAlteracao(orc, "Item incompleto: selecione um produto e informe um preço maior que zero."), nil
	}
	novo := *item
	res := s.persistir(ctx, orc, novo.ID, func(tx *gorm.DB) error {
		if err := s.repo.CreateItemTx(ctx, tx, &novo); err != nil {
			return err
		}
		if orc.Numero != numeroAntes {
			return s.repo.UpdateCabecalhoTx(ctx, tx, orc)
		}
		return nil
	})
	if !res.Persistido {
		s.descartarImagens(ctx, novo.ImagemChave)
	}
	return res, nil
}

func (s *orcamentoService) AtualizarItem(ctx context.Context, id, itemID uuid.UUID, req dto.AtualizarItemRequest) (*dto.ItemResultado, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := PatchItem{
		PrecoUnitario:       req.PrecoUnitario,
		TecidoNome:          req.TecidoNome,
		TecidoComposicao:    req.TecidoComposicao,
		Cor:                 req.Cor,
		Tamanhos:            dto.MapaQuantidades(req.Tamanhos),
		ObservacaoComercial: req.ObservacaoComercial,
		ObservacaoTecnica:   req.ObservacaoTecnica,
	}
	if req.Quantidade != nil {
		q := int(*req.Quantidade)
		patch.Quantidade = &q
	}
	if req.Estampas != nil {
		e := estampasFromRequest(*req.Estampas)
		patch.Estampas = &e
	}
	if req.Imagem != nil {
		if *req.Imagem == "" {
			patch.LimparImagem = true
		} else if orc.IndiceItem(itemID) >= 0 {
			dados, ct, err := decodificarImagem(*req.Imagem, s.imagemMax)
			if err != nil {
				return nil, err
			}
			patch.ImagemChave, patch.ImagemBase64 = s.guardarImagem(ctx, orc.ID, itemID, dados, ct)
		}
	}

	var chaveAntes *string
	if i := orc.IndiceItem(itemID); i >= 0 {
		chaveAntes = orc.Itens[i].ImagemChave
	}
	if !AtualizarItem(orc, itemID, patch) {
		return semAlteracao(orc, "Item não encontrado no orçamento."), nil
	}
	item := &orc.Itens[orc.IndiceItem(itemID)]
	res := s.persistir(ctx, orc, itemID, func(tx *gorm.DB) error {
		return s.repo.UpdateItemTx(ctx, tx, item)
	})
	switch {
	case !res.Persistido:
		s.descartarImagens(ctx, patch.ImagemChave)
	case patch.LimparImagem || patch.ImagemChave != nil || patch.ImagemBase64 != nil:
		s.descartarImagens(ctx, chaveAntes)
	}
	return res, nil
}

func (s *orcamentoService) RemoverItem(ctx context.Context, id, itemID uuid.UUID) (*dto.ItemResultado, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	primeiroAntes, _ := primeiroItem(orc)
	var chave *string
	if i := orc.IndiceItem(itemID); i >= 0 {
		chave = orc.Itens[i].ImagemChave
	}
	if !RemoverItem(orc, itemID) {
		return semAlteracao(orc, "Item não encontrado no orçamento."), nil
	}
	renumerado := s.renumerarSeMudou(ctx, orc, primeiroAntes)
	res := s.persistir(ctx, orc, itemID, func(tx *gorm.DB) error {
		if err := s.repo.DeleteItemTx(ctx, tx, itemID); err != nil {
			return err
		}
		if err := s.repo.UpdatePosicoesTx(ctx, tx, idsItens(orc)); err != nil {
			return err
		}
		if renumerado {
			return s.repo.UpdateCabecalhoTx(ctx, tx, orc)
		}
		return nil
	})
	if res.Persistido {
		s.descartarImagens(ctx, chave)
	}
	return res, nil
}

// ReordenarItens drops origem before destino, or at the end when req.Fim is set.
func (s *orcamentoService) ReordenarItens(ctx context.Context, id uuid.UUID, req dto.MoverItemRequest) (*dto.ItemResultado, error) {
	origem, err := uuid.Parse(req.OrigemID)
	if err != nil {
		return nil, &ValidacaoError{Campos: map[string]string{"origem_id": "uuid"}}
	}
	var destino uuid.UUID
	if !req.Fim {
		if destino, err = uuid.Parse(req.DestinoID); err != nil {
			return nil, &ValidacaoError{Campos: map[string]string{"destino_id": "required_without"}}
		}
	}
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}

	primeiroAntes, _ := primeiroItem(orc)
	tabela := reordenar.NovaTabelaItens(func(novos []model.ItemOrcamento) {
		orc.Itens = novos
		orc.Renumerar()
	})
	tabela.Iniciar(origem)
	var mudou bool
	if req.Fim {
		tabela.SobreFim()
		mudou = tabela.SoltarNoFim(orc.Itens)
	} else {
		tabela.Sobre(destino)
		mudou = tabela.Soltar(orc.Itens, destino)
	}
	if !mudou {
		return semAlteracao(orc, ""), nil
	}
	return s.salvarOrdem(ctx, orc, primeiroAntes), nil
}

// DefinirOrdem replaces the item order. ids must be a permutation of the
// current item ids.
func (s *orcamentoService) DefinirOrdem(ctx context.Context, id uuid.UUID, raw []string) (*dto.ItemResultado, error) {
	ids, err := parseIDs(raw)
	if err != nil {
		return nil, err
	}
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reordenar.EhPermutacao(orc.Itens, reordenar.ChaveItem, ids) {
		return nil, &ValidacaoError{Campos: map[string]string{"ids": "permutacao"}}
	}
	primeiroAntes, _ := primeiroItem(orc)
	orc.Itens = reordenar.Aplicar(orc.Itens, reordenar.ChaveItem, ids)
	orc.Renumerar()
	return s.salvarOrdem(ctx, orc, primeiroAntes), nil
}

func (s *orcamentoService) salvarOrdem(ctx context.Context, orc *model.Orcamento, primeiroAntes uuid.UUID) *dto.ItemResultado {
	renumerado := s.renumerarSeMudou(ctx, orc, primeiroAntes)
	return s.persistir(ctx, orc, uuid.Nil, func(tx *gorm.DB) error {
		if err := s.repo.UpdatePosicoesTx(ctx, tx, idsItens(orc)); err != nil {
			return err
		}
		if renumerado {
			return s.repo.UpdateCabecalhoTx(ctx, tx, orc)
		}
		return nil
	})
}

// ── Documents ────────────────────────────────────────────────────────────────

var naoSeguro = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func nomeArquivo(orc *model.Orcamento, ext string) string {
	base := naoSeguro.ReplaceAllString(prefixo(orc.Numero), "")
	if base == "" {
		base = orc.ID.String()[:8]
	}
	return "orcamento-" + base + "." + ext
}

func (s *orcamentoService) GerarPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := documento.Montar(orc, s.emissor, nil)
	var buf bytes.Buffer
	if err := infra.GerarOrcamentoPDF(doc, s.carregadorImagens(ctx), &buf); err != nil {
		return nil, "", fmt.Errorf("gerar PDF: %w", err)
	}
	return buf.Bytes(), nomeArquivo(orc, "pdf"), nil
}

func (s *orcamentoService) GerarXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, "", err
	}
	b, err := infra.GerarOrcamentoXLSX(documento.Montar(orc, s.emissor, nil))
	if err != nil {
		return nil, "", fmt.Errorf("gerar planilha: %w", err)
	}
	return b, nomeArquivo(orc, "xlsx"), nil
}

// Enviar enqueues the email delivery; rendering happens in the worker.
func (s *orcamentoService) Enviar(ctx context.Context, id uuid.UUID, req dto.EnviarOrcamentoRequest) error {
	if s.despacho == nil {
		return ErrIndisponivel
	}
	orc, err := s.carregar(ctx, id)
	if err != nil {
		return err
	}
	err = s.despacho.EnqueueEnvioOrcamento(ctx, worker.EnvioOrcamentoPayload{
		OrcamentoID: orc.ID.String(),
		Numero:      orc.Numero,
		Email:       req.Email,
		Mensagem:    req.Mensagem,
	})
	if err != nil {
		log.Error().Err(err).Str("orcamento_id", orc.ID.String()).Msg("orcamento: falha ao enfileirar envio")
		return fmt.Errorf("%w: %w", ErrIndisponivel, err)
	}
	return nil
}
