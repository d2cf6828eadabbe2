package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"orcamentos/internal/dto"
	"orcamentos/internal/idgen"
	"orcamentos/internal/infra"
	"orcamentos/internal/model"
	"orcamentos/internal/repository"
	"orcamentos/internal/textnorm"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Interpretador turns a free-text instruction into a tagged action.
type Interpretador interface {
	Interpretar(ctx context.Context, pedido dto.PedidoAssistente) (*dto.AcaoAssistente, error)
}

// ConfirmacaoStore keeps pending confirmations until they are consumed or expire.
type ConfirmacaoStore interface {
	Salvar(ctx context.Context, token string, dados []byte, ttl time.Duration) error
	Consumir(ctx context.Context, token string) ([]byte, error)
}

// AssistenteService applies actions produced by the AI assistant. Quotations
// that name unknown clients or products, or names matching several records,
// are never created implicitly: they wait for an explicit confirmation.
type AssistenteService interface {
	Interpretar(ctx context.Context, req dto.InterpretarRequest) (*dto.AcaoAssistente, error)
	Aplicar(ctx context.Context, acao dto.AcaoAssistente) (*dto.AcaoResultado, error)
	Confirmar(ctx context.Context, token string, req dto.ConfirmarRequest) (*dto.AcaoResultado, error)
}

type assistenteService struct {
	ia           Interpretador
	clientes     ClienteService
	produtos     ProdutoService
	orcamentos   OrcamentoService
	clientesRepo repository.ClienteRepository
	produtosRepo repository.ProdutoRepository
	confirmacoes ConfirmacaoStore
	ids          idgen.Provider
	ttl          time.Duration
	agora        func() time.Time
}

// NewAssistenteService wires the assistant. ia may be nil, in which case only
// Aplicar and Confirmar are available.
func NewAssistenteService(
	ia Interpretador,
	clientes ClienteService,
	produtos ProdutoService,
	orcamentos OrcamentoService,
	clientesRepo repository.ClienteRepository,
	produtosRepo repository.ProdutoRepository,
	confirmacoes ConfirmacaoStore,
	ids idgen.Provider,
	ttl time.Duration,
) AssistenteService {
	if ids == nil {
		ids = idgen.UUID()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &assistenteService{
		ia:           ia,
		clientes:     clientes,
		produtos:     produtos,
		orcamentos:   orcamentos,
		clientesRepo: clientesRepo,
		produtosRepo: produtosRepo,
		confirmacoes: confirmacoes,
		ids:          ids,
		ttl:          ttl,
		agora:        time.Now,
	}
}

// pendencia is what a confirmation token stores.
type pendencia struct {
	Orcamento        dto.OrcamentoAssistente `json:"orcamento"`
	ClientesAusentes []string                `json:"clientes_ausentes"`
	ProdutosAusentes []string                `json:"produtos_ausentes"`
	Ambiguos         []dto.Ambiguidade       `json:"ambiguos,omitempty"`
	ExpiraEm         time.Time               `json:"expira_em"`
}

func (s *assistenteService) Interpretar(ctx context.Context, req dto.InterpretarRequest) (*dto.AcaoAssistente, error) {
	if s.ia == nil {
		return nil, fmt.Errorf("assistente: %w", ErrIndisponivel)
	}
	pedido := dto.PedidoAssistente{Instrucao: req.Instrucao}

	clientes, _, err := s.clientesRepo.List(ctx, dto.ClienteFilter{Page: 1, Limit: 200})
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	for _, c := range clientes {
		pedido.Clientes = append(pedido.Clientes, c.RazaoSocial)
	}
	produtos, _, err := s.produtosRepo.List(ctx, dto.ProdutoFilter{Page: 1, Limit: 200})
	if err != nil {
		return nil, fmt.Errorf("listar produtos: %w", err)
	}
	for _, p := range produtos {
		pedido.Produtos = append(pedido.Produtos, p.Nome)
	}

	acao, err := s.ia.Interpretar(ctx, pedido)
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			return nil, fmt.Errorf("assistente: %w: %w", ErrIndisponivel, err)
		}
		return nil, fmt.Errorf("assistente: %w", err)
	}
	return acao, nil
}

func (s *assistenteService) Aplicar(ctx context.Context, acao dto.AcaoAssistente) (*dto.AcaoResultado, error) {
	switch acao.Acao {
	case dto.AcaoCriarCliente:
		var req dto.CriarClienteRequest
		if err := decodificarDados(acao.Dados, &req); err != nil {
			return nil, err
		}
		c, err := s.clientes.Criar(ctx, req)
		if err != nil {
			return nil, err
		}
		return &dto.AcaoResultado{Acao: acao.Acao, Resultado: resultadoCriacao(c.Reutilizado), Cliente: &c.ClienteResponse}, nil

	case dto.AcaoCriarProduto:
		var req dto.CriarProdutoRequest
		if err := decodificarDados(acao.Dados, &req); err != nil {
			return nil, err
		}
		p, err := s.produtos.Criar(ctx, req)
		if err != nil {
			return nil, err
		}
		return &dto.AcaoResultado{Acao: acao.Acao, Resultado: resultadoCriacao(p.Reutilizado), Produto: &p.ProdutoResponse}, nil

	case dto.AcaoCriarOrcamento:
		var oa dto.OrcamentoAssistente
		if err := decodificarDados(acao.Dados, &oa); err != nil {
			return nil, err
		}
		return s.criarOrcamento(ctx, oa)

	case dto.AcaoExtrairOrcamento:
		var oa dto.OrcamentoAssistente
		if err := decodificarDados(acao.Dados, &oa); err != nil {
			return nil, err
		}
		res, err := s.resolver(ctx, oa, nil)
		if err != nil {
			return nil, err
		}
		return &dto.AcaoResultado{
			Acao:      acao.Acao,
			Resultado: dto.ResultadoRascunho,
			Rascunho:  res.rascunho,
			Ausentes:  append(res.clientesAusentes, res.produtosAusentes...),
			Ambiguos:  res.ambiguos,
		}, nil

	default:
		log.Info().Str("acao", acao.Acao).Msg("assistente: ação ignorada")
		return &dto.AcaoResultado{
			Acao:      dto.AcaoDesconhecida,
			Resultado: dto.ResultadoIgnorado,
			Mensagem:  "Não entendi a instrução. Reformule o pedido.",
		}, nil
	}
}

func resultadoCriacao(reutilizado bool) string {
	if reutilizado {
		return dto.ResultadoReutilizado
	}
	return dto.ResultadoCriado
}

// decodificarDados decodes the action payload and validates it with the same
// rules as the HTTP endpoints.
func decodificarDados(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return &ValidacaoError{Campos: map[string]string{"dados": "required"}}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ValidacaoError{Campos: map[string]string{"dados": "json"}}
	}
	if campos := dto.Campos(v); campos != nil {
		return &ValidacaoError{Campos: campos}
	}
	return nil
}

func (s *assistenteService) criarOrcamento(ctx context.Context, oa dto.OrcamentoAssistente) (*dto.AcaoResultado, error) {
	res, err := s.resolver(ctx, oa, nil)
	if err != nil {
		return nil, err
	}
	if res.completa() {
		orc, err := s.orcamentos.Criar(ctx, *res.rascunho)
		if err != nil {
			return nil, err
		}
		return &dto.AcaoResultado{Acao: dto.AcaoCriarOrcamento, Resultado: dto.ResultadoCriado, Orcamento: orc}, nil
	}

	// The records the confirmation would create must already be valid.
	if _, _, err := novosCadastros(oa, res); err != nil {
		return nil, err
	}

	p := pendencia{
		Orcamento:        oa,
		ClientesAusentes: res.clientesAusentes,
		ProdutosAusentes: res.produtosAusentes,
		Ambiguos:         res.ambiguos,
		ExpiraEm:         s.agora().Add(s.ttl),
	}
	dados, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	token := s.ids.NovoID().String()
	if err := s.confirmacoes.Salvar(ctx, token, dados, s.ttl); err != nil {
		return nil, fmt.Errorf("salvar confirmação: %w", err)
	}
	log.Info().Str("token", token).
		Strs("clientes", res.clientesAusentes).
		Strs("produtos", res.produtosAusentes).
		Int("ambiguos", len(res.ambiguos)).
		Msg("assistente: orçamento aguardando confirmação")

	return &dto.AcaoResultado{
		Acao:      dto.AcaoCriarOrcamento,
		Resultado: dto.ResultadoPendente,
		Mensagem:  mensagemPendente(res),
		Confirmacao: &dto.ConfirmacaoPendente{
			Token:            token,
			ClientesAusentes: res.clientesAusentes,
			ProdutosAusentes: res.produtosAusentes,
			Ambiguos:         res.ambiguos,
			ExpiraEm:         p.ExpiraEm,
		},
	}, nil
}

func mensagemPendente(res *resolucao) string {
	var partes []string
	if len(res.clientesAusentes) > 0 {
		partes = append(partes, "Cadastros inexistentes de clientes: "+strings.Join(res.clientesAusentes, ", ")+".")
	}
	if len(res.produtosAusentes) > 0 {
		partes = append(partes, "Cadastros inexistentes de produtos: "+strings.Join(res.produtosAusentes, ", ")+".")
	}
	for _, a := range res.ambiguos {
		nomes := make([]string, len(a.Candidatos))
		for i, c := range a.Candidatos {
			nomes[i] = c.Nome
		}
		partes = append(partes, fmt.Sprintf("%q corresponde a mais de um %s: %s.", a.Nome, a.Tipo, strings.Join(nomes, ", ")))
	}
	return strings.Join(partes, " ") + " Confirme para continuar."
}

// novosCadastros builds the client and product requests a confirmation would
// create and validates them with the rules of the HTTP endpoints.
func novosCadastros(oa dto.OrcamentoAssistente, res *resolucao) ([]dto.CriarClienteRequest, []dto.CriarProdutoRequest, error) {
	campos := map[string]string{}
	clientes := make([]dto.CriarClienteRequest, 0, len(res.clientesAusentes))
	for _, nome := range res.clientesAusentes {
		r := dto.CriarClienteRequest{RazaoSocial: nome, Contato: oa.Contato}
		for k, v := range dto.Campos(r) {
			campos["clientes["+nome+"]."+k] = v
		}
		clientes = append(clientes, r)
	}

	// New products need a price to become a valid line.
	for i, it := range oa.Itens {
		if contem(res.produtosAusentes, it.Produto) && (it.PrecoUnitario == nil || !it.PrecoUnitario.IsPositive()) {
			campos[fmt.Sprintf("Itens[%d].PrecoUnitario", i)] = "required"
		}
	}
	produtos := make([]dto.CriarProdutoRequest, 0, len(res.produtosAusentes))
	for _, nome := range res.produtosAusentes {
		r := dto.CriarProdutoRequest{Nome: nome}
		for _, it := range oa.Itens {
			if textnorm.Iguais(it.Produto, nome) && it.PrecoUnitario != nil {
				r.PrecoBase = *it.PrecoUnitario
				break
			}
		}
		for k, v := range dto.Campos(r) {
			campos["produtos["+nome+"]."+k] = v
		}
		produtos = append(produtos, r)
	}

	if len(campos) > 0 {
		return nil, nil, &ValidacaoError{Campos: campos}
	}
	return clientes, produtos, nil
}

// Confirmar applies or cancels a pending quotation. The token is consumed up
// front and saved again when the quotation could not be written, so the same
// confirmation can be retried until it expires.
func (s *assistenteService) Confirmar(ctx context.Context, token string, req dto.ConfirmarRequest) (*dto.AcaoResultado, error) {
	dados, err := s.confirmacoes.Consumir(ctx, token)
	if err != nil {
		if errors.Is(err, infra.ErrConfirmacaoAusente) {
			return nil, fmt.Errorf("confirmação: %w", ErrNaoEncontrado)
		}
		return nil, fmt.Errorf("ler confirmação: %w", err)
	}
	if req.Confirmar == nil || !*req.Confirmar {
		log.Info().Str("token", token).Msg("assistente: confirmação cancelada")
		return &dto.AcaoResultado{Acao: dto.AcaoCriarOrcamento, Resultado: dto.ResultadoCancelado}, nil
	}

	var p pendencia
	if err := json.Unmarshal(dados, &p); err != nil {
		return nil, fmt.Errorf("confirmação corrompida: %w", err)
	}

	orc, err := s.concluir(ctx, p, req.Escolhas)
	if err != nil {
		s.restaurar(ctx, token, dados, p.ExpiraEm)
		return nil, err
	}
	log.Info().Str("token", token).Str("orcamento_id", orc.ID).Msg("assistente: confirmação aplicada")
	return &dto.AcaoResultado{Acao: dto.AcaoCriarOrcamento, Resultado: dto.ResultadoCriado, Orcamento: orc}, nil
}

// concluir resolves the names again, since records may have changed while the
// token was pending, and writes the new records and the quotation in one
// transaction.
func (s *assistenteService) concluir(ctx context.Context, p pendencia, esc *dto.Escolhas) (*dto.OrcamentoResponse, error) {
	res, err := s.resolver(ctx, p.Orcamento, esc)
	if err != nil {
		return nil, err
	}
	if len(res.ambiguos) > 0 {
		campos := map[string]string{}
		for _, a := range res.ambiguos {
			campos[campoEscolha(a.Tipo, a.Nome)] = "required"
		}
		return nil, &ValidacaoError{Campos: campos}
	}
	reqClientes, reqProdutos, err := novosCadastros(p.Orcamento, res)
	if err != nil {
		return nil, err
	}

	novos := Cadastros{}
	for _, r := range reqClientes {
		c := clienteFromRequest(r)
		c.ID = s.ids.NovoID()
		novos.Clientes = append(novos.Clientes, *c)
		id := c.ID.String()
		res.rascunho.ClienteID = &id
	}
	for _, r := range reqProdutos {
		pr := produtoFromRequest(r)
		pr.ID = s.ids.NovoID()
		novos.Produtos = append(novos.Produtos, *pr)
		for i, nome := range res.itensAusentes {
			if textnorm.Iguais(nome, r.Nome) {
				res.rascunho.Itens[i].ProdutoID = pr.ID.String()
			}
		}
	}
	novos.Gravar = func(tx *gorm.DB) error {
		for i := range novos.Clientes {
			if err := s.clientesRepo.CreateTx(ctx, tx, &novos.Clientes[i]); err != nil {
				return fmt.Errorf("criar cliente %q: %w", novos.Clientes[i].RazaoSocial, err)
			}
		}
		for i := range novos.Produtos {
			if err := s.produtosRepo.CreateTx(ctx, tx, &novos.Produtos[i]); err != nil {
				return fmt.Errorf("criar produto %q: %w", novos.Produtos[i].Nome, err)
			}
		}
		return nil
	}
	return s.orcamentos.CriarComCadastros(ctx, *res.rascunho, novos)
}

// restaurar puts a consumed token back for what is left of its lifetime.
func (s *assistenteService) restaurar(ctx context.Context, token string, dados []byte, expira time.Time) {
	ttl := s.ttl
	if !expira.IsZero() {
		ttl = expira.Sub(s.agora())
	}
	if ttl <= 0 {
		return
	}
	if err := s.confirmacoes.Salvar(context.WithoutCancel(ctx), token, dados, ttl); err != nil {
		log.Warn().Err(err).Str("token", token).Msg("assistente: falha ao restaurar confirmação")
	}
}

func campoEscolha(tipo, nome string) string {
	if tipo == dto.TipoProduto {
		return "escolhas.produtos." + nome
	}
	return "escolhas.clientes." + nome
}

// ── Name resolution ──────────────────────────────────────────────────────────

type resolucao struct {
	rascunho         *dto.CriarOrcamentoRequest
	clientesAusentes []string
	produtosAusentes []string
	ambiguos         []dto.Ambiguidade
	// itensAusentes maps the index of a line to the product name it lacks.
	itensAusentes map[int]string
}

func (r *resolucao) completa() bool {
	return len(r.clientesAusentes) == 0 && len(r.produtosAusentes) == 0 && len(r.ambiguos) == 0
}

// resolver maps client and product names to ids and builds the quotation
// request. Names that match nothing are reported, never created. A partial
// name is accepted only when it matches a single record, unless esc picks one
// of the candidates.
func (s *assistenteService) resolver(ctx context.Context, oa dto.OrcamentoAssistente, esc *dto.Escolhas) (*resolucao, error) {
	res := &resolucao{
		rascunho: &dto.CriarOrcamentoRequest{
			Observacoes:        oa.Observacoes,
			CondicoesPagamento: oa.CondicoesPagamento,
			PrazoEntrega:       oa.PrazoEntrega,
			Validade:           oa.Validade,
			Frete:              oa.Frete,
		},
		itensAusentes: map[int]string{},
	}
	var escClientes, escProdutos map[string]string
	if esc != nil {
		escClientes, escProdutos = esc.Clientes, esc.Produtos
	}

	if nome := strings.TrimSpace(oa.Cliente); nome != "" {
		c, candidatos, err := s.acharCliente(ctx, nome, escolha(escClientes, nome))
		if err != nil {
			return nil, err
		}
		switch {
		case c != nil:
			id := c.ID.String()
			res.rascunho.ClienteID = &id
		case len(candidatos) > 0:
			a := dto.Ambiguidade{Tipo: dto.TipoCliente, Nome: nome}
			for _, x := range candidatos {
				a.Candidatos = append(a.Candidatos, dto.Candidato{ID: x.ID.String(), Nome: x.RazaoSocial})
			}
			res.ambiguos = append(res.ambiguos, a)
		default:
			res.clientesAusentes = append(res.clientesAusentes, nome)
		}
	}

	for i, it := range oa.Itens {
		nome := strings.TrimSpace(it.Produto)
		p, candidatos, err := s.acharProduto(ctx, nome, escolha(escProdutos, nome))
		if err != nil {
			return nil, err
		}
		ir := dto.ItemRequest{
			PrecoUnitario:    it.PrecoUnitario,
			TecidoNome:       it.TecidoNome,
			TecidoComposicao: it.TecidoComposicao,
			Cor:              it.Cor,
			Tamanhos:         it.Tamanhos,
			Quantidade:       it.Quantidade,
			Estampas:         it.Estampas,
		}
		switch {
		case p != nil:
			ir.ProdutoID = p.ID.String()
		case len(candidatos) > 0:
			if !ambiguo(res.ambiguos, dto.TipoProduto, nome) {
				a := dto.Ambiguidade{Tipo: dto.TipoProduto, Nome: nome}
				for _, x := range candidatos {
					a.Candidatos = append(a.Candidatos, dto.Candidato{ID: x.ID.String(), Nome: x.Nome})
				}
				res.ambiguos = append(res.ambiguos, a)
			}
		default:
			res.itensAusentes[i] = nome
			if !contem(res.produtosAusentes, nome) {
				res.produtosAusentes = append(res.produtosAusentes, nome)
			}
		}
		res.rascunho.Itens = append(res.rascunho.Itens, ir)
	}
	return res, nil
}

// acharCliente returns the client named nome, or the candidates when the name
// only partially matches several of them.
func (s *assistenteService) acharCliente(ctx context.Context, nome, escolhido string) (*model.Cliente, []model.Cliente, error) {
	c, err := s.clientesRepo.FindByNome(ctx, nome)
	if err == nil {
		return c, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("buscar cliente %q: %w", nome, err)
	}
	parecidos, err := s.clientesRepo.BuscarPorTrecho(ctx, nome)
	if err != nil {
		return nil, nil, fmt.Errorf("buscar cliente %q: %w", nome, err)
	}
	switch {
	case len(parecidos) == 1:
		return &parecidos[0], nil, nil
	case len(parecidos) > 1 && escolhido != "":
		for i := range parecidos {
			if parecidos[i].ID.String() == escolhido {
				return &parecidos[i], nil, nil
			}
		}
		return nil, nil, &ValidacaoError{Campos: map[string]string{campoEscolha(dto.TipoCliente, nome): "oneof"}}
	}
	return nil, parecidos, nil
}

func (s *assistenteService) acharProduto(ctx context.Context, nome, escolhido string) (*model.Produto, []model.Produto, error) {
	p, err := s.produtosRepo.FindByNome(ctx, nome)
	if err == nil {
		return p, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("buscar produto %q: %w", nome, err)
	}
	parecidos, err := s.produtosRepo.BuscarPorTrecho(ctx, nome)
	if err != nil {
		return nil, nil, fmt.Errorf("buscar produto %q: %w", nome, err)
	}
	switch {
	case len(parecidos) == 1:
		return &parecidos[0], nil, nil
	case len(parecidos) > 1 && escolhido != "":
		for i := range parecidos {
			if parecidos[i].ID.String() == escolhido {
				return &parecidos[i], nil, nil
			}
		}
		return nil, nil, &ValidacaoError{Campos: map[string]string{campoEscolha(dto.TipoProduto, nome): "oneof"}}
	}
	return nil, parecidos, nil
}

// escolha looks nome up in the choices ignoring case and accents.
func escolha(escolhas map[string]string, nome string) string {
	for k, v := range escolhas {
		if textnorm.Iguais(k, nome) {
			return v
		}
	}
	return ""
}

func ambiguo(lista []dto.Ambiguidade, tipo, nome string) bool {
	for _, a := range lista {
		if a.Tipo == tipo && textnorm.Iguais(a.Nome, nome) {
			return true
		}
	}
	return false
}

func contem(nomes []string, nome string) bool {
	for _, n := range nomes {
		if textnorm.Iguais(n, nome) {
			return true
		}
	}
	return false
}
