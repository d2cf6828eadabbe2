package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"orcamentos/internal/dto"
	"orcamentos/internal/model"
	"orcamentos/internal/repository"
	"orcamentos/internal/textnorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory ClienteRepository ──────────────────────────────────────────────

type memClienteRepo struct {
	itens []*model.Cliente
}

func newMemClienteRepo(cs ...model.Cliente) *memClienteRepo {
	r := &memClienteRepo{}
	for i := range cs {
		c := cs[i]
		_ = r.Create(context.Background(), &c)
	}
	return r
}

func (r *memClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Ativo = true
	cp := *c
	r.itens = append(r.itens, &cp)
	return nil
}

func (r *memClienteRepo) CreateTx(ctx context.Context, _ *gorm.DB, c *model.Cliente) error {
	return r.Create(ctx, c)
}

func (r *memClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	for _, c := range r.itens {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memClienteRepo) FindByNome(_ context.Context, nome string) (*model.Cliente, error) {
	for _, c := range r.itens {
		if c.Ativo && textnorm.Iguais(c.RazaoSocial, nome) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memClienteRepo) BuscarPorTrecho(_ context.Context, trecho string) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.itens {
		if c.Ativo && textnorm.Contem(c.RazaoSocial, trecho) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var out []model.Cliente
	for _, c := range r.itens {
		if c.Ativo {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	for i, x := range r.itens {
		if x.ID == c.ID {
			cp := *c
			r.itens[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, c := range r.itens {
		if c.ID == id {
			c.Ativo = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── In-memory ProdutoRepository ──────────────────────────────────────────────

type memProdutoRepo struct {
	itens  []*model.Produto
	buscas int
}

func newMemProdutoRepo(ps ...model.Produto) *memProdutoRepo {
	r := &memProdutoRepo{}
	for i := range ps {
		p := ps[i]
		_ = r.Create(context.Background(), &p)
	}
	return r
}

func (r *memProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Ativo = true
	cp := *p
	r.itens = append(r.itens, &cp)
	return nil
}

func (r *memProdutoRepo) CreateTx(ctx context.Context, _ *gorm.DB, p *model.Produto) error {
	return r.Create(ctx, p)
}

func (r *memProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	r.buscas++
	for _, p := range r.itens {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProdutoRepo) FindByNome(_ context.Context, nome string) (*model.Produto, error) {
	for _, p := range r.itens {
		if p.Ativo && textnorm.Iguais(p.Nome, nome) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProdutoRepo) BuscarPorTrecho(_ context.Context, trecho string) ([]model.Produto, error) {
	var out []model.Produto
	for _, p := range r.itens {
		if p.Ativo && textnorm.Contem(p.Nome, trecho) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProdutoRepo) List(_ context.Context, _ dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var out []model.Produto
	for _, p := range r.itens {
		if p.Ativo {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memProdutoRepo) Update(_ context.Context, p *model.Produto) error {
	for i, x := range r.itens {
		if x.ID == p.ID {
			cp := *p
			r.itens[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memProdutoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, p := range r.itens {
		if p.ID == id {
			p.Ativo = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── In-memory OrcamentoRepository ────────────────────────────────────────────

var errBanco = errors.New("conexão recusada")

type memOrcamentoRepo struct {
	orcs      map[uuid.UUID]*model.Orcamento
	ordem     []uuid.UUID
	ultimo    string
	ultimoErr error
	falhar    bool
	escritas  int
}

var _ repository.OrcamentoRepository = (*memOrcamentoRepo)(nil)

func newMemOrcamentoRepo() *memOrcamentoRepo {
	return &memOrcamentoRepo{orcs: make(map[uuid.UUID]*model.Orcamento)}
}

func copiar(o *model.Orcamento) *model.Orcamento {
	cp := *o
	cp.Itens = make([]model.ItemOrcamento, len(o.Itens))
	for i, it := range o.Itens {
		it.Tamanhos = it.Tamanhos.Copia()
		it.Estampas = append([]model.Estampa(nil), it.Estampas...)
		cp.Itens[i] = it
	}
	if o.Cliente != nil {
		c := *o.Cliente
		cp.Cliente = &c
	}
	return &cp
}

func (r *memOrcamentoRepo) escrever() error {
	r.escritas++
	if r.falhar {
		return errBanco
	}
	return nil
}

func (r *memOrcamentoRepo) DB() *gorm.DB { return nil }

func (r *memOrcamentoRepo) Create(_ context.Context, _ *gorm.DB, o *model.Orcamento) error {
	if err := r.escrever(); err != nil {
		return err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	r.orcs[o.ID] = copiar(o)
	r.ordem = append(r.ordem, o.ID)
	r.ultimo = o.Numero
	return nil
}

func (r *memOrcamentoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Orcamento, error) {
	o, ok := r.orcs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := copiar(o)
	sort.SliceStable(cp.Itens, func(i, j int) bool { return cp.Itens[i].Posicao < cp.Itens[j].Posicao })
	return cp, nil
}

func (r *memOrcamentoRepo) List(_ context.Context, f repository.OrcamentoFiltro) ([]model.Orcamento, int64, error) {
	var out []model.Orcamento
	for i := len(r.ordem) - 1; i >= 0; i-- {
		o := r.orcs[r.ordem[i]]
		if o == nil {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.ClienteID != nil && (o.ClienteID == nil || *o.ClienteID != *f.ClienteID) {
			continue
		}
		out = append(out, *copiar(o))
	}
	return out, int64(len(out)), nil
}

func (r *memOrcamentoRepo) UltimoNumero(_ context.Context) (string, error) {
	if r.ultimoErr != nil {
		return "", r.ultimoErr
	}
	if r.ultimo == "" {
		return "", gorm.ErrRecordNotFound
	}
	return r.ultimo, nil
}

func (r *memOrcamentoRepo) UpdateCabecalhoTx(_ context.Context, _ *gorm.DB, o *model.Orcamento) error {
	if err := r.escrever(); err != nil {
		return err
	}
	atual, ok := r.orcs[o.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	itens := atual.Itens
	cp := copiar(o)
	cp.Itens = itens
	r.orcs[o.ID] = cp
	return nil
}

func (r *memOrcamentoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.orcs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.orcs, id)
	return nil
}

func (r *memOrcamentoRepo) CreateItemTx(_ context.Context, _ *gorm.DB, item *model.ItemOrcamento) error {
	if err := r.escrever(); err != nil {
		return err
	}
	o, ok := r.orcs[item.OrcamentoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Itens = append(o.Itens, *item)
	return nil
}

func (r *memOrcamentoRepo) UpdateItemTx(_ context.Context, _ *gorm.DB, item *model.ItemOrcamento) error {
	if err := r.escrever(); err != nil {
		return err
	}
	o, ok := r.orcs[item.OrcamentoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range o.Itens {
		if o.Itens[i].ID == item.ID {
			o.Itens[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memOrcamentoRepo) DeleteItemTx(_ context.Context, _ *gorm.DB, itemID uuid.UUID) error {
	if err := r.escrever(); err != nil {
		return err
	}
	for _, o := range r.orcs {
		for i := range o.Itens {
			if o.Itens[i].ID == itemID {
				o.Itens = append(o.Itens[:i], o.Itens[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (r *memOrcamentoRepo) UpdatePosicoesTx(_ context.Context, _ *gorm.DB, ids []uuid.UUID) error {
	if err := r.escrever(); err != nil {
		return err
	}
	pos := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	for _, o := range r.orcs {
		for i := range o.Itens {
			if p, ok := pos[o.Itens[i].ID]; ok {
				o.Itens[i].Posicao = p
			}
		}
	}
	return nil
}

// ── Other collaborators ──────────────────────────────────────────────────────

// catalogoRepo adapts a ProdutoRepository to CatalogoProdutos without a cache.
type catalogoRepo struct{ repo repository.ProdutoRepository }

func (c catalogoRepo) ObterProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	p, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "produto")
	}
	return p, nil
}

type memImagens struct {
	mu     sync.Mutex
	objs   map[string][]byte
	falhar bool
}

func newMemImagens() *memImagens { return &memImagens{objs: make(map[string][]byte)} }

func (m *memImagens) Salvar(_ context.Context, chave string, dados []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.falhar {
		return errors.New("bucket indisponível")
	}
	m.objs[chave] = dados
	return nil
}

func (m *memImagens) Carregar(_ context.Context, chave string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.objs[chave]
	if !ok {
		return nil, errors.New("objeto inexistente")
	}
	return d, nil
}

func (m *memImagens) Remover(_ context.Context, chave string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, chave)
	return nil
}
