package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orcamentos/internal/dto"
	"orcamentos/internal/model"
	"orcamentos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const produtoCachePrefix = "produto:"

// ProdutoService defines the business logic contract for products.
type ProdutoService interface {
	// Criar returns the existing product (Reutilizado=true) when one with the
	// same name already exists, ignoring case and accents.
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoCriadoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	// ObterProduto is the cache-backed lookup used by the item editor.
	ObterProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
	Grade(ctx context.Context, id uuid.UUID) (*dto.GradeResponse, error)
}

type produtoService struct {
	repo repository.ProdutoRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewProdutoService builds the service. rdb may be nil, in which case every
// read goes to the database.
func NewProdutoService(repo repository.ProdutoRepository, rdb *redis.Client, ttl time.Duration) ProdutoService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &produtoService{repo: repo, rdb: rdb, ttl: ttl}
}

func tecidosFromRequest(reqs []dto.TecidoRequest) []model.Tecido {
	out := make([]model.Tecido, len(reqs))
	for i, t := range reqs {
		out[i] = model.Tecido{Nome: t.Nome, Composicao: t.Composicao, Posicao: i}
	}
	return out
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoCriadoResponse, error) {
	existente, err := s.repo.FindByNome(ctx, req.Nome)
	switch {
	case err == nil:
		log.Info().Str("produto_id", existente.ID.String()).Msg("produto: reutilizando cadastro existente")
		return &dto.ProdutoCriadoResponse{ProdutoResponse: produtoToResponse(existente), Reutilizado: true}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("verificar produto existente: %w", err)
	}

	p := produtoFromRequest(req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("criar produto: %w", err)
	}
	return &dto.ProdutoCriadoResponse{ProdutoResponse: produtoToResponse(p)}, nil
}

func (s *produtoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.ObterProduto(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) ObterProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	key := produtoCachePrefix + id.String()

	// 1. Try Redis cache
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var p model.Produto
			if jsonErr := json.Unmarshal(cached, &p); jsonErr == nil {
				return &p, nil
			}
		}
	}

	// 2. Cache miss: query DB
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "produto")
	}

	// 3. Populate cache, ignoring errors
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(p); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), key, b, s.ttl).Err()
		}
	}
	return p, nil
}

func (s *produtoService) invalidar(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, produtoCachePrefix+id.String()).Err(); err != nil {
		log.Warn().Err(err).Str("produto_id", id.String()).Msg("produto: falha ao invalidar cache")
	}
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProdutoListResponse{
		Data:       make([]dto.ProdutoResponse, len(produtos)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range produtos {
		resp.Data[i] = produtoToResponse(&produtos[i])
	}
	return resp, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "produto")
	}
	if req.Nome != nil {
		outro, err := s.repo.FindByNome(ctx, *req.Nome)
		if err == nil && outro.ID != p.ID {
			return nil, ErrDuplicado
		}
		p.Nome = *req.Nome
	}
	if req.PrecoBase != nil {
		p.PrecoBase = *req.PrecoBase
	}
	if req.Tecidos != nil {
		p.Tecidos = tecidosFromRequest(*req.Tecidos)
	}
	if req.Cores != nil {
		p.Cores = *req.Cores
	}
	if req.Tamanhos != nil {
		p.Tamanhos = *req.Tamanhos
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidar(ctx, id)
	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return naoEncontrado(err, "produto")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx, id)
	return nil
}

func (s *produtoService) Grade(ctx context.Context, id uuid.UUID) (*dto.GradeResponse, error) {
	p, err := s.ObterProduto(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.GradeResponse{ProdutoID: p.ID.String(), Tamanhos: p.TamanhosVisiveis()}, nil
}
