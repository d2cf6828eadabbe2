package service

import (
	"context"
	"errors"
	"fmt"

	"orcamentos/internal/dto"
	"orcamentos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ClienteService defines the business logic contract for clients.
type ClienteService interface {
	// Criar returns the existing client (Reutilizado=true) when one with the
	// same name already exists, ignoring case and accents.
	Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteCriadoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteCriadoResponse, error) {
	existente, err := s.repo.FindByNome(ctx, req.RazaoSocial)
	switch {
	case err == nil:
		log.Info().Str("cliente_id", existente.ID.String()).Msg("cliente: reutilizando cadastro existente")
		return &dto.ClienteCriadoResponse{ClienteResponse: clienteToResponse(existente), Reutilizado: true}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("verificar cliente existente: %w", err)
	}

	c := clienteFromRequest(req)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("criar cliente: %w", err)
	}
	return &dto.ClienteCriadoResponse{ClienteResponse: clienteToResponse(c)}, nil
}

func (s *clienteService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "cliente")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ClienteListResponse{
		Data:       make([]dto.ClienteResponse, len(clientes)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range clientes {
		resp.Data[i] = clienteToResponse(&clientes[i])
	}
	return resp, nil
}

func (s *clienteService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "cliente")
	}
	if req.RazaoSocial != nil {
		outro, err := s.repo.FindByNome(ctx, *req.RazaoSocial)
		if err == nil && outro.ID != c.ID {
			return nil, ErrDuplicado
		}
		c.RazaoSocial = *req.RazaoSocial
	}
	if req.Documento != nil {
		c.Documento = req.Documento
	}
	if req.Endereco != nil {
		c.Endereco = req.Endereco
	}
	if req.Telefone != nil {
		c.Telefone = req.Telefone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Contato != nil {
		c.Contato = *req.Contato
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return naoEncontrado(err, "cliente")
	}
	return s.repo.SoftDelete(ctx, id)
}
