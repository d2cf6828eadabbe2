package repository

import (
	"context"

	"orcamentos/internal/dto"
	"orcamentos/internal/model"
	"orcamentos/internal/textnorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClienteRepository defines the data access contract for clients.
type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	// CreateTx inserts within the caller's transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	// FindByNome matches the folded name exactly among active clients.
	FindByNome(ctx context.Context, nome string) (*model.Cliente, error)
	// BuscarPorTrecho returns active clients whose folded name contains trecho.
	BuscarPorTrecho(ctx context.Context, trecho string) ([]model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	if tx == nil {
		return r.Create(ctx, c)
	}
	return tx.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) FindByNome(ctx context.Context, nome string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).
		Where("nome_busca = ? AND ativo = ?", textnorm.Normalizar(nome), true).
		Order("created_at ASC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) BuscarPorTrecho(ctx context.Context, trecho string) ([]model.Cliente, error) {
	var out []model.Cliente
	t := textnorm.Normalizar(trecho)
	if t == "" {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where(nomeContem, padraoContem(t)).Where("ativo = ?", true).
		Order("razao_social ASC").
		Find(&out).Error
	return out, err
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var clientes []model.Cliente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("ativo = ?", true)
	if n := textnorm.Normalizar(filter.Nome); n != "" {
		q = q.Where(nomeContem, padraoContem(n))
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("razao_social ASC").Limit(filter.Limit).Offset(offset).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Update("ativo", false).Error
}
