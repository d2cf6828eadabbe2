package repository

import (
	"context"

	"orcamentos/internal/dto"
	"orcamentos/internal/model"
	"orcamentos/internal/textnorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProdutoRepository defines the data access contract for products.
// Tecidos are always loaded and written together with their product.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	// CreateTx inserts the product and its fabrics within the caller's transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByNome(ctx context.Context, nome string) (*model.Produto, error)
	BuscarPorTrecho(ctx context.Context, trecho string) ([]model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	// Update saves the product and replaces its fabric list.
	Update(ctx context.Context, p *model.Produto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func tecidosOrdenados(db *gorm.DB) *gorm.DB { return db.Order("posicao ASC") }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.CreateTx(ctx, nil, p)
}

func (r *produtoRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Produto) error {
	if tx == nil {
		tx = r.db
	}
	for i := range p.Tecidos {
		p.Tecidos[i].Posicao = i
	}
	return tx.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).
		Preload("Tecidos", tecidosOrdenados).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) FindByNome(ctx context.Context, nome string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).
		Preload("Tecidos", tecidosOrdenados).
		Where("nome_busca = ? AND ativo = ?", textnorm.Normalizar(nome), true).
		Order("created_at ASC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) BuscarPorTrecho(ctx context.Context, trecho string) ([]model.Produto, error) {
	var out []model.Produto
	t := textnorm.Normalizar(trecho)
	if t == "" {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Tecidos", tecidosOrdenados).
		Where(nomeContem, padraoContem(t)).Where("ativo = ?", true).
		Order("nome ASC").
		Find(&out).Error
	return out, err
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})

	// Ativo filter: "false" = inativos, "all" = todos, anything else = ativos (default)
	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = ?", false)
	case "all":
	default:
		q = q.Where("ativo = ?", true)
	}
	if n := textnorm.Normalizar(filter.Nome); n != "" {
		q = q.Where(nomeContem, padraoContem(n))
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Tecidos", tecidosOrdenados).
		Order("nome ASC").Limit(filter.Limit).Offset(offset).
		Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tecidos").Save(p).Error; err != nil {
			return err
		}
		if err := tx.Where("produto_id = ?", p.ID).Delete(&model.Tecido{}).Error; err != nil {
			return err
		}
		if len(p.Tecidos) == 0 {
			return nil
		}
		for i := range p.Tecidos {
			p.Tecidos[i].ID = uuid.Nil
			p.Tecidos[i].ProdutoID = p.ID
			p.Tecidos[i].Posicao = i
		}
		return tx.Create(&p.Tecidos).Error
	})
}

func (r *produtoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Update("ativo", false).Error
}
