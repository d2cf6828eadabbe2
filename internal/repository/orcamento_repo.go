package repository

import (
	"context"

	"orcamentos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrcamentoFiltro narrows a quotation listing. Nil fields are not applied.
type OrcamentoFiltro struct {
	Status    *model.Status
	ClienteID *uuid.UUID
	Page      int
	Limit     int
}

// OrcamentoRepository persists quotations and their normalized children
// (itens_orcamento, estampas). Methods ending in Tx must run inside the
// caller's transaction; a nil tx falls back to the repository connection.
type OrcamentoRepository interface {
	// Create inserts the quotation with every item and print.
	Create(ctx context.Context, tx *gorm.DB, o *model.Orcamento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Orcamento, error)
	List(ctx context.Context, filtro OrcamentoFiltro) ([]model.Orcamento, int64, error)
	// UltimoNumero returns the number of the most recently created quotation,
	// or gorm.ErrRecordNotFound when there is none.
	UltimoNumero(ctx context.Context) (string, error)
	// UpdateCabecalhoTx saves the quotation row only, never its items.
	UpdateCabecalhoTx(ctx context.Context, tx *gorm.DB, o *model.Orcamento) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateItemTx(ctx context.Context, tx *gorm.DB, item *model.ItemOrcamento) error
	// UpdateItemTx saves the item row and replaces its prints.
	UpdateItemTx(ctx context.Context, tx *gorm.DB, item *model.ItemOrcamento) error
	DeleteItemTx(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	// UpdatePosicoesTx sets posicao = index for every id in order.
	UpdatePosicoesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orcamentoRepo struct{ db *gorm.DB }

func NewOrcamentoRepository(db *gorm.DB) OrcamentoRepository { return &orcamentoRepo{db: db} }

func (r *orcamentoRepo) DB() *gorm.DB { return r.db }

func (r *orcamentoRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func preloadItens(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Cliente").
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("posicao ASC") }).
		Preload("Itens.Estampas", func(db *gorm.DB) *gorm.DB { return db.Order("ordem ASC") })
}

func (r *orcamentoRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Orcamento) error {
	for i := range o.Itens {
		o.Itens[i].Posicao = i
		for j := range o.Itens[i].Estampas {
			o.Itens[i].Estampas[j].Ordem = j
		}
	}
	return r.conn(ctx, tx).Omit("Cliente").Create(o).Error
}

func (r *orcamentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Orcamento, error) {
	var o model.Orcamento
	if err := preloadItens(r.db.WithContext(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orcamentoRepo) List(ctx context.Context, filtro OrcamentoFiltro) ([]model.Orcamento, int64, error) {
	var orcs []model.Orcamento
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Orcamento{})
	if filtro.Status != nil {
		q = q.Where("status = ?", int(*filtro.Status))
	}
	if filtro.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filtro.ClienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filtro.Page - 1) * filtro.Limit
	err := preloadItens(q).
		Order("created_at DESC").Limit(filtro.Limit).Offset(offset).
		Find(&orcs).Error
	return orcs, total, err
}

func (r *orcamentoRepo) UltimoNumero(ctx context.Context) (string, error) {
	var o model.Orcamento
	err := r.db.WithContext(ctx).
		Select("numero").
		Order("created_at DESC").
		Take(&o).Error
	if err != nil {
		return "", err
	}
	return o.Numero, nil
}

func (r *orcamentoRepo) UpdateCabecalhoTx(ctx context.Context, tx *gorm.DB, o *model.Orcamento) error {
	return r.conn(ctx, tx).Omit("Cliente", "Itens").Save(o).Error
}

func (r *orcamentoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itens := tx.Model(&model.ItemOrcamento{}).Select("id").Where("orcamento_id = ?", id)
		if err := tx.Where("item_id IN (?)", itens).Delete(&model.Estampa{}).Error; err != nil {
			return err
		}
		if err := tx.Where("orcamento_id = ?", id).Delete(&model.ItemOrcamento{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Orcamento{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *orcamentoRepo) CreateItemTx(ctx context.Context, tx *gorm.DB, item *model.ItemOrcamento) error {
	for j := range item.Estampas {
		item.Estampas[j].Ordem = j
	}
	return r.conn(ctx, tx).Create(item).Error
}

func (r *orcamentoRepo) UpdateItemTx(ctx context.Context, tx *gorm.DB, item *model.ItemOrcamento) error {
	db := r.conn(ctx, tx)
	if err := db.Omit("Estampas").Save(item).Error; err != nil {
		return err
	}
	if err := db.Where("item_id = ?", item.ID).Delete(&model.Estampa{}).Error; err != nil {
		return err
	}
	if len(item.Estampas) == 0 {
		return nil
	}
	for j := range item.Estampas {
		item.Estampas[j].ID = uuid.Nil
		item.Estampas[j].ItemID = item.ID
		item.Estampas[j].Ordem = j
	}
	return db.Create(&item.Estampas).Error
}

func (r *orcamentoRepo) DeleteItemTx(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	db := r.conn(ctx, tx)
	if err := db.Where("item_id = ?", itemID).Delete(&model.Estampa{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", itemID).Delete(&model.ItemOrcamento{}).Error
}

func (r *orcamentoRepo) UpdatePosicoesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	db := r.conn(ctx, tx)
	for i, id := range ids {
		err := db.Model(&model.ItemOrcamento{}).Where("id = ?", id).Update("posicao", i).Error
		if err != nil {
			return err
		}
	}
	return nil
}
