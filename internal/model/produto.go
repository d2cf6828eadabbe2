package model

import (
	"time"

	"orcamentos/internal/tamanho"
	"orcamentos/internal/textnorm"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Produto is a garment model offered to clients.
// Tamanhos restricts the size grid; empty means the full catalog.
type Produto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nome      string          `gorm:"not null"`
	NomeBusca string          `gorm:"index;not null;default:''"`
	PrecoBase decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cores     []string        `gorm:"type:text;serializer:json"`
	Tamanhos  []string        `gorm:"type:text;serializer:json"`
	Ativo     bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tecidos []Tecido `gorm:"foreignKey:ProdutoID;constraint:OnDelete:CASCADE"`
}

func (Produto) TableName() string { return "produtos" }

func (p *Produto) BeforeSave(*gorm.DB) error {
	p.NomeBusca = textnorm.Normalizar(p.Nome)
	return nil
}

func (p *Produto) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TamanhosVisiveis returns the size labels shown in this product's grid.
func (p *Produto) TamanhosVisiveis() []string {
	return tamanho.Visiveis(p.Tamanhos)
}

// Tecido is one fabric option of a product, kept in Posicao order.
type Tecido struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProdutoID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Nome       string    `gorm:"not null"`
	Composicao string    `gorm:"not null;default:''"`
	Posicao    int       `gorm:"not null;default:0"`
}

func (Tecido) TableName() string { return "tecidos" }

func (t *Tecido) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
