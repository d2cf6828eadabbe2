package model

import (
	"time"

	"orcamentos/internal/tamanho"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Orcamento is a quotation. Itens are ordered by ItemOrcamento.Posicao.
// Numero follows "NNNN - produto - cliente - contato"; only the 4-digit
// prefix is parsed back.
type Orcamento struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Numero             string           `gorm:"index;not null"`
	DataEmissao        time.Time        `gorm:"not null"`
	ClienteID          *uuid.UUID       `gorm:"type:uuid;index"`
	Observacoes        string           `gorm:"type:text;not null;default:''"`
	CondicoesPagamento string           `gorm:"not null;default:''"`
	PrazoEntrega       string           `gorm:"not null;default:''"`
	Validade           string           `gorm:"not null;default:''"`
	Frete              *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status             Status           `gorm:"not null;default:5"`
	CreatedAt          time.Time        `gorm:"index"`
	UpdatedAt          time.Time

	Cliente *Cliente        `gorm:"foreignKey:ClienteID"`
	Itens   []ItemOrcamento `gorm:"foreignKey:OrcamentoID;constraint:OnDelete:CASCADE"`
}

func (Orcamento) TableName() string { return "orcamentos" }

func (o *Orcamento) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IndiceItem returns the index of the item with id, or -1.
func (o *Orcamento) IndiceItem(id uuid.UUID) int {
	for i := range o.Itens {
		if o.Itens[i].ID == id {
			return i
		}
	}
	return -1
}

// Renumerar rewrites Posicao to match the slice order.
func (o *Orcamento) Renumerar() {
	for i := range o.Itens {
		o.Itens[i].Posicao = i
	}
}

// ItemOrcamento is a quotation line. ProdutoNome is a snapshot taken when the
// product was selected so that documents render after catalog edits.
type ItemOrcamento struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrcamentoID         uuid.UUID `gorm:"type:uuid;index;not null"`
	ProdutoID           uuid.UUID `gorm:"type:uuid;index;not null"`
	ProdutoNome         string    `gorm:"not null"`
	Posicao             int       `gorm:"not null;default:0"`
	TecidoNome          *string
	TecidoComposicao    *string
	Cor                 *string
	Tamanhos            tamanho.Quantidades `gorm:"type:text;serializer:json"`
	Quantidade          int                 `gorm:"not null"`
	PrecoUnitario       decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	ImagemChave         *string
	ImagemBase64        *string `gorm:"type:text"`
	ObservacaoComercial string  `gorm:"type:text;not null;default:''"`
	ObservacaoTecnica   string  `gorm:"type:text;not null;default:''"`

	Estampas []Estampa `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

func (ItemOrcamento) TableName() string { return "itens_orcamento" }

func (i *ItemOrcamento) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// RecalcularQuantidade keeps Quantidade equal to the size total whenever a
// size map is present.
func (i *ItemOrcamento) RecalcularQuantidade() {
	if len(i.Tamanhos) > 0 {
		i.Quantidade = i.Tamanhos.Total()
	}
}

// TotalLinha is Quantidade × PrecoUnitario.
func (i ItemOrcamento) TotalLinha() decimal.Decimal {
	return i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

// Estampa is a print applied to an item. Posicao is the garment location
// ("peito esquerdo", "costas"); Ordem keeps the list order.
type Estampa struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Posicao string    `gorm:"not null;default:''"`
	Tecnica string    `gorm:"not null;default:''"`
	Largura string    `gorm:"not null;default:''"`
	Ordem   int       `gorm:"not null;default:0"`
}

func (Estampa) TableName() string { return "estampas" }

func (e *Estampa) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
