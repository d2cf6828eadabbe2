package model

import (
	"time"

	"orcamentos/internal/textnorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is a customer company. NomeBusca holds the folded RazaoSocial and is
// the duplicate-detection key.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RazaoSocial string    `gorm:"not null"`
	NomeBusca   string    `gorm:"index;not null;default:''"`
	Documento   *string   // CNPJ or CPF
	Endereco    *string
	Telefone    *string
	Email       *string
	Contato     string `gorm:"not null;default:''"`
	Ativo       bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Cliente) TableName() string { return "clientes" }

func (c *Cliente) BeforeSave(*gorm.DB) error {
	c.NomeBusca = textnorm.Normalizar(c.RazaoSocial)
	return nil
}

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
