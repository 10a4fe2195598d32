package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalogue.
type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Nome      string          `json:"nome" gorm:"type:varchar(255);not null"`
	Descricao *string         `json:"descricao" gorm:"type:text"`
	Preco     decimal.Decimal `json:"preco" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName pins the table name regardless of GORM naming strategy.
func (Product) TableName() string {
	return "products"
}

// ProductChanges holds the fields of a partial update. Nil fields keep their
// current value; ClearDescricao sets descricao to NULL.
type ProductChanges struct {
	Nome           *string
	Descricao      *string
	ClearDescricao bool
	Preco          *decimal.Decimal
}

// Apply overlays the non-nil changes onto product.
func (c ProductChanges) Apply(product *Product) {
	if c.Nome != nil {
		product.Nome = *c.Nome
	}
	switch {
	case c.ClearDescricao:
		product.Descricao = nil
	case c.Descricao != nil:
		descricao := *c.Descricao
		product.Descricao = &descricao
	}
	if c.Preco != nil {
		product.Preco = *c.Preco
	}
}

