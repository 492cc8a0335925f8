// internal/models/sale.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SoldAt    time.Time       `json:"sold_at" gorm:"not null;index"`
	Status    SaleStatus      `json:"status" gorm:"size:20;not null;index"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	Items     []SaleItem      `json:"items,omitempty" gorm:"foreignKey:SaleID"`
	CreatedAt time.Time       `json:"created_at"`
}

// SaleItem is one order line; revenue is always read from LineTotal.
type SaleItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SaleID    uint            `json:"sale_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2)"`
}
