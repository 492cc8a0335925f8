// internal/models/product.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the read-only catalogue row the insights engine aggregates over.
type Product struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	Name      string              `json:"name" gorm:"size:200;not null"`
	Category  string              `json:"category" gorm:"size:100;index"`
	Price     decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	Cost      decimal.NullDecimal `json:"cost" gorm:"type:decimal(12,2)"`
	Stock     int                 `json:"stock" gorm:"default:0"`
	UnitsSold int                 `json:"units_sold" gorm:"default:0;index"`
	Trend     ProductTrend        `json:"trend" gorm:"size:20;default:'stable'"`
	Status    ProductStatus       `json:"status" gorm:"size:20;default:'active'"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (p *Product) HasCost() bool {
	return p.Cost.Valid
}
