// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the id client side so the same models work on
// PostgreSQL and SQLite.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("jsonb: unsupported scan type")
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusLowStock   ProductStatus = "low_stock"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

type ProductTrend string

const (
	ProductTrendUp     ProductTrend = "up"
	ProductTrendDown   ProductTrend = "down"
	ProductTrendStable ProductTrend = "stable"
)

type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// RecommendationType is the action kind of a recommendation candidate or card.
type RecommendationType string

const (
	RecommendationPricingIncrease RecommendationType = "pricing_increase"
	RecommendationPricingDecrease RecommendationType = "pricing_decrease"
	RecommendationDiscount        RecommendationType = "discount"
	RecommendationBundle          RecommendationType = "bundle"
	RecommendationPromoCampaign   RecommendationType = "promo_campaign"
)

var RecommendationTypes = []RecommendationType{
	RecommendationPricingIncrease,
	RecommendationPricingDecrease,
	RecommendationDiscount,
	RecommendationBundle,
	RecommendationPromoCampaign,
}

func (t RecommendationType) Valid() bool {
	for _, known := range RecommendationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type ForecastKind string

const (
	ForecastKindSalesTotal      ForecastKind = "sales_total"
	ForecastKindDemandUnits     ForecastKind = "demand_units"
	ForecastKindCategoryRevenue ForecastKind = "category_revenue"
)

// ForecastSource tells model-produced values apart from heuristic ones.
type ForecastSource string

const (
	ForecastSourceModel     ForecastSource = "model"
	ForecastSourceHeuristic ForecastSource = "heuristic"
)
