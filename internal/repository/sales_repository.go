// internal/repository/sales_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

// ProductFilter narrows the catalogue read. IDs and Category combine with AND;
// Limit applies only when no explicit ids are given.
type ProductFilter struct {
	IDs      []uint
	Category string
	Limit    int
}

// WindowTotal is the completed-sales aggregate of one product in one window.
type WindowTotal struct {
	ProductID uint
	Units     int64
	Revenue   float64
}

// DimensionTotal is an aggregate row grouped by product or by category.
type DimensionTotal struct {
	ProductID uint
	Name      string
	Category  string
	Units     int64
	Revenue   float64
}

// SalesRepository is the read side of the store. It never writes.
type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) Products(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}

	if len(filter.IDs) > 0 {
		var found []models.Product
		if err := query.Where("id IN ?", filter.IDs).Find(&found).Error; err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		return orderByIDs(found, filter.IDs), nil
	}

	query = query.Order("units_sold DESC").Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

// orderByIDs returns the products in the order of ids, dropping unknown and
// repeated ids.
func orderByIDs(products []models.Product, ids []uint) []models.Product {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ordered := make([]models.Product, 0, len(products))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, p)
	}
	return ordered
}

func (r *SalesRepository) completedLines(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sale_items").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ?", models.SaleStatusCompleted).
		Where("sales.sold_at >= ? AND sales.sold_at < ?", from, to)
}

// ProductWindowTotals sums units and revenue of completed sales in [from, to)
// for the given products. Products without sales are absent from the map.
func (r *SalesRepository) ProductWindowTotals(ctx context.Context, ids []uint, from, to time.Time) (map[uint]WindowTotal, error) {
	totals := make(map[uint]WindowTotal, len(ids))
	if len(ids) == 0 {
		return totals, nil
	}

	var rows []WindowTotal
	err := r.completedLines(ctx, from, to).
		Select("sale_items.product_id AS product_id, COALESCE(SUM(sale_items.quantity), 0) AS units, COALESCE(SUM(sale_items.line_total), 0) AS revenue").
		Where("sale_items.product_id IN ?", ids).
		Group("sale_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales window: %w", err)
	}

	for _, row := range rows {
		totals[row.ProductID] = row
	}
	return totals, nil
}

// CompletedSales loads completed sales in [from, to) with their lines, oldest
// first. Month bucketing happens in Go so the query stays dialect neutral.
func (r *SalesRepository) CompletedSales(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", models.SaleStatusCompleted).
		Where("sold_at >= ? AND sold_at < ?", from, to).
		Order("sold_at ASC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load completed sales: %w", err)
	}
	return sales, nil
}

// ProductTotals groups completed sales in [from, to) by product. Rows are
// ordered by units, or by revenue when byRevenue is set, highest first.
func (r *SalesRepository) ProductTotals(ctx context.Context, from, to time.Time, byRevenue bool, limit int) ([]DimensionTotal, error) {
	order := "units DESC"
	if byRevenue {
		order = "revenue DESC"
	}

	query := r.completedLines(ctx, from, to).
		Joins("JOIN products ON products.id = sale_items.product_id").
		Select("products.id AS product_id, products.name AS name, products.category AS category, COALESCE(SUM(sale_items.quantity), 0) AS units, COALESCE(SUM(sale_items.line_total), 0) AS revenue").
		Group("products.id, products.name, products.category").
		Order(order).Order("products.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []DimensionTotal
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate product totals: %w", err)
	}
	return rows, nil
}

// CategoryTotals groups completed sales in [from, to) by product category,
// highest revenue first.
func (r *SalesRepository) CategoryTotals(ctx context.Context, from, to time.Time) ([]DimensionTotal, error) {
	var rows []DimensionTotal
	err := r.completedLines(ctx, from, to).
		Joins("JOIN products ON products.id = sale_items.product_id").
		Select("products.category AS category, COALESCE(SUM(sale_items.quantity), 0) AS units, COALESCE(SUM(sale_items.line_total), 0) AS revenue").
		Group("products.category").
		Order("revenue DESC").Order("products.category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category totals: %w", err)
	}
	return rows, nil
}
