// internal/database/seed.go
package database

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

type seedProduct struct {
	name     string
	category string
	price    string
	cost     string
	stock    int
	perWeek  int
}

var demoCatalogue = []seedProduct{
	{"Wireless Earbuds", "Electronics", "59.90", "31.00", 140, 18},
	{"USB-C Charger 65W", "Electronics", "34.50", "12.40", 60, 25},
	{"Smart Watch S2", "Electronics", "149.00", "", 35, 4},
	{"Running Shoes", "Sports", "89.00", "52.00", 80, 9},
	{"Yoga Mat", "Sports", "24.90", "8.10", 300, 6},
	{"Cotton T-Shirt", "Clothing", "14.90", "5.20", 500, 30},
	{"Denim Jacket", "Clothing", "79.00", "48.00", 20, 3},
	{"Ceramic Mug Set", "Home", "29.00", "11.00", 90, 0},
	{"Desk Lamp", "Home", "39.90", "24.50", 12, 5},
}

// SeedDemoData fills an empty store with a small catalogue and sixty days of
// completed sales. It is a no-op when products already exist.
func SeedDemoData(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	logrus.Info("Seeding demo catalogue and sales...")
	rng := rand.New(rand.NewSource(now.Unix()))

	return WithTransaction(db, func(tx *gorm.DB) error {
		for _, sp := range demoCatalogue {
			product := models.Product{
				Name:     sp.name,
				Category: sp.category,
				Price:    decimal.RequireFromString(sp.price),
				Stock:    sp.stock,
				Trend:    models.ProductTrendStable,
				Status:   models.ProductStatusActive,
			}
			if sp.cost != "" {
				product.Cost = decimal.NewNullDecimal(decimal.RequireFromString(sp.cost))
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to create product %s: %w", sp.name, err)
			}

			sold := 0
			for week := 0; week < 8; week++ {
				units := sp.perWeek
				if units > 0 {
					units += rng.Intn(units/2+1) - units/4
				}
				if units <= 0 {
					continue
				}
				soldAt := now.AddDate(0, 0, -7*week-rng.Intn(7)-1)
				line := product.Price.Mul(decimal.NewFromInt(int64(units)))
				sale := models.Sale{
					SoldAt: soldAt,
					Status: models.SaleStatusCompleted,
					Total:  line,
					Items: []models.SaleItem{{
						ProductID: product.ID,
						Quantity:  units,
						UnitPrice: product.Price,
						LineTotal: line,
					}},
				}
				if err := tx.Create(&sale).Error; err != nil {
					return fmt.Errorf("failed to create sale: %w", err)
				}
				sold += units
			}

			if err := tx.Model(&product).Update("units_sold", sold).Error; err != nil {
				return fmt.Errorf("failed to update units sold: %w", err)
			}
		}
		return nil
	})
}
