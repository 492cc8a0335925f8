// internal/services/helpers_test.go
package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/database"
	"github.com/jguerrero45/dashboard-insights/internal/models"
	"github.com/jguerrero45/dashboard-insights/internal/repository"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeStore serves fixed aggregates. ProductWindowTotals answers the recent
// window when to equals now and the previous one otherwise.
type fakeStore struct {
	now            time.Time
	products       []models.Product
	recent         map[uint]repository.WindowTotal
	prev           map[uint]repository.WindowTotal
	sales          []models.Sale
	productTotals  []repository.DimensionTotal
	categoryTotals []repository.DimensionTotal
	err            error
}

func (f *fakeStore) Products(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(filter.IDs) > 0 {
		var out []models.Product
		for _, id := range filter.IDs {
			for _, p := range f.products {
				if p.ID == id && (filter.Category == "" || strings.EqualFold(p.Category, filter.Category)) {
					out = append(out, p)
				}
			}
		}
		return out, nil
	}

	var out []models.Product
	for _, p := range f.products {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ProductWindowTotals(ctx context.Context, ids []uint, from, to time.Time) (map[uint]repository.WindowTotal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if to.Equal(f.now) {
		return f.recent, nil
	}
	return f.prev, nil
}

func (f *fakeStore) CompletedSales(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var out []models.Sale
	for _, s := range f.sales {
		if !s.SoldAt.Before(from) && s.SoldAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, f.err
}

func (f *fakeStore) ProductTotals(ctx context.Context, from, to time.Time, byRevenue bool, limit int) ([]repository.DimensionTotal, error) {
	rows := f.productTotals
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, f.err
}

func (f *fakeStore) CategoryTotals(ctx context.Context, from, to time.Time) ([]repository.DimensionTotal, error) {
	return f.categoryTotals, f.err
}

func newTestMetrics(store SalesStore, now time.Time) *MetricsService {
	s := NewMetricsService(store, testLogger())
	s.now = func() time.Time { return now }
	return s
}

// fakeGenerator replays queued responses, then repeats text.
type fakeGenerator struct {
	mu        sync.Mutex
	text      string
	err       error
	responses []string
	prompts   []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) > 0 {
		next := g.responses[0]
		g.responses = g.responses[1:]
		return next, nil
	}
	return g.text, nil
}

type fixedRotation struct {
	value uint64
	err   error
}

func (r fixedRotation) Next(ctx context.Context) (uint64, error) {
	return r.value, r.err
}

func product(id uint, name, category string, price float64, cost *float64, stock int) models.Product {
	p := models.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromFloat(price),
		Stock:    stock,
		Trend:    models.ProductTrendStable,
		Status:   models.ProductStatusActive,
	}
	if cost != nil {
		p.Cost = decimal.NewNullDecimal(decimal.NewFromFloat(*cost))
	}
	return p
}

func window(id uint, units int64, revenue float64) repository.WindowTotal {
	return repository.WindowTotal{ProductID: id, Units: units, Revenue: revenue}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     ":memory:",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

// insertSale writes one completed single-line sale.
func insertSale(t *testing.T, db *gorm.DB, productID uint, qty int, unitPrice float64, soldAt time.Time) {
	t.Helper()
	price := decimal.NewFromFloat(unitPrice)
	line := price.Mul(decimal.NewFromInt(int64(qty)))
	sale := models.Sale{
		SoldAt: soldAt,
		Status: models.SaleStatusCompleted,
		Total:  line,
		Items: []models.SaleItem{{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: line,
		}},
	}
	require.NoError(t, db.Create(&sale).Error)
}
