// internal/services/metrics_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jguerrero45/dashboard-insights/internal/models"
	"github.com/jguerrero45/dashboard-insights/internal/repository"
)

// ErrEmptyScope is returned when no product matches the requested scope.
var ErrEmptyScope = errors.New("no products matched the requested scope")

const (
	metricWindow  = 30 * 24 * time.Hour
	weeksInWindow = 4.0
)

// SalesStore is the read-only query surface the engine consumes.
type SalesStore interface {
	Products(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	ProductWindowTotals(ctx context.Context, ids []uint, from, to time.Time) (map[uint]repository.WindowTotal, error)
	CompletedSales(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	ProductTotals(ctx context.Context, from, to time.Time, byRevenue bool, limit int) ([]repository.DimensionTotal, error)
	CategoryTotals(ctx context.Context, from, to time.Time) ([]repository.DimensionTotal, error)
}

// MetricScope selects the products to aggregate. Limit <= 0 means unbounded
// and is ignored when ProductIDs is set.
type MetricScope struct {
	ProductIDs []uint
	Category   string
	Limit      int
}

// ProductMetric is the per-request snapshot of one product. Nil pointers mean
// "unknown" (no cost) or "undefined" (no recent sales).
type ProductMetric struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Price           float64  `json:"price"`
	Cost            *float64 `json:"cost"`
	UnitMargin      *float64 `json:"unit_margin"`
	MarginPct       *float64 `json:"margin_pct"`
	Stock           int      `json:"stock"`
	UnitsRecent     int64    `json:"units_30d"`
	UnitsPrev       int64    `json:"units_prev_30d"`
	RevenueRecent   float64  `json:"revenue_30d"`
	RevenuePrev     float64  `json:"revenue_prev_30d"`
	VariationPct    float64  `json:"variation_pct"`
	WeeklyAvg       float64  `json:"weekly_avg"`
	WeeklyAvgPrev   float64  `json:"weekly_avg_prev"`
	CoverageWeeks   *float64 `json:"coverage_weeks"`
	ProfitRecent    float64  `json:"profit_30d"`
	ProfitPrev      float64  `json:"profit_prev_30d"`
	ValuedInventory *float64 `json:"valued_inventory"`
	Trend           string   `json:"trend"`
	Status          string   `json:"status"`
}

type MetricsService struct {
	store  SalesStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewMetricsService(store SalesStore, logger *logrus.Logger) *MetricsService {
	return &MetricsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Collect builds one ProductMetric per product in scope over the windows
// [now-30d, now) and [now-60d, now-30d).
func (s *MetricsService) Collect(ctx context.Context, scope MetricScope) ([]ProductMetric, error) {
	filter := repository.ProductFilter{
		IDs:      scope.ProductIDs,
		Category: scope.Category,
		Limit:    scope.Limit,
	}

	products, err := s.store.Products(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyScope
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	now := s.now()
	recentFrom := now.Add(-metricWindow)
	prevFrom := now.Add(-2 * metricWindow)

	recent, err := s.store.ProductWindowTotals(ctx, ids, recentFrom, now)
	if err != nil {
		return nil, fmt.Errorf("recent window: %w", err)
	}
	prev, err := s.store.ProductWindowTotals(ctx, ids, prevFrom, recentFrom)
	if err != nil {
		return nil, fmt.Errorf("previous window: %w", err)
	}

	metrics := make([]ProductMetric, len(products))
	for i := range products {
		metrics[i] = BuildProductMetric(products[i], recent[products[i].ID], prev[products[i].ID])
	}

	s.logger.WithFields(logrus.Fields{
		"products": len(metrics),
		"category": scope.Category,
		"explicit": len(scope.ProductIDs),
	}).Debug("Product metrics collected")

	return metrics, nil
}

// BuildProductMetric derives the snapshot of one product from its two window
// totals. It never produces NaN or Inf.
func BuildProductMetric(p models.Product, recent, prev repository.WindowTotal) ProductMetric {
	price, _ := p.Price.Float64()

	m := ProductMetric{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         round2(price),
		Stock:         p.Stock,
		UnitsRecent:   recent.Units,
		UnitsPrev:     prev.Units,
		RevenueRecent: round2(recent.Revenue),
		RevenuePrev:   round2(prev.Revenue),
		VariationPct:  round2(variationPct(recent.Units, prev.Units)),
		WeeklyAvg:     round2(float64(recent.Units) / weeksInWindow),
		WeeklyAvgPrev: round2(float64(prev.Units) / weeksInWindow),
		Trend:         string(p.Trend),
		Status:        string(p.Status),
	}

	if recent.Units > 0 {
		weekly := float64(recent.Units) / weeksInWindow
		m.CoverageWeeks = ptr(round2(float64(p.Stock) / weekly))
	}

	if p.HasCost() {
		cost, _ := p.Cost.Decimal.Float64()
		margin := price - cost
		m.Cost = ptr(round2(cost))
		m.UnitMargin = ptr(round2(margin))
		if price > 0 {
			m.MarginPct = ptr(round2(margin / price * 100))
		}
		m.ProfitRecent = round2(float64(recent.Units) * margin)
		m.ProfitPrev = round2(float64(prev.Units) * margin)
		m.ValuedInventory = ptr(round2(float64(p.Stock) * cost))
	}

	return m
}

func variationPct(recent, prev int64) float64 {
	if prev == 0 {
		return 0
	}
	return float64(recent-prev) / float64(prev) * 100
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}
