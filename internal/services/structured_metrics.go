// internal/services/structured_metrics.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
)

type Dimension string

const (
	DimensionMonth    Dimension = "month"
	DimensionProduct  Dimension = "product"
	DimensionCategory Dimension = "category"
)

type Metric string

const (
	MetricRevenue Metric = "revenue"
	MetricUnits   Metric = "units"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricRevenue, MetricUnits:
		return Metric(s), nil
	case "":
		return MetricRevenue, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

const monthLabelLayout = "2006-01"

// StructuredItem is one point of a chart series. Key is the stable identity
// (month label, product id or category name) used to align predictions.
type StructuredItem struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	ProductID   *uint      `json:"product_id,omitempty"`
	Category    string     `json:"category,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	Value       float64    `json:"value"`
}

type StructuredMetrics struct {
	Dimension Dimension        `json:"dimension"`
	Metric    Metric           `json:"metric"`
	Items     []StructuredItem `json:"items"`
	Total     float64          `json:"total"`
}

func newStructured(dim Dimension, metric Metric, items []StructuredItem) *StructuredMetrics {
	total := 0.0
	for _, it := range items {
		total += it.Value
	}
	if items == nil {
		items = []StructuredItem{}
	}
	return &StructuredMetrics{Dimension: dim, Metric: metric, Items: items, Total: round2(total)}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StructuredMonthly returns the last n calendar months, current month
// included, oldest first. Months without sales are present with value 0.
// Month boundaries are UTC.
func (s *MetricsService) StructuredMonthly(ctx context.Context, metric Metric, months int) (*StructuredMetrics, error) {
	if months < 1 {
		months = 1
	}
	end := monthStart(s.now().UTC()).AddDate(0, 1, 0)
	start := end.AddDate(0, -months, 0)

	items, err := s.MonthlySeries(ctx, metric, start, end)
	if err != nil {
		return nil, err
	}
	return newStructured(DimensionMonth, metric, items), nil
}

// MonthlySeries buckets completed sales of [from, to) by UTC calendar
// month. from is expected to be a month start.
func (s *MetricsService) MonthlySeries(ctx context.Context, metric Metric, from, to time.Time) ([]StructuredItem, error) {
	sales, err := s.store.CompletedSales(ctx, from, to)
	if err != nil {
		return nil, err
	}

	from, to = from.UTC(), to.UTC()
	var items []StructuredItem
	index := make(map[string]int)
	for m := monthStart(from); m.Before(to); m = m.AddDate(0, 1, 0) {
		start := m
		label := m.Format(monthLabelLayout)
		index[label] = len(items)
		items = append(items, StructuredItem{Key: label, Label: label, PeriodStart: &start})
	}

	for _, sale := range sales {
		label := sale.SoldAt.UTC().Format(monthLabelLayout)
		i, ok := index[label]
		if !ok {
			continue
		}
		for _, line := range sale.Items {
			if metric == MetricUnits {
				items[i].Value += float64(line.Quantity)
			} else {
				v, _ := line.LineTotal.Float64()
				items[i].Value += v
			}
		}
	}

	for i := range items {
		items[i].Value = round2(items[i].Value)
	}
	return items, nil
}

// StructuredByProduct returns the top products of the last days, ordered by
// the requested metric.
func (s *MetricsService) StructuredByProduct(ctx context.Context, metric Metric, days, limit int) (*StructuredMetrics, error) {
	now := s.now()
	rows, err := s.store.ProductTotals(ctx, now.AddDate(0, 0, -days), now, metric == MetricRevenue, limit)
	if err != nil {
		return nil, err
	}

	items := make([]StructuredItem, 0, len(rows))
	for _, row := range rows {
		id := row.ProductID
		items = append(items, StructuredItem{
			Key:       strconv.FormatUint(uint64(id), 10),
			Label:     row.Name,
			ProductID: &id,
			Category:  row.Category,
			Value:     metricValue(metric, row.Units, row.Revenue),
		})
	}
	return newStructured(DimensionProduct, metric, items), nil
}

// StructuredByCategory returns per-category totals of the last days, highest
// first.
func (s *MetricsService) StructuredByCategory(ctx context.Context, metric Metric, days int) (*StructuredMetrics, error) {
	now := s.now()
	rows, err := s.store.CategoryTotals(ctx, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}

	items := make([]StructuredItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, StructuredItem{
			Key:      row.Category,
			Label:    row.Category,
			Category: row.Category,
			Value:    metricValue(metric, row.Units, row.Revenue),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })

	return newStructured(DimensionCategory, metric, items), nil
}

func metricValue(metric Metric, units int64, revenue float64) float64 {
	if metric == MetricUnits {
		return float64(units)
	}
	return round2(revenue)
}
