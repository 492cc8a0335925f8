// internal/services/priority_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

func TestMarketingPriority(t *testing.T) {
	assert.Equal(t, models.PriorityLow, MarketingPriority([]ProductMetric{{VariationPct: 5}}))
	assert.Equal(t, models.PriorityMedium, MarketingPriority([]ProductMetric{{VariationPct: -12}}))
	assert.Equal(t, models.PriorityHigh, MarketingPriority([]ProductMetric{{VariationPct: 10}, {ProfitRecent: 7000}}))
}

func TestStockPriority(t *testing.T) {
	assert.Equal(t, models.PriorityLow, StockPriority([]ProductMetric{{}}, 5000))
	assert.Equal(t, models.PriorityHigh, StockPriority([]ProductMetric{{CoverageWeeks: ptr(9.0)}, {CoverageWeeks: ptr(1.5)}}, 5000))
	assert.Equal(t, models.PriorityMedium, StockPriority([]ProductMetric{{CoverageWeeks: ptr(3.0)}}, 5000))
	assert.Equal(t, models.PriorityMedium, StockPriority([]ProductMetric{{CoverageWeeks: ptr(8.0), ValuedInventory: ptr(6000.0)}}, 5000))
	assert.Equal(t, models.PriorityLow, StockPriority([]ProductMetric{{ValuedInventory: ptr(6000.0)}}, 0))
}

func TestDerivePriorityTakesHigherTier(t *testing.T) {
	metrics := []ProductMetric{{VariationPct: 2, CoverageWeeks: ptr(1.0)}}
	assert.Equal(t, models.PriorityHigh, DerivePriority(metrics, 5000))

	metrics = []ProductMetric{{VariationPct: 40, CoverageWeeks: ptr(10.0)}}
	assert.Equal(t, models.PriorityHigh, DerivePriority(metrics, 5000))

	metrics = []ProductMetric{{VariationPct: 1, CoverageWeeks: ptr(10.0)}}
	assert.Equal(t, models.PriorityLow, DerivePriority(metrics, 5000))
}
