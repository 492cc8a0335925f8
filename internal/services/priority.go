// internal/services/priority.go
package services

import (
	"math"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

// MarketingPriority tiers the strongest demand signal in scope.
func MarketingPriority(metrics []ProductMetric) models.Priority {
	signal := 0.0
	for _, m := range metrics {
		signal = math.Max(signal, math.Abs(m.VariationPct)*0.7+m.ProfitRecent/100*0.3)
	}

	switch {
	case signal >= 20:
		return models.PriorityHigh
	case signal >= 8:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// StockPriority tiers the tightest stock coverage in scope. A large valued
// inventory raises a low tier to medium.
func StockPriority(metrics []ProductMetric, highInventoryValue float64) models.Priority {
	var minCover *float64
	maxInventory := 0.0
	for _, m := range metrics {
		if m.CoverageWeeks != nil && (minCover == nil || *m.CoverageWeeks < *minCover) {
			c := *m.CoverageWeeks
			minCover = &c
		}
		if m.ValuedInventory != nil {
			maxInventory = math.Max(maxInventory, *m.ValuedInventory)
		}
	}

	tier := models.PriorityLow
	if minCover != nil {
		switch {
		case *minCover < 2:
			tier = models.PriorityHigh
		case *minCover < 4:
			tier = models.PriorityMedium
		}
	}
	if tier == models.PriorityLow && highInventoryValue > 0 && maxInventory >= highInventoryValue {
		tier = models.PriorityMedium
	}
	return tier
}

// DerivePriority returns the higher of the marketing and stock tiers.
func DerivePriority(metrics []ProductMetric, highInventoryValue float64) models.Priority {
	marketing := MarketingPriority(metrics)
	stock := StockPriority(metrics, highInventoryValue)
	if stock.Rank() > marketing.Rank() {
		return stock
	}
	return marketing
}
