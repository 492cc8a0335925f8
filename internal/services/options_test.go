// internal/services/options_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

func kinds(cands []Candidate) []models.RecommendationType {
	out := make([]models.RecommendationType, len(cands))
	for i, c := range cands {
		out[i] = c.Kind
	}
	return out
}

func rules(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Rule
	}
	return out
}

func TestGenerateOptionsNoRecentSales(t *testing.T) {
	m := BuildProductMetric(product(1, "Mug", "Home", 50, ptr(30.0), 100), window(1, 0, 0), window(1, 0, 0))

	assert.Equal(t, 0.0, m.VariationPct)
	assert.Nil(t, m.CoverageWeeks)

	cands := GenerateOptions(m)
	assert.Contains(t, kinds(cands), models.RecommendationPromoCampaign)
	assert.NotContains(t, kinds(cands), models.RecommendationPricingIncrease)
	assert.Equal(t, []string{"discount", "promo_campaign", "flash_sale", "price_decrease"}, rules(cands))

	for _, c := range cands {
		assert.Zero(t, c.ImpactValue)
		assert.Empty(t, c.Impact)
		assert.Contains(t, c.Description, "coverage no recent sales")
	}
}

func TestGenerateOptionsRisingDemand(t *testing.T) {
	// margin 40%, 200 units against 100, stock for four weeks
	m := BuildProductMetric(product(2, "Earbuds", "Electronics", 100, ptr(60.0), 200), window(2, 200, 20000), window(2, 100, 10000))

	require.NotNil(t, m.CoverageWeeks)
	assert.Equal(t, 100.0, m.VariationPct)
	assert.Equal(t, 4.0, *m.CoverageWeeks)
	assert.Equal(t, 8000.0, m.ProfitRecent)

	cands := GenerateOptions(m)
	assert.Equal(t, []string{"price_increase", "promo_campaign", "cross_sell"}, rules(cands))

	increase := cands[0]
	require.NotNil(t, increase.ChangePct)
	assert.Equal(t, 6, *increase.ChangePct)
	assert.Equal(t, 480.0, increase.ImpactValue)
	assert.Equal(t, "+$480 estimated monthly", increase.Impact)

	best, err := SelectCandidate(cands, 0)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationPricingIncrease, best.Kind)

	top := RankCandidates(cands)[:3]
	assert.Contains(t, kinds(top), models.RecommendationPricingIncrease)
}

func TestGenerateOptionsLowStockNeedsCoverage(t *testing.T) {
	// same demand but only one week of stock: the increase is held back
	m := BuildProductMetric(product(2, "Earbuds", "Electronics", 100, ptr(60.0), 50), window(2, 200, 20000), window(2, 100, 10000))

	cands := GenerateOptions(m)
	assert.NotContains(t, kinds(cands), models.RecommendationPricingIncrease)
	assert.Equal(t, []string{"bundle", "promo_campaign"}, rules(cands))
	assert.Contains(t, cands[0].Description, "Low stock")
}

func TestGenerateOptionsUnknownMargin(t *testing.T) {
	m := BuildProductMetric(product(3, "Watch", "Electronics", 149, nil, 40), window(3, 40, 5960), window(3, 40, 5960))

	assert.Nil(t, m.MarginPct)
	assert.Zero(t, m.ProfitRecent)

	cands := GenerateOptions(m)
	// coverage 4 weeks, flat demand: unknown margin alone triggers nothing
	assert.Equal(t, []string{"promo_campaign"}, rules(cands))
}

func TestGenerateOptionsFallingDemandOverstock(t *testing.T) {
	m := BuildProductMetric(product(4, "Mat", "Sports", 25, ptr(8.0), 300), window(4, 20, 500), window(4, 40, 1000))

	cands := GenerateOptions(m)
	assert.Equal(t, []string{"discount", "promo_campaign", "flash_sale", "remarketing", "free_shipping"}, rules(cands))
	assert.Contains(t, cands[0].Description, "Falling demand and high stock")
	assert.Contains(t, cands[0].Description, "coverage ≥12 wk")
	assert.Contains(t, cands[0].Description, "variation -50.0%")
}

func TestGenerateOptionsInvariants(t *testing.T) {
	cases := []ProductMetric{
		BuildProductMetric(product(1, "A", "X", 10, nil, 0), window(1, 0, 0), window(1, 0, 0)),
		BuildProductMetric(product(2, "B", "X", 10, ptr(9.5), 1), window(2, 100, 1000), window(2, 1, 10)),
		BuildProductMetric(product(3, "C", "X", 0, ptr(5.0), 1000), window(3, 3, 0), window(3, 9, 0)),
		BuildProductMetric(product(4, "D", "X", 80, ptr(10.0), 5), window(4, 12, 960), window(4, 10, 800)),
	}

	for _, m := range cases {
		first := GenerateOptions(m)
		second := GenerateOptions(m)

		assert.NotEmpty(t, first)
		assert.Equal(t, first, second)
		for _, c := range first {
			assert.Equal(t, m.ID, c.ProductID)
			if c.ChangePct != nil {
				assert.GreaterOrEqual(t, *c.ChangePct, 0)
				assert.LessOrEqual(t, *c.ChangePct, 50)
			}
		}
	}
}

func TestSubDollarImpactIsNotRanked(t *testing.T) {
	pct := 10
	small := newCandidate(signal{m: ProductMetric{ID: 9, ProfitRecent: 4}}, models.RecommendationPricingIncrease, &pct, "Raise price", "demand is up")
	assert.Empty(t, small.Impact)
	assert.Zero(t, small.ImpactValue)

	shown := newCandidate(signal{m: ProductMetric{ID: 9, ProfitRecent: 40}}, models.RecommendationPricingIncrease, &pct, "Raise price", "demand is up")
	assert.Equal(t, "+$4 estimated monthly", shown.Impact)
	assert.Equal(t, 4.0, shown.ImpactValue)
}

func TestImpactText(t *testing.T) {
	assert.Equal(t, "+$1,234 estimated monthly", impactText(1234.4))
	assert.Equal(t, "+$1 estimated monthly", impactText(0.6))
	assert.Empty(t, impactText(0.4))
	assert.Empty(t, impactText(0))
}
