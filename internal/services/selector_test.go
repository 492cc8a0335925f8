// internal/services/selector_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

func TestSelectFocus(t *testing.T) {
	_, err := SelectFocus(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyScope)

	only := ProductMetric{ID: 7}
	focus, err := SelectFocus([]ProductMetric{only}, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(7), focus.ID)

	metrics := []ProductMetric{
		{ID: 1, ProfitRecent: 100},
		{ID: 2, ProfitRecent: 500},
		{ID: 3, ProfitRecent: 50, ValuedInventory: ptr(200.0)},
	}
	for seed := uint64(0); seed < 4; seed++ {
		focus, err := SelectFocus(metrics, seed)
		require.NoError(t, err)
		assert.Equal(t, uint(2), focus.ID)
	}
}

func TestSelectFocusRotatesWithinTopTier(t *testing.T) {
	metrics := []ProductMetric{
		{ID: 1, ProfitRecent: 300},
		{ID: 2, ProfitRecent: 10},
		{ID: 3, ProfitRecent: 300},
	}

	seen := map[uint]bool{}
	for seed := uint64(0); seed < 6; seed++ {
		focus, err := SelectFocus(metrics, seed)
		require.NoError(t, err)
		seen[focus.ID] = true
	}
	assert.Equal(t, map[uint]bool{1: true, 3: true}, seen)

	a, _ := SelectFocus(metrics, 5)
	b, _ := SelectFocus(metrics, 5)
	assert.Equal(t, a.ID, b.ID)
}

func TestSelectCandidate(t *testing.T) {
	_, err := SelectCandidate(nil, 0)
	assert.ErrorIs(t, err, ErrNoCandidates)

	cands := []Candidate{
		{Kind: models.RecommendationPromoCampaign, Rule: "promo_campaign"},
		{Kind: models.RecommendationBundle, Rule: "bundle"},
		{Kind: models.RecommendationDiscount, Rule: "discount", ImpactValue: 50},
		{Kind: models.RecommendationPricingIncrease, Rule: "price_increase", ImpactValue: 120},
	}

	ranked := RankCandidates(cands)
	assert.Equal(t, []string{"price_increase", "discount", "bundle", "promo_campaign"}, rules(ranked))

	picked := map[string]bool{}
	for seed := uint64(0); seed < 9; seed++ {
		c, err := SelectCandidate(cands, seed)
		require.NoError(t, err)
		picked[c.Rule] = true
	}
	assert.Equal(t, map[string]bool{"price_increase": true, "discount": true, "bundle": true}, picked)

	c, err := SelectCandidate(cands, 0)
	require.NoError(t, err)
	assert.Equal(t, "price_increase", c.Rule)
}

func TestRankCandidatesKeepsGenerationOrderOnTies(t *testing.T) {
	cands := []Candidate{
		{Kind: models.RecommendationBundle, Rule: "bundle"},
		{Kind: models.RecommendationBundle, Rule: "cross_sell"},
	}
	assert.Equal(t, []string{"bundle", "cross_sell"}, rules(RankCandidates(cands)))
}
