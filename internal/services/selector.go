// internal/services/selector.go
package services

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

// ErrNoCandidates means the option generator produced nothing, which the
// baseline promo rule makes impossible.
var ErrNoCandidates = errors.New("no recommendation candidates were generated")

// RotationSource supplies the seed that rotates among equally ranked
// products and among the top candidates, so repeated requests do not always
// show the same card while any single seed stays reproducible.
type RotationSource interface {
	Next(ctx context.Context) (uint64, error)
}

const (
	topCandidates = 3
	scoreEpsilon  = 1e-9
)

var kindWeights = map[models.RecommendationType]float64{
	models.RecommendationPricingIncrease: 4,
	models.RecommendationDiscount:        3,
	models.RecommendationPricingDecrease: 2,
	models.RecommendationBundle:          2,
	models.RecommendationPromoCampaign:   1,
}

// FocusScore ranks products for the focus pick.
func FocusScore(m ProductMetric) float64 {
	inventory := 0.0
	if m.ValuedInventory != nil {
		inventory = *m.ValuedInventory
	}
	return m.ProfitRecent*0.6 + inventory*0.3 + math.Abs(m.VariationPct)*0.1
}

// SelectFocus picks the focus product. A single product is returned as is;
// otherwise the seed rotates among the products sharing the top score.
func SelectFocus(metrics []ProductMetric, seed uint64) (ProductMetric, error) {
	switch len(metrics) {
	case 0:
		return ProductMetric{}, ErrEmptyScope
	case 1:
		return metrics[0], nil
	}

	ranked := make([]ProductMetric, len(metrics))
	copy(ranked, metrics)
	sort.SliceStable(ranked, func(i, j int) bool {
		return FocusScore(ranked[i]) > FocusScore(ranked[j])
	})

	best := FocusScore(ranked[0])
	tier := 1
	for tier < len(ranked) && math.Abs(FocusScore(ranked[tier])-best) < scoreEpsilon {
		tier++
	}
	return ranked[seed%uint64(tier)], nil
}

func candidateScore(c Candidate) float64 {
	return c.ImpactValue + kindWeights[c.Kind]*0.01
}

// RankCandidates orders candidates by impact plus kind weight, highest
// first. Equal scores keep generation order.
func RankCandidates(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return candidateScore(ranked[i]) > candidateScore(ranked[j])
	})
	return ranked
}

// SelectCandidate keeps the top three ranked candidates and picks one of
// them with the seed.
func SelectCandidate(candidates []Candidate, seed uint64) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoCandidates
	}

	ranked := RankCandidates(candidates)
	if len(ranked) > topCandidates {
		ranked = ranked[:topCandidates]
	}
	return ranked[seed%uint64(len(ranked))], nil
}
