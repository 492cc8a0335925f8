// internal/services/forecast_heuristics.go
package services

import (
	"math"
	"sort"
)

// Fallback predictors. Each returns one value per input value, in input
// order, never negative.

// MonthlyHeuristic extrapolates every point by half the mean
// period-over-period delta of the series.
func MonthlyHeuristic(values []float64) []float64 {
	meanDelta := 0.0
	if len(values) > 1 {
		meanDelta = (values[len(values)-1] - values[0]) / float64(len(values)-1)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = nonNegative(v + meanDelta*0.5)
	}
	return out
}

// ProductHeuristic raises the top third of products by value 5% and lowers
// the bottom third 5%. A single product is left unchanged.
func ProductHeuristic(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	copy(out, values)
	if n < 2 {
		for i := range out {
			out[i] = nonNegative(out[i])
		}
		return out
	}

	third := n / 3
	if third < 1 {
		third = 1
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	for rank, idx := range order {
		switch {
		case rank < third:
			out[idx] = values[idx] * 1.05
		case rank >= n-third:
			out[idx] = values[idx] * 0.95
		}
		out[idx] = nonNegative(out[idx])
	}
	return out
}

// CategoryHeuristic applies a flat 3% uplift.
func CategoryHeuristic(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = nonNegative(v * 1.03)
	}
	return out
}

func nonNegative(v float64) float64 {
	return math.Max(0, round2(v))
}
