// internal/services/recommendation_prompt.go
package services

import (
	"fmt"
	"strings"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

// BuildRecommendationPrompt embeds every metric in scope and the computed
// proposal, and asks for a single JSON object back.
func BuildRecommendationPrompt(metrics []ProductMetric, best Candidate) string {
	kinds := make([]string, len(models.RecommendationTypes))
	for i, k := range models.RecommendationTypes {
		kinds[i] = fmt.Sprintf("%q", k)
	}

	var b strings.Builder
	b.WriteString("You are a retail analyst writing one short, actionable recommendation for an e-commerce store.\n")
	b.WriteString("Restate the computed proposal below in clear business language. Do not invent figures; use only the data given.\n\n")
	b.WriteString("Reply with exactly one JSON object and nothing else, using these keys:\n")
	fmt.Fprintf(&b, "  title (string), type (one of %s), change_pct (integer 0-50 or null),\n", strings.Join(kinds, ", "))
	b.WriteString("  description (string, max 2 sentences), impact (string, may be empty), product_id (integer), product_name (string).\n\n")

	b.WriteString("Computed proposal:\n")
	fmt.Fprintf(&b, "  type=%s change_pct=%s product_id=%d\n", best.Kind, formatOptionalInt(best.ChangePct), best.ProductID)
	fmt.Fprintf(&b, "  title=%s\n", best.Title)
	fmt.Fprintf(&b, "  description=%s\n", best.Description)
	if best.Impact != "" {
		fmt.Fprintf(&b, "  impact=%s\n", best.Impact)
	}

	b.WriteString("\nProducts in scope:\n")
	for _, m := range metrics {
		fmt.Fprintf(&b,
			"- id=%d | name=%s | category=%s | price=%.2f | cost=%s | unit_margin=%s | margin_pct=%s | stock=%d | trend=%s | units_30d=%d | units_prev_30d=%d | revenue_30d=%.2f | variation_pct=%+.1f | weekly_avg=%.2f | coverage_weeks=%s | profit_30d=%.2f | valued_inventory=%s\n",
			m.ID, m.Name, m.Category, m.Price,
			formatOptionalFloat(m.Cost), formatOptionalFloat(m.UnitMargin), formatOptionalFloat(m.MarginPct),
			m.Stock, orDash(m.Trend), m.UnitsRecent, m.UnitsPrev, m.RevenueRecent,
			m.VariationPct, m.WeeklyAvg, formatOptionalFloat(m.CoverageWeeks), m.ProfitRecent,
			formatOptionalFloat(m.ValuedInventory),
		)
	}
	return b.String()
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
