// internal/services/options.go
package services

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jguerrero45/dashboard-insights/internal/models"
)

// Candidate is one deterministic action proposal for a focus product.
type Candidate struct {
	Kind        models.RecommendationType `json:"type"`
	ChangePct   *int                      `json:"change_pct"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Impact      string                    `json:"impact"`
	ImpactValue float64                   `json:"impact_value"`
	Rule        string                    `json:"rule"`
	ProductID   uint                      `json:"product_id"`
	Product     *ProductMetric            `json:"-"`
}

const coverageCapWeeks = 12.0

var impactPrinter = message.NewPrinter(language.English)

// signal wraps the focus metric with the null-aware comparisons the rules
// use. Unknown coverage means no recent sales: with stock on hand it counts
// as unbounded. Unknown margin never blocks nor triggers a rule.
type signal struct {
	m ProductMetric
}

func (s signal) variation() float64 { return s.m.VariationPct }

func (s signal) coverageAtLeast(weeks float64) bool {
	if s.m.CoverageWeeks == nil {
		return s.m.Stock > 0
	}
	return *s.m.CoverageWeeks >= weeks
}

func (s signal) coverageBelow(weeks float64) bool {
	return s.m.CoverageWeeks != nil && *s.m.CoverageWeeks < weeks
}

func (s signal) coverageBetween(lo, hi float64) bool {
	return s.m.CoverageWeeks != nil && *s.m.CoverageWeeks >= lo && *s.m.CoverageWeeks <= hi
}

func (s signal) marginAtLeast(pct float64) bool {
	return s.m.MarginPct == nil || *s.m.MarginPct >= pct
}

func (s signal) marginAtMost(pct float64) bool {
	return s.m.MarginPct == nil || *s.m.MarginPct <= pct
}

func (s signal) marginBelow(pct float64) bool {
	return s.m.MarginPct != nil && *s.m.MarginPct < pct
}

func (s signal) coverageText() string {
	if s.m.CoverageWeeks == nil {
		return "no recent sales"
	}
	c := math.Min(*s.m.CoverageWeeks, coverageCapWeeks)
	if c >= coverageCapWeeks {
		return "≥12 wk"
	}
	return fmt.Sprintf("%.1f wk", c)
}

// optionRule appends at most one candidate. Rules are independent of each
// other; new ones are added to optionRules without touching the others.
type optionRule struct {
	name    string
	applies func(s signal) bool
	build   func(s signal) Candidate
}

var optionRules = []optionRule{
	{
		name: "price_increase",
		applies: func(s signal) bool {
			return s.variation() >= 8 && s.marginAtMost(50) && s.coverageAtLeast(2)
		},
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationPricingIncrease, ptr(6),
				"Recommended Price Adjustment",
				"Demand is rising and the margin leaves room for a controlled increase")
		},
	},
	{
		name: "discount",
		applies: func(s signal) bool {
			falling := s.variation() <= -8
			return (s.marginAtLeast(30) && (falling || s.coverageAtLeast(8))) || s.coverageAtLeast(10)
		},
		build: func(s signal) Candidate {
			falling := s.variation() <= -8
			overstock := s.coverageAtLeast(8)
			rationale := "High stock; a discount speeds up rotation"
			switch {
			case falling && overstock:
				rationale = "Falling demand and high stock; rotate inventory with a discount"
			case falling:
				rationale = "Falling demand; a price incentive to win back volume"
			}
			return newCandidate(s, models.RecommendationDiscount, ptr(10),
				"Recommended Promotional Discount", rationale)
		},
	},
	{
		name: "bundle",
		applies: func(s signal) bool {
			return s.marginBelow(25) || s.coverageBelow(2)
		},
		build: func(s signal) Candidate {
			rationale := "Thin margin; raise the ticket size with a combo"
			if s.coverageBelow(2) {
				rationale = "Low stock; maximize ticket size and protect availability"
			}
			return newCandidate(s, models.RecommendationBundle, nil,
				"Bundle to Maximize Ticket Size", rationale)
		},
	},
	{
		name:    "promo_campaign",
		applies: func(s signal) bool { return true },
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationPromoCampaign, nil,
				"Recommended Promotional Campaign",
				"Targeted campaign to lift conversion and upsell")
		},
	},
	{
		name:    "flash_sale",
		applies: func(s signal) bool { return s.coverageAtLeast(10) },
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationDiscount, ptr(15),
				"48h Flash Sale to Clear Stock",
				"Very high stock; a 48h flash sale frees up inventory")
		},
	},
	{
		name: "remarketing",
		applies: func(s signal) bool {
			return s.variation() <= -5 && s.coverageAtLeast(4)
		},
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationPromoCampaign, nil,
				"Remarketing to Product Page Visitors (14d)",
				"Prior traffic without conversion; re-engage recent visitors with a purchase CTA")
		},
	},
	{
		name: "cross_sell",
		applies: func(s signal) bool {
			return s.variation() >= 6 && s.coverageBetween(3, 7)
		},
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationBundle, nil,
				"Cross-sell on Product Page and Cart",
				"Moderate demand; raise the average ticket with a complementary accessory")
		},
	},
	{
		name: "free_shipping",
		applies: func(s signal) bool {
			return s.m.RevenueRecent > 0 && s.coverageAtLeast(6)
		},
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationPromoCampaign, nil,
				"Conditional Free Shipping",
				"High stock; push conversion with free shipping above a minimum ticket")
		},
	},
	{
		name: "price_decrease",
		applies: func(s signal) bool {
			return s.m.RevenueRecent == 0 && s.m.Stock > 0
		},
		build: func(s signal) Candidate {
			return newCandidate(s, models.RecommendationPricingDecrease, ptr(5),
				"Controlled Price Cut to Activate Sales",
				"No recent sales; a price test to activate demand")
		},
	},
}

// GenerateOptions evaluates every rule against the focus product in order.
// The promo campaign rule always applies, so the result is never empty.
func GenerateOptions(focus ProductMetric) []Candidate {
	s := signal{m: focus}
	candidates := make([]Candidate, 0, len(optionRules))
	for _, rule := range optionRules {
		if !rule.applies(s) {
			continue
		}
		c := rule.build(s)
		c.Rule = rule.name
		candidates = append(candidates, c)
	}
	return candidates
}

func newCandidate(s signal, kind models.RecommendationType, changePct *int, title, rationale string) Candidate {
	impactValue := 0.0
	if changePct != nil && s.m.ProfitRecent > 0 {
		impactValue = round2(s.m.ProfitRecent * float64(*changePct) / 100)
	}
	impact := impactText(impactValue)
	if impact == "" {
		// ranked only on what the card can show
		impactValue = 0
	}

	focus := s.m
	return Candidate{
		Kind:        kind,
		ChangePct:   changePct,
		Title:       title,
		Description: fmt.Sprintf("%s Reason: %s. Signal: variation %+.1f%%, coverage %s.", actionText(kind, changePct), rationale, s.variation(), s.coverageText()),
		Impact:      impact,
		ImpactValue: impactValue,
		ProductID:   focus.ID,
		Product:     &focus,
	}
}

func actionText(kind models.RecommendationType, changePct *int) string {
	switch kind {
	case models.RecommendationDiscount:
		return fmt.Sprintf("Action: apply a %d%% discount on the product page and cart, and push it in banners and listings.", derefInt(changePct))
	case models.RecommendationPricingIncrease:
		if changePct != nil {
			return fmt.Sprintf("Action: raise the price by %d%% and monitor conversion for 48h.", *changePct)
		}
		return "Action: raise the price and monitor conversion for 48h."
	case models.RecommendationPricingDecrease:
		return fmt.Sprintf("Action: lower the price by %d%% as a test and monitor conversion for 48h.", derefInt(changePct))
	case models.RecommendationBundle:
		return "Action: build a bundle of the focus product plus an accessory and feature it on the product page and cart."
	default:
		return "Action: launch a promotional campaign for visitors of the product page in the last 14 days with a purchase CTA."
	}
}

func impactText(value float64) string {
	rounded := int64(math.Round(value))
	if rounded < 1 {
		return ""
	}
	return impactPrinter.Sprintf("+$%d estimated monthly", rounded)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
