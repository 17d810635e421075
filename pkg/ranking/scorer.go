// Package ranking combines affordability, urgency and travel penalties into
// a single itinerary score in [0,1].
package ranking

import (
	"math"

	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

// Score ranks one priced offer against the user's budget. Higher is better.
// The result is clamped to [0,1] and rounded to 4 decimals.
func Score(price domain.PriceBreakdown, budgetPp float64, buyNow bool, daysToEvent int, distanceKm, co2KgPp float64) float64 {
	score := affordability(price.Total, budgetPp)

	if buyNow {
		score += 0.15
	}

	// Closer events score marginally higher.
	score += math.Max(0, 0.15-math.Min(float64(daysToEvent)/40.0, 0.15))

	score -= math.Min(0.10, distanceKm/500.0*0.01)
	score -= math.Min(0.10, co2KgPp/10.0*0.01)

	score = math.Max(0, math.Min(1, score))
	return money.Round4(score)
}

func affordability(total, budgetPp float64) float64 {
	if budgetPp <= 0 {
		return 0.2
	}
	if total <= budgetPp {
		return math.Min(1.0, 0.6+0.4*math.Min(budgetPp/math.Max(total, 1), 1))
	}
	overshoot := total - budgetPp
	return math.Max(0.2, 0.6-math.Min(overshoot/math.Max(total, 1), 0.5))
}
