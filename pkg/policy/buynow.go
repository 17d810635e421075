// Package policy implements the buy-now-or-wait heuristic. Rules are
// evaluated in order; the first match wins.
package policy

import (
	"time"

	"github.com/weekendly/planner/pkg/domain"
)

// Thresholds configures the heuristic from settings.
type Thresholds struct {
	// DaysThreshold forces a buy when the event is at most this many days out.
	DaysThreshold int
	// LowInventoryBonus and HighInventoryPenalty are retained for the price
	// drop model; the rule order itself is fixed.
	LowInventoryBonus    float64
	HighInventoryPenalty float64
}

// Decision reasons, stable strings surfaced to the presentation layer.
const (
	ReasonEventSoon     = "event soon"
	ReasonLowInventory  = "low inventory"
	ReasonStableSupply  = "high inventory, stable price"
	ReasonVolatility    = "recent volatility"
	ReasonNoUrgency     = "no urgency detected"
	volatilityThreshold = 0.15
)

// Decide returns whether to buy immediately and the matching reason.
func Decide(hint domain.InventoryHint, daysToEvent int, priceVariance float64, th Thresholds) (bool, string) {
	switch {
	case daysToEvent <= th.DaysThreshold:
		return true, ReasonEventSoon
	case hint == domain.InventoryLow:
		return true, ReasonLowInventory
	case hint == domain.InventoryHigh && priceVariance <= 0:
		return false, ReasonStableSupply
	case priceVariance > volatilityThreshold:
		return true, ReasonVolatility
	default:
		return false, ReasonNoUrgency
	}
}

// DaysUntil returns the whole days between now and the event start, floored
// and clamped at zero for events already past.
func DaysUntil(startTS, now time.Time) int {
	days := int(startTS.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
