package domain

import "github.com/weekendly/planner/pkg/money"

// PriceBreakdown is the landed-cost decomposition of one offer in the user's
// target currency. Derived, never mutated after creation; one per offer per
// planning request. All components are independently rounded to 2 decimals.
type PriceBreakdown struct {
	Base       float64            `json:"base"`
	Vat        float64            `json:"vat"`
	Fees       float64            `json:"fees"`
	Promos     float64            `json:"promos"`
	Total      float64            `json:"total"`
	Currency   money.Code         `json:"currency"`
	Components map[string]float64 `json:"components,omitempty"`
}

// Itinerary is the final ranked output unit, constructed once per offer per
// planning request and never mutated thereafter.
type Itinerary struct {
	Offer      Offer          `json:"offer"`
	Price      PriceBreakdown `json:"price"`
	Score      float64        `json:"score"`
	BuyNow     bool           `json:"buy_now"`
	BuyReason  string         `json:"buy_reason"`
	DistanceKm float64        `json:"distance_km"`
	CO2KgPp    float64        `json:"co2_kg_pp"`
	Forecast   *Forecast      `json:"forecast,omitempty"`
}
