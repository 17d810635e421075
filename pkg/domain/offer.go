// Package domain holds the core types shared across the planning pipeline:
// normalized offers, exchange-rate tables, price breakdowns and ranked
// itineraries. Values are immutable once produced by their owning layer.
package domain

import (
	"time"

	"github.com/weekendly/planner/pkg/money"
)

// InventoryHint is a coarse scarcity signal attached to an offer.
type InventoryHint string

const (
	InventoryLow     InventoryHint = "low"
	InventoryMed     InventoryHint = "med"
	InventoryHigh    InventoryHint = "high"
	InventoryUnknown InventoryHint = "unknown"
)

// PromoType distinguishes percentage discounts from fixed-amount ones.
type PromoType string

const (
	PromoPercent PromoType = "percent"
	PromoFixed   PromoType = "fixed"
)

// PromoScope names the amount a percent promo is computed against.
type PromoScope string

const (
	ScopeBase         PromoScope = "base"
	ScopeBasePlusFees PromoScope = "base_plus_fees"
	ScopeTotal        PromoScope = "total"
)

// PromoRule describes a single discount rule. At most one promo is applied
// per offer: the single best discount, never cumulative.
type PromoRule struct {
	Code      string     `json:"code" yaml:"code"`
	Type      PromoType  `json:"type" yaml:"type"`
	Value     float64    `json:"value" yaml:"value"`
	AppliesTo PromoScope `json:"applies_to,omitempty" yaml:"applies_to"`
	// Currency only applies to fixed promos; empty means the offer currency.
	Currency money.Code `json:"currency,omitempty" yaml:"currency"`
}

// Scope returns the rule's scope, defaulting to ScopeTotal.
func (r PromoRule) Scope() PromoScope {
	switch r.AppliesTo {
	case ScopeBase, ScopeBasePlusFees:
		return r.AppliesTo
	default:
		return ScopeTotal
	}
}

// FeeLine is a single fee attached to an offer, possibly in a currency
// different from the offer's base price.
type FeeLine struct {
	Label    string     `json:"label"`
	Amount   float64    `json:"amount"`
	Currency money.Code `json:"currency,omitempty"`
}

// Venue is the physical location of an event.
type Venue struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Offer is the normalized event/ticket record produced by a connector from
// raw upstream JSON or its bundled fallback dataset. Immutable once produced.
type Offer struct {
	Provider      string        `json:"provider"`
	Title         string        `json:"title"`
	StartTS       time.Time     `json:"start_ts"`
	Venue         Venue         `json:"venue"`
	City          string        `json:"city,omitempty"`
	Price         money.Money   `json:"price"`
	IncludesVat   bool          `json:"includes_vat"`
	VatRate       *float64      `json:"vat_rate,omitempty"`
	Fees          []FeeLine     `json:"fees,omitempty"`
	Promos        []string      `json:"promos,omitempty"`
	InventoryHint InventoryHint `json:"inventory_hint"`
	URL           string        `json:"url,omitempty"`
	SourceID      string        `json:"source_id,omitempty"`
}

// Hint returns the offer's inventory hint, defaulting to unknown.
func (o Offer) Hint() InventoryHint {
	switch o.InventoryHint {
	case InventoryLow, InventoryMed, InventoryHigh:
		return o.InventoryHint
	default:
		return InventoryUnknown
	}
}

// Forecast is a normalized weather snapshot for an event location.
type Forecast struct {
	Desc    string   `json:"desc"`
	TempC   float64  `json:"temp_c"`
	TempMin *float64 `json:"temp_min,omitempty"`
	TempMax *float64 `json:"temp_max,omitempty"`
}

// DiningOption is a normalized dining record near an event venue.
type DiningOption struct {
	Name       string  `json:"name"`
	PriceTier  string  `json:"price_tier,omitempty"`
	EstPP      float64 `json:"est_pp"`
	DistanceM  int     `json:"distance_m"`
	BookingURL string  `json:"booking_url,omitempty"`
}
