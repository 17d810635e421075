package domain

import "github.com/weekendly/planner/pkg/money"

// Provenance tags where a resolved dataset came from, so degraded results
// stay observable downstream.
type Provenance string

const (
	// SourceLive means the data came from a successful upstream call.
	SourceLive Provenance = "live"
	// SourceCached means a disk cache entry younger than the max age.
	SourceCached Provenance = "cached"
	// SourceLastGood means a stale disk cache entry used after a failed fetch.
	SourceLastGood Provenance = "last_good"
	// SourceFallback means the static fallback table from configuration.
	SourceFallback Provenance = "fallback"
	// SourceFallbackPivotOnly means no fallback was configured; the table
	// degrades to the pivot currency alone.
	SourceFallbackPivotOnly Provenance = "fallback_eur_only"
)

// RateTable maps currency codes to their rate against the pivot currency.
// Invariant: the pivot currency is always present and mapped to 1.0.
type RateTable struct {
	Base  money.Code             `json:"base_currency"`
	Rates map[money.Code]float64 `json:"rates"`
}

// NewRateTable builds a table over the given rates, forcing the pivot entry.
func NewRateTable(base money.Code, rates map[money.Code]float64) RateTable {
	t := RateTable{Base: base, Rates: make(map[money.Code]float64, len(rates)+1)}
	for code, rate := range rates {
		t.Rates[code] = rate
	}
	t.Rates[base] = 1.0
	return t
}

// Rate returns the pivot rate for a currency and whether it is known.
func (t RateTable) Rate(code money.Code) (float64, bool) {
	r, ok := t.Rates[code]
	return r, ok
}

// Convert converts an amount between two currencies via the pivot:
// amount / rate[from] * rate[to]. When either currency is missing from the
// table the amount is returned unchanged — fail-soft, never an error.
func (t RateTable) Convert(amount float64, from, to money.Code) float64 {
	if from == to {
		return amount
	}
	fromRate, okFrom := t.Rates[from]
	toRate, okTo := t.Rates[to]
	if !okFrom || !okTo || fromRate == 0 {
		return amount
	}
	return amount / fromRate * toRate
}
