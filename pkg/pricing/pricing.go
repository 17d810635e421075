// Package pricing computes the landed cost of an offer: base price, VAT,
// fees and the best applicable promo, all converted into the user's target
// currency. Calculate is a pure function; its only lookups go through the
// provided rate table.
package pricing

import (
	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

// Config carries the pricing knobs sourced from settings.
type Config struct {
	// VatFallbackRate applies when an offer excludes VAT but does not state
	// its own rate.
	VatFallbackRate float64
	// PromoRules maps promo codes to their discount rules. Codes on an
	// offer that are absent here are ignored.
	PromoRules map[string]domain.PromoRule
}

// Calculate derives the PriceBreakdown for one offer in the target currency.
//
// Fees in mixed currencies are each converted individually before summation;
// summing first and converting once would misprice any offer whose fees do
// not share the base currency. At most one promo applies: the single largest
// discount, clamped so the total never goes negative.
func Calculate(offer domain.Offer, table domain.RateTable, target money.Code, cfg Config) domain.PriceBreakdown {
	offerCur := offer.Price.Currency

	base := table.Convert(offer.Price.Amount, offerCur, target)

	var vat float64
	if !offer.IncludesVat {
		rate := cfg.VatFallbackRate
		if offer.VatRate != nil {
			rate = *offer.VatRate
		}
		vat = base * rate
	}

	var fees float64
	for _, fee := range offer.Fees {
		feeCur := fee.Currency
		if feeCur == "" {
			feeCur = offerCur
		}
		fees += table.Convert(fee.Amount, feeCur, target)
	}

	subtotal := base + vat + fees
	discount := bestDiscount(offer, table, target, cfg, base, fees, vat)
	if discount > subtotal {
		discount = subtotal
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	return domain.PriceBreakdown{
		Base:     money.Round2(base),
		Vat:      money.Round2(vat),
		Fees:     money.Round2(fees),
		Promos:   money.Round2(discount),
		Total:    money.Round2(total),
		Currency: target,
		Components: map[string]float64{
			"subtotal": money.Round2(subtotal),
		},
	}
}

// bestDiscount evaluates every promo attached to the offer and returns the
// single largest resulting discount. Promos are not cumulative.
func bestDiscount(offer domain.Offer, table domain.RateTable, target money.Code, cfg Config, base, fees, vat float64) float64 {
	var best float64
	for _, code := range offer.Promos {
		rule, ok := cfg.PromoRules[code]
		if !ok {
			continue
		}

		var discount float64
		switch rule.Type {
		case domain.PromoPercent:
			discount = rule.Value / 100.0 * scopeAmount(rule.Scope(), base, fees, vat)
		case domain.PromoFixed:
			cur := rule.Currency
			if cur == "" {
				cur = offer.Price.Currency
			}
			discount = table.Convert(rule.Value, cur, target)
		default:
			continue
		}

		if discount > best {
			best = discount
		}
	}
	return best
}

func scopeAmount(scope domain.PromoScope, base, fees, vat float64) float64 {
	switch scope {
	case domain.ScopeBase:
		return base
	case domain.ScopeBasePlusFees:
		return base + fees
	default:
		return base + fees + vat
	}
}
