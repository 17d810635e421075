// Package money provides functionality for handling monetary values.
//
// It is a value object that represents a monetary value in a specific currency.
// Invariants:
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - Displayed amounts are rounded to 2 decimal places, half-up.
//   - Landed totals are floor-clamped at zero, never negative.
package money

import (
	"fmt"
	"math/big"
)

// ErrInvalidCurrency is returned when an invalid currency code is provided.
var ErrInvalidCurrency = fmt.Errorf("invalid currency code")

// Money represents a monetary value in a specific currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency Code    `json:"currency"`
}

// New creates a new Money value object with the given amount and currency.
// Returns an error if the currency code is not valid ISO 4217 shape.
func New(amount float64, currency Code) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates a Money object from the given amount and currency.
// Panics if the currency code is invalid.
func Must(amount float64, currency Code) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(fmt.Sprintf("money.Must(%v, %v): %v", amount, currency, err))
	}
	return m
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// String returns a string representation of the Money object.
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", Round2(m.Amount), m.Currency)
}

// Round2 rounds an amount to 2 decimal places using round-half-up.
// big.Rat arithmetic avoids the float drift of naive multiply-and-truncate
// around the .005 boundary.
func Round2(x float64) float64 {
	r := new(big.Rat).SetFloat64(x)
	if r == nil {
		return 0
	}
	r.Mul(r, big.NewRat(100, 1))

	half := big.NewRat(1, 2)
	if r.Sign() >= 0 {
		r.Add(r, half)
	} else {
		r.Sub(r, half)
	}

	// Truncate toward zero after the half shift.
	num := new(big.Int).Quo(r.Num(), r.Denom())
	out := new(big.Rat).SetInt(num)
	out.Quo(out, big.NewRat(100, 1))
	f, _ := out.Float64()
	return f
}

// Round4 rounds to 4 decimal places, half-up. Used for ranking scores.
func Round4(x float64) float64 {
	r := new(big.Rat).SetFloat64(x)
	if r == nil {
		return 0
	}
	r.Mul(r, big.NewRat(10000, 1))

	half := big.NewRat(1, 2)
	if r.Sign() >= 0 {
		r.Add(r, half)
	} else {
		r.Sub(r, half)
	}

	num := new(big.Int).Quo(r.Num(), r.Denom())
	out := new(big.Rat).SetInt(num)
	out.Quo(out, big.NewRat(10000, 1))
	f, _ := out.Float64()
	return f
}
