package money

// Code represents an ISO 4217 currency code (e.g., "USD", "EUR").
type Code string

// Common currency codes.
const (
	EUR Code = "EUR"
	USD Code = "USD"
	GBP Code = "GBP"
	CHF Code = "CHF"
	JPY Code = "JPY"
)

// Pivot is the reference currency all cross-currency conversions are
// routed through.
const Pivot = EUR

// IsValid checks if the currency code is valid ISO 4217 shape
// (3 uppercase letters).
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}
