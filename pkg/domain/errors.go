package domain

import "errors"

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a request
	// before any network I/O happens.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRateUnavailable is returned when no exchange-rate source could be
	// resolved, including every fallback tier.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrInvalidRequest marks caller mistakes (e.g. non-positive budget)
	// that should surface as a 4xx at the orchestration boundary.
	ErrInvalidRequest = errors.New("invalid request")
)
