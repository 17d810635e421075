// Package connector fetches and normalizes upstream vendor, dining and
// weather payloads into the common offer shapes. Every connector absorbs
// upstream failures — network errors, circuit-open rejections, non-2xx
// statuses and malformed payloads all fall back to bundled static datasets,
// so callers never see an upstream error.
package connector

import (
	"context"

	"github.com/weekendly/planner/pkg/domain"
)

// TicketSource is the capability the planner depends on for ticket offers.
type TicketSource interface {
	Fetch(ctx context.Context, date string) []domain.Offer
}

// DiningSource fetches dining options near the event.
type DiningSource interface {
	FetchDining(ctx context.Context, date string) []domain.DiningOption
}

// WeatherSource fetches a forecast for coordinates. A nil forecast means
// the data was unavailable; weather is always optional.
type WeatherSource interface {
	FetchWeather(ctx context.Context, lat, lng float64) *domain.Forecast
}
