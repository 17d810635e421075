// Package planner orchestrates the aggregation pipeline: concurrent source
// fan-out, landed-cost pricing, buy-now policy, travel estimation and
// scoring, producing the ranked shortlist.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/weekendly/planner/infra/connector"
	"github.com/weekendly/planner/infra/pricelog"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/fx"
	"github.com/weekendly/planner/pkg/metrics"
	"github.com/weekendly/planner/pkg/money"
	"github.com/weekendly/planner/pkg/policy"
	"github.com/weekendly/planner/pkg/pricing"
	"github.com/weekendly/planner/pkg/ranking"
	"github.com/weekendly/planner/pkg/travel"
)

const varianceWindow = 72 * time.Hour

// PlanRequest is one planning query.
type PlanRequest struct {
	// Date is the target day in ISO format (2006-01-02).
	Date string
	// BudgetPp is the per-person budget in the configured target currency.
	BudgetPp   float64
	WithDining bool
	// HomeCity overrides the configured home city when non-empty.
	HomeCity string
}

// PlanResult is the ranked outcome of one planning query.
type PlanResult struct {
	Date        string                `json:"date"`
	Currency    string                `json:"currency"`
	Itineraries []domain.Itinerary    `json:"itineraries"`
	Dining      []domain.DiningOption `json:"dining,omitempty"`
	// RatesProvenance tags how the exchange-rate table was obtained.
	RatesProvenance domain.Provenance `json:"rates_provenance"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// Planner composes the sources and scoring stages. Construct with New; all
// dependencies except the price log are required.
type Planner struct {
	vendorA connector.TicketSource
	vendorB connector.TicketSource
	dining  connector.DiningSource
	weather connector.WeatherSource
	fx      *fx.Resolver
	prices  *pricelog.Store
	cfg     *config.Settings
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock injects a clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithPriceLog wires the optional price-observation store.
func WithPriceLog(store *pricelog.Store) Option {
	return func(p *Planner) { p.prices = store }
}

// New creates a Planner.
func New(
	vendorA, vendorB connector.TicketSource,
	dining connector.DiningSource,
	weather connector.WeatherSource,
	resolver *fx.Resolver,
	cfg *config.Settings,
	collector *metrics.Collector,
	logger *slog.Logger,
	opts ...Option,
) *Planner {
	p := &Planner{
		vendorA: vendorA,
		vendorB: vendorB,
		dining:  dining,
		weather: weather,
		fx:      resolver,
		cfg:     cfg,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan executes one planning query end to end. The only error it returns is
// request validation; upstream failures degrade inside the sources and never
// surface here.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	if req.BudgetPp <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive, got %v", domain.ErrInvalidRequest, req.BudgetPp)
	}
	if req.Date == "" {
		req.Date = p.now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", domain.ErrInvalidRequest, req.Date)
	}
	started := p.now()

	// Independent sources fan out together; the FX table is needed before
	// any pricing, so the join covers all three.
	var (
		offersA, offersB []domain.Offer
		table            domain.RateTable
		provenance       domain.Provenance
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		table, provenance = p.fx.GetRates(ctx)
	}()
	offersCh := make(chan []domain.Offer, 2)
	go func() { offersCh <- p.vendorA.Fetch(ctx, req.Date) }()
	go func() { offersCh <- p.vendorB.Fetch(ctx, req.Date) }()

	first, second := <-offersCh, <-offersCh
	<-done
	offersA, offersB = first, second

	offers := make([]domain.Offer, 0, len(offersA)+len(offersB))
	offers = append(offers, offersA...)
	offers = append(offers, offersB...)
	p.logger.Info("sources aggregated",
		"offers", len(offers), "rates_provenance", string(provenance), "date", req.Date)

	homeCity := req.HomeCity
	if homeCity == "" {
		homeCity = p.cfg.App.HomeCity
	}
	target := p.cfg.App.Currency

	itineraries := make([]domain.Itinerary, 0, len(offers))
	for _, offer := range offers {
		itineraries = append(itineraries, p.evaluate(offer, table, target, homeCity, req))
	}

	sort.SliceStable(itineraries, func(i, j int) bool {
		return itineraries[i].Score > itineraries[j].Score
	})
	topN := p.cfg.App.TopN
	if topN <= 0 {
		topN = 3
	}
	if len(itineraries) > topN {
		itineraries = itineraries[:topN]
	}

	// Weather only for the shortlist; it never changes ranking.
	for i := range itineraries {
		v := itineraries[i].Offer.Venue
		if v.Lat != 0 || v.Lng != 0 {
			itineraries[i].Forecast = p.weather.FetchWeather(ctx, v.Lat, v.Lng)
		}
	}

	result := &PlanResult{
		Date:            req.Date,
		Currency:        string(target),
		Itineraries:     itineraries,
		RatesProvenance: provenance,
		GeneratedAt:     p.now().UTC(),
	}
	if req.WithDining {
		result.Dining = p.dining.FetchDining(ctx, req.Date)
	}

	if p.metrics != nil {
		p.metrics.RecordLatency("plan", float64(p.now().Sub(started).Milliseconds()))
	}
	return result, nil
}

// evaluate runs the per-offer pipeline: landed cost, urgency, travel and
// final score.
func (p *Planner) evaluate(offer domain.Offer, table domain.RateTable, target money.Code, homeCity string, req PlanRequest) domain.Itinerary {
	breakdown := pricing.Calculate(offer, table, target, pricing.Config{
		VatFallbackRate: p.cfg.Pricing.VatFallbackRate,
		PromoRules:      p.cfg.Pricing.PromoRules,
	})

	days := policy.DaysUntil(offer.StartTS, p.now())

	variance := 0.0
	if p.prices != nil {
		if err := p.prices.Record(offer.Provider, offer.Title, breakdown.Total, target, p.now()); err != nil {
			p.logger.Warn("price observation not recorded", "error", err)
		}
		v, err := p.prices.Variance(offer.Provider, offer.Title, varianceWindow)
		if err != nil {
			p.logger.Warn("price variance unavailable", "error", err)
		} else {
			variance = v
		}
	}

	buyNow, reason := policy.Decide(offer.Hint(), days, variance, policy.Thresholds{
		DaysThreshold:        p.cfg.App.PriceDropDaysThresh,
		LowInventoryBonus:    p.cfg.App.LowInventoryBonus,
		HighInventoryPenalty: p.cfg.App.HighInventoryPenalty,
	})

	var distanceKm, co2 float64
	if offer.City != "" && homeCity != "" {
		if info, ok := travel.Lookup(homeCity, offer.City); ok {
			distanceKm, co2 = info.DistanceKm, info.CO2KgPp
		}
	}

	score := ranking.Score(breakdown, req.BudgetPp, buyNow, days, distanceKm, co2)

	return domain.Itinerary{
		Offer:      offer,
		Price:      breakdown,
		Score:      score,
		BuyNow:     buyNow,
		BuyReason:  reason,
		DistanceKm: distanceKm,
		CO2KgPp:    co2,
	}
}
