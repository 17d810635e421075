package connector

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/weekendly/planner/infra/httpclient"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

//go:embed fallback/vendor_a.json
var vendorAFallback []byte

// vendorAEvent is vendor A's raw event record.
type vendorAEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	StartsAt string `json:"starts_at"`
	Location struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Address string  `json:"address"`
		City    string  `json:"city"`
	} `json:"location"`
	Ticket struct {
		Price       float64  `json:"price"`
		Currency    string   `json:"currency"`
		VatIncluded bool     `json:"vat_included"`
		VatRate     *float64 `json:"vat_rate"`
	} `json:"ticket"`
	Surcharges []struct {
		Kind     string  `json:"kind"`
		Value    float64 `json:"value"`
		Currency string  `json:"currency"`
	} `json:"surcharges"`
	PromoCodes   []string `json:"promo_codes"`
	Availability string   `json:"availability"`
	Link         string   `json:"link"`
}

type vendorAPage struct {
	Events []vendorAEvent `json:"events"`
}

// VendorA is the connector for ticket vendor A, a paginated JSON API.
type VendorA struct {
	client *httpclient.Client
	cfg    config.Connector
	logger *slog.Logger
}

// NewVendorA creates the vendor A connector.
func NewVendorA(client *httpclient.Client, cfg config.Connector, logger *slog.Logger) *VendorA {
	return &VendorA{client: client, cfg: cfg, logger: logger}
}

// Fetch returns all offers for the given ISO date, aggregating pages until a
// short or empty page. Any failure serves the bundled dataset instead.
func (v *VendorA) Fetch(ctx context.Context, date string) []domain.Offer {
	live := func(ctx context.Context, page, pageSize int) ([]vendorAEvent, error) {
		var payload vendorAPage
		params := map[string]string{
			"date":      date,
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(pageSize),
		}
		headers := map[string]string{}
		if v.cfg.Token != "" {
			headers["Authorization"] = "Bearer " + v.cfg.Token
		}
		if err := v.client.GetJSON(ctx, v.cfg.BaseURL+"/events", params, headers, &payload); err != nil {
			return nil, err
		}
		return payload.Events, nil
	}

	events, err := httpclient.Paginate(ctx, live, v.cfg.PageSize)
	if err != nil {
		v.logger.Warn("vendor A fetch failed, serving bundled dataset", "error", err)
		events = v.fallbackEvents(ctx)
	}

	offers := make([]domain.Offer, 0, len(events))
	for _, ev := range events {
		offers = append(offers, normalizeVendorA(ev))
	}
	return offers
}

func (v *VendorA) fallbackEvents(ctx context.Context) []vendorAEvent {
	var payload vendorAPage
	if err := json.Unmarshal(vendorAFallback, &payload); err != nil {
		v.logger.Error("vendor A bundled dataset unreadable", "error", err)
		return nil
	}
	// Serve the bundled events through the same pagination path so page
	// semantics stay identical to the live API.
	events, _ := httpclient.Paginate(ctx, func(_ context.Context, page, pageSize int) ([]vendorAEvent, error) {
		return slicePage(payload.Events, page, pageSize), nil
	}, v.cfg.PageSize)
	return events
}

func normalizeVendorA(ev vendorAEvent) domain.Offer {
	startTS, _ := time.Parse(time.RFC3339, ev.StartsAt)

	fees := make([]domain.FeeLine, 0, len(ev.Surcharges))
	for _, s := range ev.Surcharges {
		fees = append(fees, domain.FeeLine{
			Label:    s.Kind,
			Amount:   s.Value,
			Currency: money.Code(s.Currency),
		})
	}

	hint := domain.InventoryUnknown
	switch ev.Availability {
	case "low":
		hint = domain.InventoryLow
	case "medium":
		hint = domain.InventoryMed
	case "high":
		hint = domain.InventoryHigh
	}

	return domain.Offer{
		Provider: "vendor_a",
		Title:    ev.Name,
		StartTS:  startTS,
		Venue:    domain.Venue{Lat: ev.Location.Lat, Lng: ev.Location.Lng, Address: ev.Location.Address},
		City:     ev.Location.City,
		Price: money.Money{
			Amount:   ev.Ticket.Price,
			Currency: money.Code(ev.Ticket.Currency),
		},
		IncludesVat:   ev.Ticket.VatIncluded,
		VatRate:       ev.Ticket.VatRate,
		Fees:          fees,
		Promos:        ev.PromoCodes,
		InventoryHint: hint,
		URL:           ev.Link,
		SourceID:      "a-" + ev.ID,
	}
}

// slicePage returns the 1-based page slice of items, empty past the end.
func slicePage[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
