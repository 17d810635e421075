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

//go:embed fallback/vendor_b.json
var vendorBFallback []byte

// vendorBItem is vendor B's raw listing record. Vendor B reports epoch
// start times and numeric stock levels.
type vendorBItem struct {
	Title     string `json:"title"`
	StartTime int64  `json:"start_time"`
	Venue     struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Address string  `json:"address"`
		City    string  `json:"city"`
	} `json:"venue"`
	Pricing struct {
		Amount       float64  `json:"amount"`
		CurrencyCode string   `json:"currency_code"`
		TaxInclusive bool     `json:"tax_inclusive"`
		TaxRate      *float64 `json:"tax_rate"`
	} `json:"pricing"`
	Fees []struct {
		Label    string  `json:"label"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"fees"`
	Offers      []string `json:"offers"`
	StockLevel  int      `json:"stock_level"`
	PurchaseURL string   `json:"purchase_url"`
	Ref         string   `json:"ref"`
}

type vendorBPage struct {
	Data struct {
		Items []vendorBItem `json:"items"`
	} `json:"data"`
}

// VendorB is the connector for ticket vendor B, a paginated JSON API with a
// nested data envelope.
type VendorB struct {
	client *httpclient.Client
	cfg    config.Connector
	logger *slog.Logger
}

// NewVendorB creates the vendor B connector.
func NewVendorB(client *httpclient.Client, cfg config.Connector, logger *slog.Logger) *VendorB {
	return &VendorB{client: client, cfg: cfg, logger: logger}
}

// Fetch returns all offers for the given ISO date; failures serve the
// bundled dataset.
func (v *VendorB) Fetch(ctx context.Context, date string) []domain.Offer {
	live := func(ctx context.Context, page, pageSize int) ([]vendorBItem, error) {
		var payload vendorBPage
		params := map[string]string{
			"on":    date,
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(pageSize),
		}
		headers := map[string]string{}
		if v.cfg.Token != "" {
			headers["X-Api-Key"] = v.cfg.Token
		}
		if err := v.client.GetJSON(ctx, v.cfg.BaseURL+"/listings", params, headers, &payload); err != nil {
			return nil, err
		}
		return payload.Data.Items, nil
	}

	items, err := httpclient.Paginate(ctx, live, v.cfg.PageSize)
	if err != nil {
		v.logger.Warn("vendor B fetch failed, serving bundled dataset", "error", err)
		items = v.fallbackItems(ctx)
	}

	offers := make([]domain.Offer, 0, len(items))
	for _, item := range items {
		offers = append(offers, normalizeVendorB(item))
	}
	return offers
}

func (v *VendorB) fallbackItems(ctx context.Context) []vendorBItem {
	var payload vendorBPage
	if err := json.Unmarshal(vendorBFallback, &payload); err != nil {
		v.logger.Error("vendor B bundled dataset unreadable", "error", err)
		return nil
	}
	items, _ := httpclient.Paginate(ctx, func(_ context.Context, page, pageSize int) ([]vendorBItem, error) {
		return slicePage(payload.Data.Items, page, pageSize), nil
	}, v.cfg.PageSize)
	return items
}

func normalizeVendorB(item vendorBItem) domain.Offer {
	fees := make([]domain.FeeLine, 0, len(item.Fees))
	for _, f := range item.Fees {
		fees = append(fees, domain.FeeLine{
			Label:    f.Label,
			Amount:   f.Amount,
			Currency: money.Code(f.Currency),
		})
	}

	var hint domain.InventoryHint
	switch item.StockLevel {
	case 1:
		hint = domain.InventoryLow
	case 2:
		hint = domain.InventoryMed
	case 3:
		hint = domain.InventoryHigh
	default:
		hint = domain.InventoryUnknown
	}

	return domain.Offer{
		Provider: "vendor_b",
		Title:    item.Title,
		StartTS:  time.Unix(item.StartTime, 0).UTC(),
		Venue:    domain.Venue{Lat: item.Venue.Lat, Lng: item.Venue.Lng, Address: item.Venue.Address},
		City:     item.Venue.City,
		Price: money.Money{
			Amount:   item.Pricing.Amount,
			Currency: money.Code(item.Pricing.CurrencyCode),
		},
		IncludesVat:   item.Pricing.TaxInclusive,
		VatRate:       item.Pricing.TaxRate,
		Fees:          fees,
		Promos:        item.Offers,
		InventoryHint: hint,
		URL:           item.PurchaseURL,
		SourceID:      "b-" + item.Ref,
	}
}
