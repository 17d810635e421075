package connector

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/weekendly/planner/infra/cache"
	"github.com/weekendly/planner/infra/httpclient"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/domain"
)

//go:embed fallback/dining.json
var diningFallback []byte

const diningTTL = 15 * time.Minute

// diningVenue is the dining API's raw record.
type diningVenue struct {
	Name      string  `json:"name"`
	PriceTier string  `json:"price_tier"`
	AvgPP     float64 `json:"avg_price_per_person"`
	DistM     int     `json:"distance_meters"`
	Booking   string  `json:"booking_url"`
}

type diningPayload struct {
	Venues []diningVenue `json:"venues"`
}

// Dining is the connector for the dining recommendation API. Responses are
// cached on disk for a short window since nearby restaurants barely change
// within a planning session.
type Dining struct {
	client *httpclient.Client
	cfg    config.Connector
	cache  *cache.FileCache
	logger *slog.Logger
}

// NewDining creates the dining connector.
func NewDining(client *httpclient.Client, cfg config.Connector, fc *cache.FileCache, logger *slog.Logger) *Dining {
	return &Dining{client: client, cfg: cfg, cache: fc, logger: logger}
}

// FetchDining returns dining options for the given date, serving the disk
// cache when fresh and the bundled dataset when the upstream is unreachable.
func (d *Dining) FetchDining(ctx context.Context, date string) []domain.DiningOption {
	key := "dining_" + date

	var payload diningPayload
	if d.cache != nil && d.cache.GetJSON(key, diningTTL, false, &payload) {
		return normalizeDining(payload)
	}

	params := map[string]string{"date": date}
	if err := d.client.GetJSON(ctx, d.cfg.BaseURL+"/nearby", params, nil, &payload); err != nil {
		d.logger.Warn("dining fetch failed, serving bundled dataset", "error", err)
		if err := json.Unmarshal(diningFallback, &payload); err != nil {
			d.logger.Error("dining bundled dataset unreadable", "error", err)
			return nil
		}
		return normalizeDining(payload)
	}

	if d.cache != nil {
		if err := d.cache.Set(key, payload); err != nil {
			d.logger.Debug("dining cache write failed", "error", err)
		}
	}
	return normalizeDining(payload)
}

func normalizeDining(payload diningPayload) []domain.DiningOption {
	options := make([]domain.DiningOption, 0, len(payload.Venues))
	for _, v := range payload.Venues {
		options = append(options, domain.DiningOption{
			Name:       v.Name,
			PriceTier:  v.PriceTier,
			EstPP:      v.AvgPP,
			DistanceM:  v.DistM,
			BookingURL: v.Booking,
		})
	}
	return options
}
