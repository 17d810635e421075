// Package fx resolves a currency-to-pivot exchange-rate table through a
// layered fallback chain: memo, fresh disk cache, live fetch, stale disk
// cache, static fallback. Callers always get a usable table; degradation is
// reported through the provenance tag, never through an error.
package fx

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

// Fetcher performs the live rates call. Implemented by infra/httpclient.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, params map[string]string, headers map[string]string, out any) error
}

// Store persists the last-known-good table. Implemented by infra/cache.
type Store interface {
	Load() (map[money.Code]float64, time.Time, bool)
	Save(rates map[money.Code]float64) error
}

// Config holds resolver settings.
type Config struct {
	BaseURL string
	// Base is the pivot currency; defaults to EUR.
	Base money.Code
	// FallbackRates is the static table used when every other tier fails.
	FallbackRates map[money.Code]float64
	// MaxAge below which a disk-cached table counts as fresh.
	MaxAge time.Duration
	// Offline disables live fetching entirely.
	Offline bool
}

// Resolver memoizes the resolved table for its own lifetime. The memo and
// its mutex are the only FX state shared across concurrent requests.
type Resolver struct {
	fetcher Fetcher
	store   Store
	cfg     Config
	logger  *slog.Logger

	mu         sync.Mutex
	memo       *domain.RateTable
	provenance domain.Provenance
}

// liveResponse is the upstream payload shape: {"rates": {"USD": 1.08, ...}}.
type liveResponse struct {
	Rates map[money.Code]float64 `json:"rates"`
}

// New creates a Resolver. The store may be nil (no disk tier).
func New(fetcher Fetcher, store Store, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.Base == "" {
		cfg.Base = money.Pivot
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	return &Resolver{fetcher: fetcher, store: store, cfg: cfg, logger: logger}
}

// GetRates resolves the rate table. Resolution order: memo; in offline mode
// the disk cache ignoring age, else the static fallback; a disk cache
// younger than MaxAge; a live fetch (persisted on success); a stale disk
// cache; the static fallback, degrading to a pivot-only table when none is
// configured.
func (r *Resolver) GetRates(ctx context.Context) (domain.RateTable, domain.Provenance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memo != nil {
		return *r.memo, r.provenance
	}

	table, provenance := r.resolve(ctx)
	r.memo = &table
	r.provenance = provenance
	r.logger.Info("fx rates resolved", "source", provenance, "currencies", len(table.Rates))
	return table, provenance
}

func (r *Resolver) resolve(ctx context.Context) (domain.RateTable, domain.Provenance) {
	if r.cfg.Offline {
		if rates, _, ok := r.load(); ok {
			return domain.NewRateTable(r.cfg.Base, rates), domain.SourceLastGood
		}
		return r.fallback()
	}

	if rates, storedAt, ok := r.load(); ok && time.Since(storedAt) < r.cfg.MaxAge {
		return domain.NewRateTable(r.cfg.Base, rates), domain.SourceCached
	}

	var live liveResponse
	err := r.fetcher.GetJSON(ctx, r.cfg.BaseURL, nil, nil, &live)
	if err == nil && len(live.Rates) > 0 {
		table := domain.NewRateTable(r.cfg.Base, live.Rates)
		if r.store != nil {
			if serr := r.store.Save(table.Rates); serr != nil {
				r.logger.Warn("failed to persist fx rates", "error", serr)
			}
		}
		return table, domain.SourceLive
	}
	r.logger.Warn("live fx fetch failed, walking fallback chain", "error", err)

	if rates, _, ok := r.load(); ok {
		return domain.NewRateTable(r.cfg.Base, rates), domain.SourceLastGood
	}
	return r.fallback()
}

func (r *Resolver) load() (map[money.Code]float64, time.Time, bool) {
	if r.store == nil {
		return nil, time.Time{}, false
	}
	return r.store.Load()
}

func (r *Resolver) fallback() (domain.RateTable, domain.Provenance) {
	if len(r.cfg.FallbackRates) > 0 {
		return domain.NewRateTable(r.cfg.Base, r.cfg.FallbackRates), domain.SourceFallback
	}
	return domain.NewRateTable(r.cfg.Base, nil), domain.SourceFallbackPivotOnly
}

// Convert converts an amount between currencies using the resolved table,
// resolving it first if needed. Missing currencies degrade to identity.
func (r *Resolver) Convert(ctx context.Context, amount float64, from, to money.Code) float64 {
	table, _ := r.GetRates(ctx)
	return table.Convert(amount, from, to)
}

// Invalidate drops the memoized table so the next GetRates resolves again.
// Used by the scheduled refresh job.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo = nil
	r.provenance = ""
}
