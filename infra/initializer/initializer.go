// Package initializer wires the process dependencies: logger, disk cache,
// per-target circuit breakers and clients, connectors, the exchange-rate
// resolver, the optional price log and the planner itself.
package initializer

import (
	"log/slog"

	"github.com/weekendly/planner/infra/cache"
	"github.com/weekendly/planner/infra/connector"
	"github.com/weekendly/planner/infra/httpclient"
	"github.com/weekendly/planner/infra/pricelog"
	"github.com/weekendly/planner/pkg/breaker"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/fx"
	"github.com/weekendly/planner/pkg/metrics"
	"github.com/weekendly/planner/pkg/planner"
)

// Deps holds every constructed dependency a surface needs.
type Deps struct {
	Cfg      *config.Settings
	Logger   *slog.Logger
	Cache    *cache.FileCache
	Metrics  *metrics.Collector
	FX       *fx.Resolver
	Planner  *planner.Planner
	PriceLog *pricelog.Store
}

// InitializeDependencies builds the full dependency graph from settings.
// Each upstream target gets its own breaker and client so one failing
// vendor never trips the others.
func InitializeDependencies(cfg *config.Settings) (*Deps, error) {
	deps := &Deps{Cfg: cfg}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	deps.Metrics = metrics.NewCollector()

	fileCache, err := cache.New(cfg.App.CacheDir, logger, cache.WithCollector(deps.Metrics))
	if err != nil {
		return nil, err
	}
	deps.Cache = fileCache

	newClient := func(name string) *httpclient.Client {
		cc := cfg.Connector(name)
		b := breaker.New(name, logger)
		return httpclient.New(httpclient.Config{
			Timeout:       cc.Timeout(),
			Retries:       cc.Retries,
			BackoffFactor: cc.BackoffFactor,
		}, b, logger)
	}

	vendorA := connector.NewVendorA(newClient("ticket_vendor_a"), cfg.Connector("ticket_vendor_a"), logger)
	vendorB := connector.NewVendorB(newClient("ticket_vendor_b"), cfg.Connector("ticket_vendor_b"), logger)
	dining := connector.NewDining(newClient("dining"), cfg.Connector("dining"), fileCache, logger)
	weather := connector.NewWeather(newClient("weather"), cfg.Connector("weather"), fileCache, cfg.App.Offline, logger)

	rateStore, err := cache.NewRateStore(cfg.App.CacheDir, logger)
	if err != nil {
		return nil, err
	}
	deps.FX = fx.New(newClient("fx"), rateStore, fx.Config{
		BaseURL:       cfg.FX.BaseURL,
		Base:          cfg.FX.BaseCurrency,
		FallbackRates: cfg.FX.FallbackRates,
		MaxAge:        cfg.FX.MaxAge(),
		Offline:       cfg.App.Offline,
	}, logger)

	if cfg.DB.URL != "" {
		store, err := pricelog.Open(cfg.DB.URL)
		if err != nil {
			logger.Warn("price log unavailable, continuing without price history", "error", err)
		} else {
			deps.PriceLog = store
		}
	}

	opts := []planner.Option{}
	if deps.PriceLog != nil {
		opts = append(opts, planner.WithPriceLog(deps.PriceLog))
	}
	deps.Planner = planner.New(vendorA, vendorB, dining, weather,
		deps.FX, cfg, deps.Metrics, logger, opts...)

	return deps, nil
}
