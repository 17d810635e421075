package main

import (
	"fmt"
	"log/slog"

	log "github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/weekendly/planner/infra/initializer"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/webapi"
)

// @title Weekend Planner API
// @version 1.0.0
// @description Resilient weekend planning API: ticket, dining and weather aggregation with landed-cost ranking
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load("settings.yaml", slog.Default())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	// Periodic FX refresh: drop the memo so the next request resolves a
	// fresh table instead of serving yesterday's rates all day.
	if cfg.FX.RefreshCron != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.FX.RefreshCron, func() {
			deps.FX.Invalidate()
			logger.Info("exchange-rate memo invalidated by scheduler")
		}); err != nil {
			return fmt.Errorf("invalid fx refresh schedule %q: %w", cfg.FX.RefreshCron, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	fiberApp := webapi.SetupApp(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "address", addr, "offline", cfg.App.Offline)
	return fiberApp.Listen(addr)
}
