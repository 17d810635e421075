package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Load builds the settings from defaults, an optional YAML file and
// environment variables, in that order. A missing settings file is fine; an
// unparsable one is the single fatal configuration error in the system.
func Load(settingsPath string, logger *slog.Logger) (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment")
	}

	cfg := Default()

	if settingsPath != "" {
		raw, err := os.ReadFile(settingsPath)
		switch {
		case os.IsNotExist(err):
			logger.Warn("settings file not found, using defaults", "path", settingsPath)
		case err != nil:
			return nil, fmt.Errorf("read settings file %s: %w", settingsPath, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse settings file %s: %w", settingsPath, err)
			}
			logger.Info("settings loaded", "path", settingsPath)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment overrides: %w", err)
	}

	cfg.App.CacheDir = expandHome(cfg.App.CacheDir)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants the struct tags cannot express.
func Validate(cfg *Settings) error {
	v := validator.New()
	if err := v.Var(string(cfg.App.Currency), "required,len=3,alpha,uppercase"); err != nil {
		return fmt.Errorf("app.currency %q: %w", cfg.App.Currency, err)
	}
	if cfg.FX.BaseCurrency != "" && !cfg.FX.BaseCurrency.IsValid() {
		return fmt.Errorf("fx.base_currency %q is not a valid currency code", cfg.FX.BaseCurrency)
	}
	if cfg.App.TopN <= 0 {
		return fmt.Errorf("app.top_n must be positive, got %d", cfg.App.TopN)
	}
	for name, conn := range cfg.Connectors {
		if conn.Retries < 0 {
			return fmt.Errorf("connectors.%s.retries must not be negative", name)
		}
	}
	for code, rule := range cfg.Pricing.PromoRules {
		if rule.Type != "percent" && rule.Type != "fixed" {
			return fmt.Errorf("pricing.promo_rules.%s: unknown type %q", code, rule.Type)
		}
		if rule.Value < 0 {
			return fmt.Errorf("pricing.promo_rules.%s: value must not be negative", code)
		}
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
