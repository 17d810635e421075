package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleYAML = `
app:
  currency: GBP
  home_city: london
  top_n: 5
pricing:
  vat_fallback_rate: 0.2
  promo_rules:
    STUDENT10:
      type: percent
      value: 10
      applies_to: base_plus_fees
    LOYALTY5:
      type: fixed
      value: 5
      currency: USD
connectors:
  ticket_vendor_a:
    base_url: https://a.example/api
    page_size: 10
    timeout_seconds: 3
    retries: 1
fx:
  base_url: https://fx.example/latest
  fallback_rates:
    USD: 1.1
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeSettings(t, sampleYAML), testLogger())
	require.NoError(t, err)

	assert.Equal(t, money.GBP, cfg.App.Currency)
	assert.Equal(t, "london", cfg.App.HomeCity)
	assert.Equal(t, 5, cfg.App.TopN)
	assert.InDelta(t, 0.2, cfg.Pricing.VatFallbackRate, 1e-9)

	rule := cfg.Pricing.PromoRules["STUDENT10"]
	assert.Equal(t, domain.PromoPercent, rule.Type)
	assert.Equal(t, domain.ScopeBasePlusFees, rule.Scope())

	conn := cfg.Connector("ticket_vendor_a")
	assert.Equal(t, "https://a.example/api", conn.BaseURL)
	assert.Equal(t, 10, conn.PageSize)

	assert.InDelta(t, 1.1, cfg.FX.FallbackRates[money.USD], 1e-9)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), testLogger())
	require.NoError(t, err)
	assert.Equal(t, money.EUR, cfg.App.Currency)
	assert.Equal(t, 3, cfg.App.TopN)
}

func TestLoad_UnparsableFileIsFatal(t *testing.T) {
	_, err := Load(writeSettings(t, "app: [not a map"), testLogger())
	assert.ErrorContains(t, err, "parse settings file")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("APP_CURRENCY", "USD")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := Load(writeSettings(t, sampleYAML), testLogger())
	require.NoError(t, err)
	assert.Equal(t, money.USD, cfg.App.Currency)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate_RejectsBadSettings(t *testing.T) {
	cfg := Default()
	cfg.App.Currency = "euros"
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.App.TopN = 0
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Pricing.PromoRules = map[string]domain.PromoRule{
		"BAD": {Type: "half-off", Value: 1},
	}
	assert.Error(t, Validate(cfg))
}

func TestConnector_TimeoutDefaults(t *testing.T) {
	assert.Equal(t, "5s", Connector{}.Timeout().String())
	assert.Equal(t, "3s", Connector{TimeoutSeconds: 3}.Timeout().String())
}
