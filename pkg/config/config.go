// Package config defines the typed settings consumed by the planning core
// and its surfaces. Settings load in three layers: coded defaults, an
// optional YAML settings file, then environment variable overrides.
package config

import (
	"time"

	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/money"
)

// App holds the planner-level settings.
type App struct {
	Currency             money.Code `yaml:"currency" envconfig:"APP_CURRENCY"`
	Locale               string     `yaml:"locale" envconfig:"APP_LOCALE"`
	HomeCity             string     `yaml:"home_city" envconfig:"APP_HOME_CITY"`
	PriceDropDaysThresh  int        `yaml:"price_drop_days_threshold" envconfig:"APP_PRICE_DROP_DAYS_THRESHOLD"`
	LowInventoryBonus    float64    `yaml:"price_drop_low_inventory_bonus" envconfig:"APP_LOW_INVENTORY_BONUS"`
	HighInventoryPenalty float64    `yaml:"price_drop_high_inventory_penalty" envconfig:"APP_HIGH_INVENTORY_PENALTY"`
	CacheDir             string     `yaml:"cache_dir" envconfig:"APP_CACHE_DIR"`
	Offline              bool       `yaml:"offline" envconfig:"APP_OFFLINE"`
	TopN                 int        `yaml:"top_n" envconfig:"APP_TOP_N"`
}

// Pricing holds landed-cost settings.
type Pricing struct {
	VatFallbackRate float64                     `yaml:"vat_fallback_rate" envconfig:"PRICING_VAT_FALLBACK_RATE"`
	PromoRules      map[string]domain.PromoRule `yaml:"promo_rules"`
}

// Connector holds per-upstream executor settings.
type Connector struct {
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token"`
	PageSize       int           `yaml:"page_size"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Retries        int           `yaml:"retries"`
	BackoffFactor  time.Duration `yaml:"backoff_factor"`
}

// Timeout returns the connector timeout as a duration.
func (c Connector) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FX holds exchange-rate resolver settings.
type FX struct {
	BaseURL       string                 `yaml:"base_url" envconfig:"FX_BASE_URL"`
	BaseCurrency  money.Code             `yaml:"base_currency" envconfig:"FX_BASE_CURRENCY"`
	FallbackRates map[money.Code]float64 `yaml:"fallback_rates"`
	MaxAgeHours   int                    `yaml:"max_age_hours" envconfig:"FX_MAX_AGE_HOURS"`
	RefreshCron   string                 `yaml:"refresh_cron" envconfig:"FX_REFRESH_CRON"`
}

// MaxAge returns the freshness window for the disk-cached rate table.
func (f FX) MaxAge() time.Duration {
	if f.MaxAgeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(f.MaxAgeHours) * time.Hour
}

// Server holds the HTTP surface settings.
type Server struct {
	Host string `yaml:"host" envconfig:"SERVER_HOST"`
	Port int    `yaml:"port" envconfig:"SERVER_PORT"`
	// JwtSecret signs admin session tokens.
	JwtSecret string `yaml:"jwt_secret" envconfig:"SERVER_JWT_SECRET"`
	// AdminPasswordHash is a bcrypt hash checked by the login endpoint.
	AdminPasswordHash string        `yaml:"admin_password_hash" envconfig:"SERVER_ADMIN_PASSWORD_HASH"`
	JwtExpiry         time.Duration `yaml:"jwt_expiry" envconfig:"SERVER_JWT_EXPIRY"`
}

// DB holds the optional price-log database settings. An empty URL disables
// price history entirely.
type DB struct {
	URL string `yaml:"url" envconfig:"DATABASE_URL"`
}

// Log holds logger settings.
type Log struct {
	Level      string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format     string `yaml:"format" envconfig:"LOG_FORMAT"`
	TimeFormat string `yaml:"time_format" envconfig:"LOG_TIME_FORMAT"`
	Prefix     string `yaml:"prefix" envconfig:"LOG_PREFIX"`
}

// Settings is the root configuration document.
type Settings struct {
	App        App                  `yaml:"app"`
	Pricing    Pricing              `yaml:"pricing"`
	Connectors map[string]Connector `yaml:"connectors"`
	FX         FX                   `yaml:"fx"`
	Server     Server               `yaml:"server"`
	DB         DB                   `yaml:"db"`
	Log        Log                  `yaml:"log"`
}

// Connector returns the named connector settings, zero-valued when absent.
func (s *Settings) Connector(name string) Connector {
	return s.Connectors[name]
}

// Default returns the coded baseline the YAML and environment layers
// override.
func Default() *Settings {
	return &Settings{
		App: App{
			Currency:             money.EUR,
			Locale:               "en_GB",
			HomeCity:             "lisbon",
			PriceDropDaysThresh:  3,
			LowInventoryBonus:    0.25,
			HighInventoryPenalty: -0.1,
			CacheDir:             "~/.weekend-planner/cache",
			TopN:                 3,
		},
		Pricing: Pricing{VatFallbackRate: 0.21},
		Connectors: map[string]Connector{
			"ticket_vendor_a": {BaseURL: "https://vendor-a.example/api", PageSize: 20, TimeoutSeconds: 5, Retries: 2},
			"ticket_vendor_b": {BaseURL: "https://vendor-b.example/api", PageSize: 20, TimeoutSeconds: 5, Retries: 2},
			"dining":          {BaseURL: "https://dining.example/api", TimeoutSeconds: 5, Retries: 2},
			"weather":         {BaseURL: "https://api.open-meteo.com/v1/forecast", TimeoutSeconds: 10, Retries: 1},
		},
		FX: FX{
			BaseURL:      "https://api.exchangerate.host/latest",
			BaseCurrency: money.EUR,
			MaxAgeHours:  24,
			RefreshCron:  "0 */6 * * *",
		},
		Server: Server{
			Host:      "0.0.0.0",
			Port:      3000,
			JwtExpiry: 24 * time.Hour,
		},
		Log: Log{Level: "info", Format: "text", TimeFormat: time.Kitchen},
	}
}
