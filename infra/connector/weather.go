package connector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/weekendly/planner/infra/cache"
	"github.com/weekendly/planner/infra/httpclient"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/domain"
)

const weatherTTL = 2 * time.Hour

type weatherPayload struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		TempMin []float64 `json:"temperature_2m_min"`
		TempMax []float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Weather fetches forecasts from the Open-Meteo API. Forecasts are strictly
// best-effort: a nil return means no data, never an error.
type Weather struct {
	client  *httpclient.Client
	cfg     config.Connector
	cache   *cache.FileCache
	offline bool
	logger  *slog.Logger
}

// NewWeather creates the weather connector. In offline mode only the disk
// cache is consulted, with TTL ignored.
func NewWeather(client *httpclient.Client, cfg config.Connector, fc *cache.FileCache, offline bool, logger *slog.Logger) *Weather {
	return &Weather{client: client, cfg: cfg, cache: fc, offline: offline, logger: logger}
}

// FetchWeather returns the forecast for the given coordinates, or nil when
// unavailable.
func (w *Weather) FetchWeather(ctx context.Context, lat, lng float64) *domain.Forecast {
	key := fmt.Sprintf("weather_%.2f_%.2f", lat, lng)

	var payload weatherPayload
	if w.cache != nil && w.cache.GetJSON(key, weatherTTL, w.offline, &payload) {
		return normalizeWeather(payload)
	}
	if w.offline {
		return nil
	}

	params := map[string]string{
		"latitude":        fmt.Sprintf("%.4f", lat),
		"longitude":       fmt.Sprintf("%.4f", lng),
		"current_weather": "true",
		"daily":           "temperature_2m_min,temperature_2m_max",
		"timezone":        "UTC",
	}
	if err := w.client.GetJSON(ctx, w.cfg.BaseURL, params, nil, &payload); err != nil {
		w.logger.Warn("weather fetch failed, continuing without forecast", "error", err)
		return nil
	}

	if w.cache != nil {
		if err := w.cache.Set(key, payload); err != nil {
			w.logger.Debug("weather cache write failed", "error", err)
		}
	}
	return normalizeWeather(payload)
}

func normalizeWeather(payload weatherPayload) *domain.Forecast {
	f := &domain.Forecast{
		Desc:  describeWeatherCode(payload.CurrentWeather.WeatherCode),
		TempC: payload.CurrentWeather.Temperature,
	}
	if len(payload.Daily.TempMin) > 0 {
		v := payload.Daily.TempMin[0]
		f.TempMin = &v
	}
	if len(payload.Daily.TempMax) > 0 {
		v := payload.Daily.TempMax[0]
		f.TempMax = &v
	}
	return f
}

// describeWeatherCode buckets WMO weather interpretation codes into short
// human-readable labels.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code >= 1 && code <= 3:
		return "Partly Cloudy"
	case code >= 45 && code <= 48:
		return "Foggy"
	case code >= 51 && code <= 67:
		return "Rainy"
	case code >= 71 && code <= 86:
		return "Snowy"
	case code >= 95 && code <= 99:
		return "Stormy"
	default:
		return "Cloudy"
	}
}
