package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/weekendly/planner/pkg/metrics"
)

// Metrics exports the collector snapshot.
// @Summary Metrics
// @Description Export collected latencies and cache ratios in Prometheus text format
// @Tags metrics
// @Produce plain
// @Success 200 {string} string
// @Router /metrics [get]
func Metrics(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
		return c.SendString(collector.ExportPrometheus())
	}
}
