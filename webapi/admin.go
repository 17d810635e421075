package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/weekendly/planner/infra/cache"
	"github.com/weekendly/planner/infra/pricelog"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/fx"
)

const pricelogRetention = 30 * 24 * time.Hour

// AdminRoutes registers the JWT-protected admin group.
func AdminRoutes(app *fiber.App, cfg config.Server, fileCache *cache.FileCache, resolver *fx.Resolver, store *pricelog.Store) {
	admin := app.Group("/api/admin", AdminProtected(cfg))
	admin.Delete("/cache", ClearCache(fileCache, resolver))
	admin.Delete("/pricelog", PurgePriceLog(store))
}

// ClearCache drops every disk-cached entry and the FX memo.
// @Summary Clear caches
// @Description Remove all disk-cached entries and invalidate the in-memory FX table
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} Response
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /api/admin/cache [delete]
func ClearCache(fileCache *cache.FileCache, resolver *fx.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := fileCache.Clear(); err != nil {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Cache clear failed", err.Error())
		}
		resolver.Invalidate()
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Cache cleared"})
	}
}

// PurgePriceLog deletes price observations past the retention window.
// @Summary Purge price log
// @Description Delete price observations older than the retention window
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} Response
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /api/admin/pricelog [delete]
func PurgePriceLog(store *pricelog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		purged, err := store.Purge(pricelogRetention)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Purge failed", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Price log purged", Data: fiber.Map{"purged": purged}})
	}
}
