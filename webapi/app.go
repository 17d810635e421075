// Package webapi provides the HTTP surface: the planning endpoint, health
// and metrics probes, admin login and the JWT-protected admin group.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	_ "github.com/weekendly/planner/docs"
	"github.com/weekendly/planner/infra/initializer"
)

// SetupApp initializes Fiber with the planner routes and middleware.
func SetupApp(deps *initializer.Deps) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled: true,
	}))

	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	fiberApp.Get("/metrics", Metrics(deps.Metrics))

	PlanRoutes(fiberApp, deps.Planner)
	AuthRoutes(fiberApp, deps.Cfg.Server)
	AdminRoutes(fiberApp, deps.Cfg.Server, deps.Cache, deps.FX, deps.PriceLog)

	return fiberApp
}
