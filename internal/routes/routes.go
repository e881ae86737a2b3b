package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/marminbh/indexpush-svc/internal/handlers"
	"github.com/marminbh/indexpush-svc/internal/metrics"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(app *fiber.App, healthHandler *handlers.HealthHandler, eventsHandler *handlers.EventsHandler, m *metrics.Metrics) {
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := app.Group("/api/v1")
	{
		api.Get("/", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"message": "Index Push Service API v1",
				"status":  "running",
			})
		})
		api.Post("/publish-events", eventsHandler.PostPublishEvent)
		api.Get("/pushes/failures", eventsHandler.GetPushFailures)
	}
}
