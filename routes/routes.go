package routes

import (
	"github.com/gofiber/fiber/v2"

	"salesapi/handlers"
	"salesapi/middleware"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, sales *handlers.SalesHandler, metrics *middleware.Metrics) {
	app.Get("/", handlers.HandleRoot)
	app.Get("/health", handlers.HandleHealth)
	app.Get("/version", handlers.HandleVersion)
	app.Get("/metrics", metrics.Handler())

	// --- Sales Routes ---
	salesGroup := app.Group("/sales")
	salesGroup.Get("/stores/item", sales.HandlePredictItemSales)
	salesGroup.Get("/national", sales.HandleNationalForecast)
}
