package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"salesapi/config"
	"salesapi/handlers"
	"salesapi/middleware"
	"salesapi/predictor"
	"salesapi/routes"
)

// newApp assembles the Fiber app around already-loaded models.
func newApp(cfg config.Config, models *predictor.Set, metrics *middleware.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sales-forecast-api",
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Metrics sit outside recover so a recovered panic is counted as a 500.
	app.Use(metrics.Middleware())
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: middleware.RequestIDKey,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}?${queryParams}\n",
	}))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	sales := handlers.NewSalesHandler(models.Regressor, models.Forecaster, metrics)
	routes.SetupRoutes(app, sales, metrics)
	return app
}
