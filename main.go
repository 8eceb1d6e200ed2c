package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"

	"salesapi/config"
	"salesapi/middleware"
	"salesapi/predictor"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Error loading .env file, using environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Models are loaded once and shared read-only by every request.
	models, err := predictor.Load(ctx, predictor.Options{
		Backend:        cfg.PredictorBackend,
		ModelDir:       cfg.ModelDir,
		RegressorFile:  cfg.RegressorFile,
		ForecasterFile: cfg.ForecasterFile,
		ServerURL:      cfg.ModelServerURL,
		ServerTimeout:  cfg.ModelServerTimeout,
	})
	if err != nil {
		log.Fatalf("Unable to load models: %v", err)
	}

	app := newApp(cfg, models, middleware.NewMetrics())

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Errorf("Shutdown: %v", err)
		}
	}()

	log.Infof("serving http://%s with %s models", cfg.Addr, models.Backend)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
