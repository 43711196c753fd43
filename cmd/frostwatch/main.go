package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/akoval/frostwatch/internal/api/http"
	"github.com/akoval/frostwatch/internal/config"
	"github.com/akoval/frostwatch/internal/delivery"
	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/forecast/providers"
	"github.com/akoval/frostwatch/internal/notify"
	"github.com/akoval/frostwatch/internal/scheduler"
	"github.com/akoval/frostwatch/internal/store"
	"github.com/akoval/frostwatch/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecast cache, persisted through the store and warmed at startup.
	cache := forecast.NewGeoCache(st)
	if err := cache.Warm(); err != nil {
		log.Printf("failed to warm forecast cache: %v", err)
	}

	provider := providers.NewOpenMeteoProvider(httpClient)
	client := forecast.NewClient(cache, provider, cfg.CacheRadiusMeters, cfg.CacheTTL)

	var notifier delivery.Notifier = delivery.LogNotifier{}
	if cfg.WebhookURL != "" {
		notifier = delivery.NewWebhookNotifier(cfg.WebhookURL, httpClient)
	}

	service := watch.New(st, client, notify.NewEngine(), notifier, watch.Config{
		FreezeThresholdC: cfg.FreezeThresholdC,
		WarningWindow:    cfg.WarningWindow,
		ClusterRadiusM:   cfg.CacheRadiusMeters,
		FetchTimeout:     cfg.HTTPTimeout,
	})

	sched := scheduler.New(service, cache, cfg.PollInterval, cfg.SummaryHour, cfg.SweepInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "frostwatch",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "frostwatch",
		})
	})

	httpapi.RegisterRoutes(app, st, service, cfg.GeocoderAPIKey)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
