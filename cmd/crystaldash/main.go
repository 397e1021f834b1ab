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

	httpapi "github.com/crystaldash/crystaldash/internal/api/http"
	"github.com/crystaldash/crystaldash/internal/config"
	"github.com/crystaldash/crystaldash/internal/dashboard"
	"github.com/crystaldash/crystaldash/internal/dashboard/sources"
	"github.com/crystaldash/crystaldash/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.WSDOTAccessCode == "" {
		log.Println("INFO: WSDOT_ACCESS_CODE not set; cameras, stations, and passes will be empty")
	}
	if cfg.AvalancheZone == "" {
		log.Println("INFO: AVALANCHE_ZONE not set; avalanche forecast disabled")
	}
	if cfg.LiftsFeedURL == "" {
		log.Println("INFO: LIFTS_FEED_URL not set; lift and run status disabled")
	}

	// Shared HTTP client for outbound calls; the Timeout is the hard cap,
	// each fetch also carries its own context deadline.
	client := sources.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.UserAgent)

	srcs := dashboard.Sources{
		Forecast:  sources.NewNWSSource(client, cfg.Latitude, cfg.Longitude),
		Freezing:  sources.NewOpenMeteoSource(client, cfg.Latitude, cfg.Longitude),
		Roads:     sources.NewWSDOTSource(client, cfg.WSDOTAccessCode, cfg.Latitude, cfg.Longitude, cfg.RadiusMiles),
		Avalanche: sources.NewAvalancheSource(client, cfg.AvalancheCenter, cfg.AvalancheZone),
		Resort:    sources.NewResortSource(client, cfg.LiftsFeedURL),
		Report:    sources.NewReportSource(client, cfg.PassReportURL),
	}

	service := dashboard.NewService(srcs, dashboard.Options{
		StateTTL:      cfg.StateTTL,
		ReportTTL:     cfg.PassReportTTL,
		FetchTimeout:  cfg.FetchTimeout,
		PrimaryPassID: cfg.PrimaryPassID,
	})

	warmer := scheduler.New(service, cfg.RefreshInterval)
	if err := warmer.Start(); err != nil {
		log.Fatalf("failed to start cache warmer: %v", err)
	}
	defer warmer.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "crystaldash",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	httpapi.RegisterRoutes(app, service)
	httpapi.RegisterStatic(app, cfg.StaticDir)

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
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
