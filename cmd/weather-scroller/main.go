package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-scroller/internal/api/http"
	"github.com/i474232898/weather-scroller/internal/config"
	"github.com/i474232898/weather-scroller/internal/cycle"
	"github.com/i474232898/weather-scroller/internal/display"
	"github.com/i474232898/weather-scroller/internal/network"
	"github.com/i474232898/weather-scroller/internal/scheduler"
	"github.com/i474232898/weather-scroller/internal/store"
	"github.com/i474232898/weather-scroller/internal/timesync"
	"github.com/i474232898/weather-scroller/internal/weather"
	"github.com/i474232898/weather-scroller/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.NewClock()

	// Connectivity probe; the first result is known before the boot gather.
	monitor := network.NewMonitor(cfg.NetworkProbeAddr, 5*time.Second)
	monitor.Probe(ctx)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory history of fetch results with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory)

	// Provider with resilience (backoff + circuit breaker).
	provider, err := providers.ForName(cfg.Provider, httpClient, cfg.APIKey(),
		providers.WithMaxRetries(cfg.HTTPMaxRetries))
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}

	service := weather.NewService(provider, monitor, memStore, cfg.Location, cfg.HTTPTimeout)

	// Wall clock corrected against NTP.
	timeSvc, err := timesync.New(cfg.NTPServer, cfg.Timezone, timesync.Format(cfg.TimeFormat), clk)
	if err != nil {
		log.Fatalf("failed to create time service: %v", err)
	}
	syncCtx, cancelSync := context.WithTimeout(ctx, 5*time.Second)
	if err := timeSvc.Sync(syncCtx); err != nil {
		log.Printf("ERROR: initial time sync against %s failed, using host clock: %v", cfg.NTPServer, err)
	}
	cancelSync()

	// Housekeeping jobs outside the display cycle.
	sched := scheduler.New(
		scheduler.Job{
			Name:     "network-probe",
			Interval: cfg.NetworkProbeInterval,
			Timeout:  5 * time.Second,
			Run:      func(ctx context.Context) { monitor.Probe(ctx) },
		},
		scheduler.Job{
			Name:     "ntp-resync",
			Interval: cfg.NTPResyncInterval,
			Timeout:  10 * time.Second,
			Run:      timeSvc.Resync,
		},
	)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// LED matrix, mirrored to the terminal.
	var out io.Writer = os.Stdout
	if cfg.DisplayOutput == "none" {
		out = io.Discard
	}
	frame := display.NewFrame(int16(cfg.DisplayWidth), int16(cfg.DisplayHeight), out, cfg.DisplayOutput == "ansi")
	matrix := display.NewMatrix(frame, clk)

	ctrl, err := cycle.New(cycle.Config{
		Topology:       cycle.Topology(cfg.Topology),
		GatherInterval: cfg.GatherInterval,
		ClockInterval:  cfg.ClockInterval,
		Speed:          cfg.DisplaySpeed,
		Pause:          cfg.DisplayPause,
		Async:          cfg.GatherMode == "async",
		Debug:          cfg.CycleDebug,
	}, service, timeSvc, matrix, clk)
	if err != nil {
		log.Fatalf("failed to create display cycle: %v", err)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-scroller",
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

	// Global middleware
	app.Use(logger.New(logger.Config{Output: os.Stderr}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-scroller",
			"connected": monitor.Connected(),
			"timeSync":  timeSvc.Synced(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, ctrl, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// The display cycle owns the main goroutine until a termination signal.
	if err := ctrl.Run(ctx, cfg.TickInterval); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("ERROR: display cycle stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
