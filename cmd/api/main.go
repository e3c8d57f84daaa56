package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/simonclouds/ecommerce/internal/config"
	"github.com/simonclouds/ecommerce/internal/email"
	"github.com/simonclouds/ecommerce/internal/enterprise"
	"github.com/simonclouds/ecommerce/internal/handler"
	"github.com/simonclouds/ecommerce/internal/repository"
	"github.com/simonclouds/ecommerce/internal/service"
	"github.com/simonclouds/ecommerce/internal/validator"
	"github.com/simonclouds/ecommerce/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Enterprise Offer Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Remote enterprise learner/catalog service client
	enterpriseClient := enterprise.NewClient(cfg.Enterprise.ServiceURL, cfg.Enterprise.Timeout())

	// Assignment email dispatcher (drained by a background worker below)
	dispatcher := email.NewQueueDispatcher(cfg.Email.QueueSize, nil)

	// Layered components: repositories, services, handlers
	voucherRepo := repository.NewVoucherRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)

	switches := service.Switches{
		EnterpriseOffersEnabled:    cfg.Flags.EnterpriseOffersEnabled,
		EnterpriseOffersForCoupons: cfg.Flags.EnterpriseOffersForCoupons,
	}
	eligibilityService := service.NewEligibilityService(
		voucherRepo, offerRepo, assignmentRepo, enterpriseClient, switches)
	assignmentService := service.NewAssignmentService(pool, assignmentRepo)

	offerHandler := handler.NewOfferHandler(eligibilityService, validate)
	emailHandler := handler.NewAssignmentEmailHandler(dispatcher, assignmentService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)

	// Offer eligibility routes
	app.Post("/api/offers/eligibility", offerHandler.CheckEligibility)
	app.Get("/api/offers/codes/:code/slots", offerHandler.CodeSlots)

	// Assignment email routes
	app.Post("/api/assignmentemail/sendemails", emailHandler.SendEmails)
	app.Post("/api/assignmentemail/updatestatus", emailHandler.UpdateStatus)

	g, gctx := errgroup.WithContext(ctx)

	// Background worker draining the email queue
	g.Go(func() error {
		if err := dispatcher.Run(gctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		return app.Listen(":" + cfg.Server.Port)
	})

	// Graceful shutdown when the context is cancelled (signal or worker error)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		// Shutdown waits for in-flight requests
		return app.ShutdownWithContext(shutdownCtx)
	})

	err = g.Wait()

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()

	if err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("application terminated with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
