package main

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/social-insight/timesheet-api/internal/config"
	"github.com/social-insight/timesheet-api/internal/database"
	"github.com/social-insight/timesheet-api/internal/http/handler"
	"github.com/social-insight/timesheet-api/internal/http/middleware"
	"github.com/social-insight/timesheet-api/internal/http/router"
	"github.com/social-insight/timesheet-api/internal/jobs"
	"github.com/social-insight/timesheet-api/internal/logger"
	"github.com/social-insight/timesheet-api/internal/repository"
	"github.com/social-insight/timesheet-api/internal/service"
	"github.com/social-insight/timesheet-api/internal/storage"
	"go.uber.org/zap"
)

// @title SIS Timesheet API
// @version 1.0
// @description Time tracking and invoicing API for Social Insight Solutions

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate in development; production schemas are managed by
	// the migrate command
	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Auto-migration completed")
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Load the issuer logo. Invoices render without it if the file is
	// missing, unreadable or not a decodable JPEG.
	var logo []byte
	if cfg.Invoice.LogoPath != "" {
		logo, err = os.ReadFile(cfg.Invoice.LogoPath)
		if err != nil {
			log.Warn("Invoice logo not loaded, invoices will render without it",
				zap.String("path", cfg.Invoice.LogoPath),
				zap.Error(err),
			)
			logo = nil
		} else if _, err := jpeg.DecodeConfig(bytes.NewReader(logo)); err != nil {
			log.Warn("Invoice logo is not a valid JPEG, invoices will render without it",
				zap.String("path", cfg.Invoice.LogoPath),
				zap.Error(err),
			)
			logo = nil
		}
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	counterRepo := repository.NewInvoiceCounterRepository(db)

	// Initialize services
	clientService := service.NewClientService(clientRepo, log)
	projectService := service.NewProjectService(projectRepo, clientRepo, log)
	timeEntryService := service.NewTimeEntryService(timeEntryRepo, projectRepo, invoiceRepo, log)
	numberService := service.NewInvoiceNumberService(counterRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, timeEntryRepo, projectRepo, numberService, fileStorage, logo, log)
	reminderService := service.NewReminderService(projectRepo, log)
	dashboardService := service.NewDashboardService(projectRepo, timeEntryRepo, invoiceRepo, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	clientHandler := handler.NewClientHandler(clientService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	timeEntryHandler := handler.NewTimeEntryHandler(timeEntryService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	billingHandler := handler.NewBillingHandler(reminderService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		clientHandler,
		projectHandler,
		timeEntryHandler,
		invoiceHandler,
		billingHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.ReminderEnabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterBillingReminderJob(scheduler, reminderService, log, cfg.Jobs.ReminderSchedule); err != nil {
			log.Error("Failed to register billing reminder job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with billing reminder job",
				zap.String("cron_expr", cfg.Jobs.ReminderSchedule),
			)
		}
	} else {
		log.Info("Billing reminder job disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
