package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/social-insight/timesheet-api/internal/config"
	"github.com/social-insight/timesheet-api/internal/database"
	"github.com/social-insight/timesheet-api/internal/http/handler"
	"github.com/social-insight/timesheet-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	rateLimiter      *middleware.RateLimiter
	clientHandler    *handler.ClientHandler
	projectHandler   *handler.ProjectHandler
	timeEntryHandler *handler.TimeEntryHandler
	invoiceHandler   *handler.InvoiceHandler
	billingHandler   *handler.BillingHandler
	dashboardHandler *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	clientHandler *handler.ClientHandler,
	projectHandler *handler.ProjectHandler,
	timeEntryHandler *handler.TimeEntryHandler,
	invoiceHandler *handler.InvoiceHandler,
	billingHandler *handler.BillingHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		rateLimiter:      rateLimiter,
		clientHandler:    clientHandler,
		projectHandler:   projectHandler,
		timeEntryHandler: timeEntryHandler,
		invoiceHandler:   invoiceHandler,
		billingHandler:   billingHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Clients
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", rt.clientHandler.List)
			r.Post("/", rt.clientHandler.Create)
			r.Get("/{id}", rt.clientHandler.GetByID)
			r.Put("/{id}", rt.clientHandler.Update)
		})

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.projectHandler.List)
			r.Post("/", rt.projectHandler.Create)
			r.Get("/{id}", rt.projectHandler.GetByID)
			r.Put("/{id}", rt.projectHandler.Update)
		})

		// Timesheet
		r.Route("/timesheet", func(r chi.Router) {
			r.Get("/", rt.timeEntryHandler.List)
			r.Post("/", rt.timeEntryHandler.Create)
			r.Get("/export", rt.timeEntryHandler.Export)
			r.Put("/{id}", rt.timeEntryHandler.Update)
			r.Delete("/{id}", rt.timeEntryHandler.Delete)
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", rt.invoiceHandler.List)
			r.Post("/", rt.invoiceHandler.Generate)
			r.Get("/{number}", rt.invoiceHandler.GetByNumber)
			r.Post("/{number}/regenerate", rt.invoiceHandler.Regenerate)
			r.Get("/{number}/download", rt.invoiceHandler.Download)
		})

		// Billing reminders
		r.Get("/billing/reminders", rt.billingHandler.Reminders)

		// Dashboard
		r.Get("/dashboard/summary", rt.dashboardHandler.Summary)
	})

	return r
}
