package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dentalcore/backupd/internal/api/handler"
	mw "github.com/dentalcore/backupd/internal/api/middleware"
	"github.com/dentalcore/backupd/internal/config"
	"github.com/dentalcore/backupd/internal/core"
	"github.com/dentalcore/backupd/internal/dump"
	"github.com/dentalcore/backupd/internal/storage"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, cfg *config.Config) *Server {
	producer := dump.NewProducer(logger, pool, cfg)
	store := storage.NewClient(logger, cfg)
	restorer := dump.NewRestorer(logger, pool, cfg)
	services := core.NewServices(pool, producer, store, restorer, logger)

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.pool))

		// Tenants (clinics)
		tenant := handler.NewTenant(s.services.Tenant)
		r.Get("/tenants", tenant.List)
		r.Get("/tenants/{id}", tenant.Get)
		r.With(mw.RequireAdmin()).Post("/tenants", tenant.Create)
		r.With(mw.RequireAdmin()).Delete("/tenants/{id}", tenant.Deactivate)

		// Backups
		backup := handler.NewBackup(s.services.Backup, s.services.Tenant)
		r.Get("/tenants/{tenantID}/backups", backup.ListByTenant)
		r.With(mw.RequireAdmin()).Post("/tenants/{tenantID}/backups", backup.Create)
		r.Get("/tenants/{tenantID}/backups/{id}", backup.Get)
		r.Get("/tenants/{tenantID}/backups/{id}/download", backup.Download)
		r.With(mw.RequireAdmin()).Delete("/tenants/{tenantID}/backups/{id}", backup.Delete)
		r.With(mw.RequireAdmin()).Post("/tenants/{tenantID}/backups/{id}/restore", backup.Restore)

		// Backup schedule
		schedule := handler.NewSchedule(s.services.Schedule, s.services.Tenant)
		r.Get("/tenants/{tenantID}/schedule", schedule.Get)
		r.Put("/tenants/{tenantID}/schedule", schedule.Update)

		// API keys
		apiKey := handler.NewAPIKey(s.services.APIKey)
		r.With(mw.RequireAdmin()).Post("/api-keys", apiKey.Create)
		r.With(mw.RequireAdmin()).Delete("/api-keys/{id}", apiKey.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
