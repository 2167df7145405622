// Package server exposes analysis results, usage history and alerts over
// HTTP, and runs the periodic alert sweep.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"github.com/seismohq/seismo/internal/analysis"
	"github.com/seismohq/seismo/internal/config"
	"github.com/seismohq/seismo/internal/db"
	"github.com/seismohq/seismo/internal/llm"
	"github.com/seismohq/seismo/internal/metrics"
	"github.com/seismohq/seismo/internal/usage"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the seismo HTTP API.
type Server struct {
	cfg        Config
	appCfg     config.Config
	db         *db.DB
	ledger     *usage.Store
	batches    *analysis.Store
	snapshots  *metrics.Store
	provider   llm.Provider
	router     chi.Router
	httpServer *http.Server
	sweeper    *cron.Cron
}

// New creates a server. The provider may be nil, in which case the analyze
// endpoint reports itself unavailable.
func New(cfg Config, appCfg config.Config, database *db.DB, provider llm.Provider) *Server {
	s := &Server{
		cfg:       cfg,
		appCfg:    appCfg,
		db:        database,
		ledger:    usage.NewStore(database),
		batches:   analysis.NewStore(database),
		snapshots: metrics.NewStore(database),
		provider:  provider,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/usage/buckets", s.handleUsageBuckets)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/batches", s.handleBatches)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port and starts the hourly
// alert sweep.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	s.sweeper = cron.New()
	if _, err := s.sweeper.AddFunc("@hourly", s.sweepAlerts); err != nil {
		return fmt.Errorf("scheduling alert sweep: %w", err)
	}
	s.sweeper.Start()

	log.Printf("seismo server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server and the alert sweep.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sweeper != nil {
		<-s.sweeper.Stop().Done()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// sweepAlerts evaluates alerts against the current month's ledger and logs
// anything that fires.
func (s *Server) sweepAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	entries, err := s.ledger.Query(ctx, usage.Filter{
		OrganizationID: s.appCfg.OrganizationID,
		From:           monthStart,
	})
	if err != nil {
		log.Printf("alert sweep: querying ledger: %v", err)
		return
	}

	alerts := usage.EvaluateAlerts(entries, s.appCfg.Alerts, now)
	for _, a := range alerts {
		log.Printf("alert [%s/%s]: %s", a.Type, a.Severity, a.Message)
	}
}
