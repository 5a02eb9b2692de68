// Package server provides the HTTP API over the journey snapshot.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elyxlabs/journeyboard/internal/config"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/store"
)

// Server serves the read-only dashboard API. All state lives in the
// snapshot store; handlers never mutate anything.
type Server struct {
	cfg       config.Config
	manifest  config.Manifest
	store     *store.Store
	logger    *slog.Logger
	collector *metrics.Collector
	hub       *hub
}

// New creates a server over the given store.
func New(cfg config.Config, manifest config.Manifest, st *store.Store, logger *slog.Logger, collector *metrics.Collector) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		manifest:  manifest,
		store:     st,
		logger:    logger,
		collector: collector,
		hub:       newHub(logger),
	}
}

// Router creates and configures the HTTP router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware first to capture all requests
	r.Use(metricsMiddleware)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)

	// Read-only API, dashboards call from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.hub.handle)

	r.Route("/api", func(r chi.Router) {
		r.Get("/journey", s.handleJourney)
		r.Get("/summary", s.handleSummary)
		r.Get("/experts", s.handleExperts)
		r.Get("/months", s.handleMonths)
		r.Get("/events", s.handleEvents)
		r.Get("/events/{id}", s.handleEvent)
		r.Get("/events/{id}/sources", s.handleEventSources)
		r.Get("/messages", s.handleMessages)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// WatchSources polls the store for source file changes, reloads the
// snapshot and notifies websocket clients. Blocks until ctx is cancelled.
func (s *Server) WatchSources(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	defer s.hub.close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.store.Changed() {
				continue
			}

			snap, err := s.store.Reload(ctx)
			if err != nil {
				snapshotReloadFailures.Inc()
				s.logger.Error("snapshot reload failed, keeping previous snapshot", "error", err)
				continue
			}

			snapshotReloads.Inc()
			s.logger.Info("source data changed, snapshot reloaded",
				"messages", len(snap.Messages), "events", len(snap.Events))

			s.hub.broadcast(map[string]any{
				"type":      "snapshot_reloaded",
				"hash":      snap.Hash,
				"messages":  len(snap.Messages),
				"events":    len(snap.Events),
				"loaded_at": snap.LoadedAt.Format(time.RFC3339),
			})
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
