// Package main provides the HTTP dashboard API server for journeyboard.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elyxlabs/journeyboard/internal/config"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/server"
	"github.com/elyxlabs/journeyboard/internal/store"
	"github.com/elyxlabs/journeyboard/internal/timeline"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	manifest, err := config.LoadManifest(cfg.ManifestFile)
	if err != nil {
		logger.Error("failed to load journey manifest", "error", err)
		os.Exit(1)
	}
	cfg = cfg.Apply(manifest)

	logger.Info("journeyboard-server starting",
		"version", version,
		"messages", cfg.MessagesPath(),
		"events", cfg.EventsPath(),
		"port", cfg.ServerPort,
	)

	collector := metrics.NewCollector()
	st := store.New(cfg.MessagesPath(), cfg.EventsPath(), logger, collector)

	// Validate the datasets up front: a missing file, malformed JSON or an
	// unorderable event log is fatal before serving starts.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	snap, err := st.Snapshot(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to load journey data", "error", err)
		os.Exit(1)
	}
	if _, err := timeline.OrderEvents(snap.Events); err != nil {
		logger.Error("event log is unorderable", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, manifest, st, logger, collector)

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Watch source files for changes in the background
	watchCtx, stopWatch := context.WithCancel(context.Background())
	go srv.WatchSources(watchCtx)

	go func() {
		logger.Info("API available", "url", "http://localhost:"+cfg.ServerPort+"/api/journey")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
