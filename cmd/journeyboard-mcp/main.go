// Package main provides the entry point for the journeyboard MCP server.
package main

import (
	"os"

	"github.com/elyxlabs/journeyboard/internal/config"
	"github.com/elyxlabs/journeyboard/internal/mcptools"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/store"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON).
	// Stdout is the MCP transport, so nothing else may write to it.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	manifest, err := config.LoadManifest(cfg.ManifestFile)
	if err != nil {
		logger.Error("failed to load journey manifest", "error", err)
		os.Exit(1)
	}
	cfg = cfg.Apply(manifest)

	logger.Info("journeyboard-mcp starting",
		"version", version,
		"messages", cfg.MessagesPath(),
		"events", cfg.EventsPath(),
	)

	collector := metrics.NewCollector()
	st := store.New(cfg.MessagesPath(), cfg.EventsPath(), logger, collector)

	deps := &mcptools.Dependencies{
		Store:     st,
		Collector: collector,
		Logger:    logger,
	}
	srv := mcptools.NewServer(version, deps)

	logger.Info("server ready, awaiting connections", "transport", "stdio")

	if err := mcptools.Serve(srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
