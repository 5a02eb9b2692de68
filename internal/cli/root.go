// Package cli provides the command-line interface for journeyboard.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/journeyboard/internal/config"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose      bool
	dataDir      string
	manifestPath string

	// Global config and snapshot store
	cfg       config.Config
	manifest  config.Manifest
	st        *store.Store
	collector *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "journeyboard",
	Short: "Health-journey engagement and timeline explorer",
	Long: `Journeyboard explores a health-coaching journey: the conversation log,
the curated event timeline, and the link between them.

Point it at a data directory holding conversations.json and events.json
(and optionally a journey.yaml manifest), then list events, inspect the
source conversations behind a decision, or open the interactive dashboard.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		cfg = config.Load()
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if manifestPath != "" {
			cfg.ManifestFile = manifestPath
		}

		var err error
		manifest, err = config.LoadManifest(cfg.ManifestFile)
		if err != nil {
			return err
		}
		cfg = cfg.Apply(manifest)

		collector = metrics.NewCollector()
		st = store.New(cfg.MessagesPath(), cfg.EventsPath(), logger, collector)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the journey data files")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "path to the journey manifest")

	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dashboardCmd)
}
