// Package config loads environment configuration and the journey manifest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Data sources
	DataDir      string
	MessagesFile string
	EventsFile   string
	ManifestFile string

	// HTTP server
	ServerPort   string
	PollInterval time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first, without overriding already-set values.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DataDir:      getEnv("JOURNEY_DATA_DIR", "data"),
		MessagesFile: getEnv("JOURNEY_MESSAGES_FILE", "conversations.json"),
		EventsFile:   getEnv("JOURNEY_EVENTS_FILE", "events.json"),
		ManifestFile: getEnv("JOURNEY_MANIFEST", "journey.yaml"),

		ServerPort:   getEnv("JOURNEY_SERVER_PORT", "8484"),
		PollInterval: parseDuration(getEnv("JOURNEY_POLL_INTERVAL", "5s"), 5*time.Second),

		LogFile:  getEnv("JOURNEY_LOG_FILE", "/tmp/journeyboard.log"),
		LogLevel: parseLogLevel(getEnv("JOURNEY_LOG_LEVEL", "INFO")),
	}
}

// MessagesPath returns the path to the message log.
func (c Config) MessagesPath() string {
	return filepath.Join(c.DataDir, c.MessagesFile)
}

// EventsPath returns the path to the event log.
func (c Config) EventsPath() string {
	return filepath.Join(c.DataDir, c.EventsFile)
}

// Manifest describes the journey being visualized: who the member is and
// which files hold the data. It replaces per-deployment hardcoded labels.
type Manifest struct {
	Title       string `yaml:"title"`
	MemberName  string `yaml:"member_name"`
	Description string `yaml:"description"`

	// Optional overrides for the data file names in Config.
	MessagesFile string `yaml:"messages_file,omitempty"`
	EventsFile   string `yaml:"events_file,omitempty"`
}

// DefaultManifest is used when no manifest file exists.
func DefaultManifest() Manifest {
	return Manifest{
		Title:      "Member Journey",
		MemberName: "Member",
	}
}

// LoadManifest reads the YAML journey manifest from path. A missing file is
// not an error; callers get the default manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	m := DefaultManifest()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Apply merges manifest file-name overrides into the config.
func (c Config) Apply(m Manifest) Config {
	if m.MessagesFile != "" {
		c.MessagesFile = m.MessagesFile
	}
	if m.EventsFile != "" {
		c.EventsFile = m.EventsFile
	}
	return c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
