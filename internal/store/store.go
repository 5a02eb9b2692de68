// Package store loads the journey datasets into immutable in-memory
// snapshots, memoized by source file content.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/models"
)

// Snapshot is an immutable view of both datasets, loaded at one point in
// time. Collections are never mutated after load; callers share snapshots
// freely across goroutines.
type Snapshot struct {
	Messages []models.Message
	Events   []models.Event

	// InvalidTimestamps counts messages whose timestamp did not parse.
	// They remain in Messages and in role counts, but are excluded from
	// time-bucketed aggregation.
	InvalidTimestamps int

	// Hash identifies the source content this snapshot was built from.
	Hash     string
	LoadedAt time.Time
}

// fingerprint is the cheap staleness check for a source file.
type fingerprint struct {
	size    int64
	modTime time.Time
}

// Store memoizes the loaded snapshot, keyed by source file fingerprints.
// The first Snapshot call loads; later calls return the cached value until
// a source file changes on disk.
type Store struct {
	messagesPath string
	eventsPath   string
	logger       *slog.Logger
	collector    *metrics.Collector

	mu   sync.Mutex
	snap *Snapshot
	fps  map[string]fingerprint
}

// New creates a store over the two dataset files.
func New(messagesPath, eventsPath string, logger *slog.Logger, collector *metrics.Collector) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		messagesPath: messagesPath,
		eventsPath:   eventsPath,
		logger:       logger,
		collector:    collector,
		fps:          make(map[string]fingerprint),
	}
}

// Snapshot returns the current snapshot, loading the datasets if they were
// never loaded or if a source file changed since the last load.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap != nil && !s.staleLocked() {
		return s.snap, nil
	}
	return s.loadLocked(ctx)
}

// Reload discards the cached snapshot and loads from disk unconditionally.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Changed reports whether the source files differ from the cached snapshot.
// It only stats the files, never reads them.
func (s *Store) Changed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return true
	}
	return s.staleLocked()
}

// staleLocked compares current file fingerprints against the cached ones.
// A stat failure counts as stale so the next load surfaces a proper error.
func (s *Store) staleLocked() bool {
	for _, path := range []string{s.messagesPath, s.eventsPath} {
		info, err := os.Stat(path)
		if err != nil {
			return true
		}
		fp, ok := s.fps[path]
		if !ok || fp.size != info.Size() || !fp.modTime.Equal(info.ModTime()) {
			return true
		}
	}
	return false
}

// loadLocked reads, validates and caches both datasets.
func (s *Store) loadLocked(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	msgData, msgFP, err := readSource(s.messagesPath)
	if err != nil {
		return nil, err
	}
	evtData, evtFP, err := readSource(s.eventsPath)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := json.Unmarshal(msgData, &messages); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedData, s.messagesPath, err)
	}
	if dup := firstDuplicate(messages, func(m models.Message) string { return m.ID }); dup != "" {
		return nil, fmt.Errorf("%w: %s: duplicate message_id %q", ErrMalformedData, s.messagesPath, dup)
	}

	var events []models.Event
	if err := json.Unmarshal(evtData, &events); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedData, s.eventsPath, err)
	}
	if dup := firstDuplicate(events, func(e models.Event) string { return e.ID }); dup != "" {
		return nil, fmt.Errorf("%w: %s: duplicate event_id %q", ErrMalformedData, s.eventsPath, dup)
	}

	invalid := 0
	for _, m := range messages {
		if !m.HasTime() {
			invalid++
		}
	}
	if invalid > 0 {
		s.logger.Warn("messages with unparseable timestamps excluded from time bucketing",
			"count", invalid, "file", s.messagesPath)
	}

	sum := sha256.New()
	sum.Write(msgData)
	sum.Write(evtData)

	snap := &Snapshot{
		Messages:          messages,
		Events:            events,
		InvalidTimestamps: invalid,
		Hash:              hex.EncodeToString(sum.Sum(nil)),
		LoadedAt:          time.Now(),
	}

	s.snap = snap
	s.fps[s.messagesPath] = msgFP
	s.fps[s.eventsPath] = evtFP

	s.collector.RecordTiming(metrics.OpSnapshotLoad, time.Since(start))
	s.collector.RecordDataset(len(messages), len(events), invalid)

	s.logger.Info("snapshot loaded",
		"messages", len(messages),
		"events", len(events),
		"invalid_timestamps", invalid,
		"hash", snap.Hash[:12],
	)

	return snap, nil
}

// readSource reads one dataset file and its fingerprint.
func readSource(path string) ([]byte, fingerprint, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fingerprint{}, fmt.Errorf("%w: %s", ErrDataUnavailable, path)
	}
	if err != nil {
		return nil, fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fingerprint{}, fmt.Errorf("%w: %s", ErrDataUnavailable, path)
	}
	if err != nil {
		return nil, fingerprint{}, fmt.Errorf("read %s: %w", path, err)
	}

	return data, fingerprint{size: info.Size(), modTime: info.ModTime()}, nil
}

// firstDuplicate returns the first id that appears more than once.
func firstDuplicate[T any](records []T, id func(T) string) string {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		key := id(r)
		if _, ok := seen[key]; ok {
			return key
		}
		seen[key] = struct{}{}
	}
	return ""
}
