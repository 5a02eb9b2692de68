// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated timings for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// DatasetStats describes the currently loaded snapshot.
type DatasetStats struct {
	Messages          int       `json:"messages"`
	Events            int       `json:"events"`
	InvalidTimestamps int       `json:"invalid_timestamps"`
	Reloads           int64     `json:"reloads"`
	LastLoaded        time.Time `json:"last_loaded"`
}

// Snapshot represents the full runtime statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	Dataset       DatasetStats       `json:"dataset"`
	SnapshotLoad  *OperationSnapshot `json:"snapshot_load,omitempty"`
	Engagement    *OperationSnapshot `json:"engagement,omitempty"`
	Resolve       *OperationSnapshot `json:"resolve,omitempty"`
	OrderEvents   *OperationSnapshot `json:"order_events,omitempty"`
}

// Operation names for the collector.
const (
	OpSnapshotLoad = "snapshot_load"
	OpEngagement   = "engagement"
	OpResolve      = "resolve"
	OpOrderEvents  = "order_events"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe and safe on a nil receiver, so callers can
// skip wiring a collector where stats are not wanted.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	dataset   DatasetStats
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordDataset records the shape of a freshly loaded snapshot.
func (c *Collector) RecordDataset(messages, events, invalidTimestamps int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dataset.Messages = messages
	c.dataset.Events = events
	c.dataset.InvalidTimestamps = invalidTimestamps
	c.dataset.Reloads++
	c.dataset.LastLoaded = time.Now()
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Dataset:       c.dataset,
		SnapshotLoad:  snapshotOp(c.ops[OpSnapshotLoad]),
		Engagement:    snapshotOp(c.ops[OpEngagement]),
		Resolve:       snapshotOp(c.ops[OpResolve]),
		OrderEvents:   snapshotOp(c.ops[OpOrderEvents]),
	}
}
