package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeyboard_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journeyboard_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Dataset metrics
	snapshotReloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journeyboard_snapshot_reloads_total",
			Help: "Total snapshot reloads triggered by source changes",
		},
	)

	snapshotReloadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journeyboard_snapshot_reload_failures_total",
			Help: "Total failed snapshot reloads",
		},
	)

	wsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "journeyboard_ws_clients",
			Help: "Currently connected websocket clients",
		},
	)
)
