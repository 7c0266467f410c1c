// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package metrics provides Prometheus instrumentation for:
//   - API endpoint latency and throughput
//   - Document store load/save performance and size
//   - Background maintenance actions
//   - External tool (ffprobe/ffmpeg) outcomes
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Document store metrics.
	StoreSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_save_duration_seconds",
			Help:    "Duration of document serialization and write in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoreDocumentBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_document_bytes",
			Help: "Size of the serialized document in bytes",
		},
	)

	StoreCorruptionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_corruption_recoveries_total",
			Help: "Times the document file was unreadable and reset to empty",
		},
	)

	// Maintenance metrics.
	MaintenanceActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_actions_total",
			Help: "Cleanup actions performed by the maintenance pass",
		},
		[]string{"action"},
	)

	ImportedVideosTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imported_videos_total",
			Help: "Videos created by the folder import scanner",
		},
	)

	// External tool metrics.
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_probe_total",
			Help: "ffprobe invocations by outcome",
		},
		[]string{"outcome"},
	)

	TranscodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_transcode_total",
			Help: "ffmpeg transcode invocations by quality and outcome",
		},
		[]string{"quality", "outcome"},
	)
)

// RecordAPIRequest records metrics for one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreSave records one document persist.
func RecordStoreSave(duration time.Duration, bytes int) {
	StoreSaveDuration.Observe(duration.Seconds())
	StoreDocumentBytes.Set(float64(bytes))
}
