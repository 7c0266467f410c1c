// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package media

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/metrics"
)

// Prober reads video durations with ffprobe. Failures degrade to a
// zero duration instead of failing the upload; the circuit breaker
// stops spawning processes after repeated consecutive failures (a
// missing binary fails every call).
type Prober struct {
	binary  string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[float64]
}

// NewProber creates a Prober using the given ffprobe binary path.
func NewProber(binary string, timeout time.Duration) *Prober {
	return &Prober{
		binary:  binary,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
			Name:    "ffprobe",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state change")
			},
		}),
	}
}

// Duration returns the duration of the file in seconds, or 0 when the
// file cannot be probed.
func (p *Prober) Duration(ctx context.Context, path string) float64 {
	duration, err := p.breaker.Execute(func() (float64, error) {
		cctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		out, err := exec.CommandContext(cctx, p.binary,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		).Output()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	})
	if err != nil {
		metrics.ProbeTotal.WithLabelValues("failure").Inc()
		logging.Warn().Err(err).Str("path", path).Msg("ffprobe failed, duration unknown")
		return 0
	}
	metrics.ProbeTotal.WithLabelValues("success").Inc()
	return duration
}
