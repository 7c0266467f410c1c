// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/metrics"
)

// QualityProfile is one rung of the transcode ladder.
type QualityProfile struct {
	Width   int
	Height  int
	Bitrate string
}

// QualityLadder maps the supported rendition names to their encode
// parameters.
var QualityLadder = map[string]QualityProfile{
	"144p": {Width: 256, Height: 144, Bitrate: "200k"},
	"240p": {Width: 426, Height: 240, Bitrate: "400k"},
	"360p": {Width: 640, Height: 360, Bitrate: "800k"},
	"480p": {Width: 854, Height: 480, Bitrate: "1200k"},
	"720p": {Width: 1280, Height: 720, Bitrate: "2500k"},
}

// QualityOrder lists the ladder rungs lowest-first.
var QualityOrder = []string{"144p", "240p", "360p", "480p", "720p"}

// QualitiesUpTo returns the ladder rungs at or below max, or just
// "original" when max is not a ladder rung. This is what a freshly
// uploaded video advertises before any transcode has run.
func QualitiesUpTo(max string) []string {
	for i, q := range QualityOrder {
		if q == max {
			return append([]string(nil), QualityOrder[:i+1]...)
		}
	}
	return []string{"original"}
}

// Transcoder produces quality renditions with ffmpeg. Jobs run one at
// a time in the background; the circuit breaker sheds work when the
// encoder fails repeatedly.
type Transcoder struct {
	binary  string
	timeout time.Duration
	paths   Paths
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewTranscoder creates a Transcoder using the given ffmpeg binary.
func NewTranscoder(binary string, timeout time.Duration, paths Paths) *Transcoder {
	return &Transcoder{
		binary:  binary,
		timeout: timeout,
		paths:   paths,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    "ffmpeg",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
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

// Transcode encodes one rendition of a video into
// quality/<id>/<quality>.mp4 and returns its serving URL.
func (t *Transcoder) Transcode(ctx context.Context, videoID, sourcePath, quality string) (string, error) {
	profile, ok := QualityLadder[quality]
	if !ok {
		return "", fmt.Errorf("unknown quality %q", quality)
	}
	outDir := filepath.Join(t.paths.Quality(), videoID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, quality+".mp4")

	_, err := t.breaker.Execute(func() (struct{}, error) {
		cctx, cancel := context.WithTimeout(ctx, t.timeout)
		defer cancel()
		cmd := exec.CommandContext(cctx, t.binary,
			"-i", sourcePath,
			"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
			"-b:v", profile.Bitrate,
			"-c:v", "libx264",
			"-preset", "fast",
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "+faststart",
			"-y", outPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return struct{}{}, fmt.Errorf("ffmpeg: %w: %s", err, tail(out, 300))
		}
		return struct{}{}, nil
	})
	if err != nil {
		metrics.TranscodeTotal.WithLabelValues(quality, "failure").Inc()
		os.Remove(outPath)
		return "", err
	}
	metrics.TranscodeTotal.WithLabelValues(quality, "success").Inc()
	logging.Info().Str("video_id", videoID).Str("quality", quality).Msg("Transcode complete")
	return "/media/quality/" + videoID + "/" + quality + ".mp4", nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
