// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Command server runs the Tubelite HTTP server: the JSON API, media
// delivery, the background import scanner and the Prometheus endpoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tubelite/tubelite/internal/api"
	"github.com/tubelite/tubelite/internal/backup"
	"github.com/tubelite/tubelite/internal/config"
	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/maintenance"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/store"
	"github.com/tubelite/tubelite/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting Tubelite")

	paths := media.Paths{DataDir: cfg.Storage.DataDir}
	if err := paths.EnsureDirs(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create data directories")
	}

	st, err := store.Open(paths.Document())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}

	prober := media.NewProber(cfg.Media.FFprobePath, cfg.Media.ProbeTimeout)
	transcoder := media.NewTranscoder(cfg.Media.FFmpegPath, cfg.Media.TranscodeTimeout, paths)
	scanner := maintenance.NewScanner(st, paths, prober, cfg.Media.ScanInterval)
	monitor := maintenance.NewMonitor(st, paths)
	backups := backup.NewManager(st, paths.Backups())

	// Pick up anything dropped into the import folder while we were down.
	if n, err := scanner.Scan(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Initial import scan failed")
	} else if n > 0 {
		logging.Info().Int("imported", n).Msg("Initial import scan finished")
	}

	handler := api.New(st, paths, prober, transcoder, scanner, monitor, backups, cfg)
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type"},
		CORSAllowCredentials: true,
		CORSMaxAge:           86400,

		RateLimitRequests:     cfg.RateLimit.Requests,
		RateLimitWindow:       cfg.RateLimit.Window,
		RateLimitDisabled:     cfg.RateLimit.Disabled,
		AuthRateLimitRequests: cfg.RateLimit.AuthRequests,
		AuthRateLimitWindow:   cfg.RateLimit.AuthWindow,
	})

	// No Read/WriteTimeout: video uploads and range streaming are
	// long-lived. ReadHeaderTimeout still bounds slow-header clients.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddWorker(scanner)
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor error")
		}
	}
	logging.Info().Msg("Server stopped")
}
