// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package config loads the boot configuration from defaults, an optional
// YAML file and TUBELITE_* environment variables, in that order of
// precedence. Runtime-mutable settings (registration toggle, upload cap,
// maintenance mode) live inside the persisted document instead, so they
// survive restarts and are editable through the admin API.
package config

import (
	"fmt"
	"time"
)

// Config is the full boot configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Media     MediaConfig     `koanf:"media"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig configures the data directory. The document file and the
// media subdirectories (videos, thumbnails, avatars, imports, quality,
// backups) all live under DataDir.
type StorageConfig struct {
	DataDir string `koanf:"data_dir"`
}

// MediaConfig configures the external tool shell-outs and the background
// folder importer.
type MediaConfig struct {
	// ScanInterval is how often the import directory is scanned.
	ScanInterval time.Duration `koanf:"scan_interval"`

	// ProbeTimeout bounds a single ffprobe invocation.
	ProbeTimeout time.Duration `koanf:"probe_timeout"`

	// TranscodeTimeout bounds a single ffmpeg invocation.
	TranscodeTimeout time.Duration `koanf:"transcode_timeout"`

	// FFprobePath and FFmpegPath override tool discovery via $PATH.
	FFprobePath string `koanf:"ffprobe_path"`
	FFmpegPath  string `koanf:"ffmpeg_path"`
}

// AuthConfig configures sessions.
type AuthConfig struct {
	// SessionTTL is how long a session token stays valid.
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// RateLimitConfig configures per-IP request limits. Auth endpoints get
// the stricter Auth* limits to slow brute forcing.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`

	AuthRequests int           `koanf:"auth_requests"`
	AuthWindow   time.Duration `koanf:"auth_window"`

	Disabled bool `koanf:"disabled"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns a Config with all default values applied. These are
// overridden by the config file and then by environment variables.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			Timeout:            30 * time.Second,
			CORSAllowedOrigins: []string{},
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Media: MediaConfig{
			ScanInterval:     5 * time.Minute,
			ProbeTimeout:     10 * time.Second,
			TranscodeTimeout: 5 * time.Minute,
			FFprobePath:      "ffprobe",
			FFmpegPath:       "ffmpeg",
		},
		Auth: AuthConfig{
			SessionTTL: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Requests:     300,
			Window:       time.Minute,
			AuthRequests: 10,
			AuthWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Media.ScanInterval <= 0 {
		return fmt.Errorf("media.scan_interval must be positive, got %s", c.Media.ScanInterval)
	}
	return nil
}
