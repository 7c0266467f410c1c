// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }},
		{"zero session ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
		{"zero scan interval", func(c *Config) { c.Media.ScanInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct{ in, want string }{
		{"TUBELITE_SERVER_PORT", "server.port"},
		{"TUBELITE_STORAGE_DATA_DIR", "storage.data_dir"},
		{"TUBELITE_MEDIA_SCAN_INTERVAL", "media.scan_interval"},
		{"TUBELITE_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9000\nmedia:\n  scan_interval: 30s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TUBELITE_SERVER_HOST", "127.0.0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("file value not applied: port = %d", cfg.Server.Port)
	}
	if cfg.Media.ScanInterval != 30*time.Second {
		t.Errorf("scan_interval = %s, want 30s", cfg.Media.ScanInterval)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("env override not applied: host = %q", cfg.Server.Host)
	}
	if cfg.Auth.SessionTTL != 7*24*time.Hour {
		t.Errorf("untouched default changed: session_ttl = %s", cfg.Auth.SessionTTL)
	}
}
