// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package backup writes timestamped snapshots of the document into the
// backups directory.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/store"
)

// keepBackups bounds how many snapshot files are retained; older ones
// are removed after each new snapshot.
const keepBackups = 10

// Manager snapshots the document store into dir.
type Manager struct {
	store *store.Store
	dir   string
}

// NewManager creates a backup Manager writing into dir.
func NewManager(st *store.Store, dir string) *Manager {
	return &Manager{store: st, dir: dir}
}

// Snapshot writes a consistent copy of the document to
// db-<timestamp>.json and returns its path.
func (m *Manager) Snapshot() (string, error) {
	data, err := m.store.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshotting document: %w", err)
	}
	name := fmt.Sprintf("db-%s.json", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	m.prune()
	logging.Info().Str("path", path).Int("bytes", len(data)).Msg("Backup written")
	return path, nil
}

// List returns existing backup filenames, newest first.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (m *Manager) prune() {
	names, err := m.List()
	if err != nil || len(names) <= keepBackups {
		return
	}
	for _, name := range names[keepBackups:] {
		os.Remove(filepath.Join(m.dir, name))
	}
}
