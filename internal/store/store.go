// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package store implements whole-document persistence: the entire
// platform state is one models.Document serialized to a single JSON
// file. A mutex serializes every read and write, and mutations run
// under that lock before being persisted, so two concurrent
// read-modify-write operations can never lose each other's changes.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/metrics"
	"github.com/tubelite/tubelite/internal/models"
)

// Store owns the document and its backing file.
type Store struct {
	mu   sync.Mutex
	path string
	doc  *models.Document
}

// Open loads the document from path, creating an empty one if the file
// does not exist. Collections missing from an older file are backfilled
// with empty defaults.
//
// An unreadable or unparsable file is replaced by a fresh empty document
// so the server always starts. That recovery silently discards whatever
// the corrupt file held, so it is logged at error level and counted in
// metrics; operators who care should restore from a backup instead of
// restarting twice.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.doc = models.NewDocument()
		if perr := s.persistLocked(); perr != nil {
			return nil, perr
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read document file: %w", err)
	default:
		doc := &models.Document{}
		if uerr := json.Unmarshal(data, doc); uerr != nil {
			logging.Error().Err(uerr).Str("path", path).
				Msg("DOCUMENT CORRUPT: resetting to an empty document, all previous data is lost")
			metrics.StoreCorruptionTotal.Inc()
			doc = models.NewDocument()
		}
		doc.EnsureCollections()
		s.doc = doc
		if perr := s.persistLocked(); perr != nil {
			return nil, perr
		}
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// View runs fn with read access to the document under the store lock.
// fn must not retain references to the document past its return.
func (s *Store) View(fn func(*models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// Update runs fn with write access under the store lock and persists the
// document if fn succeeds. When fn returns an error nothing is written;
// fn should validate before mutating.
func (s *Store) Update(fn func(*models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	return s.persistLocked()
}

// Snapshot serializes the current document, for backups.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.doc, "", "  ")
}

// persistLocked writes the document to disk. Caller holds the lock (or
// has exclusive access during Open). The write goes through a temp file
// and rename so a crash mid-write cannot leave a half-written document.
func (s *Store) persistLocked() error {
	start := time.Now()

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	metrics.RecordStoreSave(time.Since(start), len(data))
	return nil
}
