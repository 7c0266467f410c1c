// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tubelite/tubelite/internal/models"
)

func TestOpenCreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document file not created: %v", err)
	}
	s.View(func(d *models.Document) error {
		if d.Users == nil || d.Videos == nil || d.Playlists == nil {
			t.Error("collections not initialized")
		}
		if !d.Settings.RegistrationEnabled {
			t.Error("registration should default to enabled")
		}
		return nil
	})
}

func TestUpdatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = s.Update(func(d *models.Document) error {
		uid := d.NextID(models.CounterUser)
		d.Users[uid] = &models.User{ID: uid, Username: "alice"}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened.View(func(d *models.Document) error {
		u, ok := d.Users["1"]
		if !ok || u.Username != "alice" {
			t.Errorf("user not persisted, got %+v", d.Users)
		}
		if d.Counters[models.CounterUser] != 1 {
			t.Errorf("counter = %d, want 1", d.Counters[models.CounterUser])
		}
		return nil
	})
}

func TestUpdateErrorRollsBackNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sentinel := errors.New("validation failed")
	if err := s.Update(func(d *models.Document) error {
		return sentinel
	}); !errors.Is(err, sentinel) {
		t.Fatalf("Update returned %v, want sentinel", err)
	}
}

func TestOpenRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open on corrupt file: %v", err)
	}
	s.View(func(d *models.Document) error {
		if len(d.Users) != 0 {
			t.Error("corrupt file should reset to an empty document")
		}
		return nil
	})
}

func TestOpenBackfillsMissingCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	// A minimal older-format document missing newer collections.
	if err := os.WriteFile(path, []byte(`{"users":{"1":{"id":"1","username":"old"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.View(func(d *models.Document) error {
		if d.Users["1"].Username != "old" {
			t.Error("existing data lost during backfill")
		}
		if d.Playlists == nil || d.CommentLikes == nil || d.WatchLater == nil {
			t.Error("missing collections not backfilled")
		}
		return nil
	})
}

func TestSnapshotIsValidJSON(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(data) == 0 || data[0] != '{' {
		t.Fatalf("snapshot does not look like JSON: %q", data[:min(len(data), 20)])
	}
}
