// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/store"
)

func newTestStore(t *testing.T) (*store.Store, media.Paths) {
	t.Helper()
	paths := media.Paths{DataDir: t.TempDir()}
	if err := paths.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	st, err := store.Open(paths.Document())
	if err != nil {
		t.Fatal(err)
	}
	return st, paths
}

func TestFixAllPrunesStaleState(t *testing.T) {
	st, paths := newTestStore(t)
	now := time.Now().Unix()

	st.Update(func(d *models.Document) error {
		d.Users["1"] = &models.User{ID: "1", Username: "alice"}
		d.Sessions["fresh"] = &models.Session{UserID: "1", Created: now}
		d.Sessions["stale"] = &models.Session{UserID: "1", Created: now - 2*86400}
		d.ViewLog["old"] = now - 2*86400
		d.ViewLog["new"] = now
		d.Notifications["1"] = []*models.Notification{
			{ID: "a", Created: now - 31*86400},
			{ID: "b", Created: now},
		}
		d.History["1"] = []*models.HistoryEntry{
			{VideoID: "v1", Time: now - 91*86400},
			{VideoID: "v2", Time: now},
		}
		return nil
	})
	// An orphaned file nothing references.
	orphan := filepath.Join(paths.Videos(), "ghost.mp4")
	os.WriteFile(orphan, []byte("x"), 0o644)

	mon := NewMonitor(st, paths)
	fixes, err := mon.FixAll()
	if err != nil {
		t.Fatalf("FixAll: %v", err)
	}
	if len(fixes) != 5 {
		t.Errorf("fixes = %v, want 5 entries", fixes)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("orphaned file not removed")
	}

	st.View(func(d *models.Document) error {
		if _, ok := d.Sessions["stale"]; ok {
			t.Error("stale session survived")
		}
		if _, ok := d.Sessions["fresh"]; !ok {
			t.Error("fresh session removed")
		}
		if _, ok := d.ViewLog["old"]; ok {
			t.Error("old view log survived")
		}
		if len(d.Notifications["1"]) != 1 || d.Notifications["1"][0].ID != "b" {
			t.Errorf("notifications = %+v, want just b", d.Notifications["1"])
		}
		if len(d.History["1"]) != 1 || d.History["1"][0].VideoID != "v2" {
			t.Errorf("history = %+v, want just v2", d.History["1"])
		}
		if d.Health.LastCheck == 0 {
			t.Error("health last_check not recorded")
		}
		return nil
	})

	// Second run finds nothing.
	fixes, err = mon.FixAll()
	if err != nil {
		t.Fatalf("second FixAll: %v", err)
	}
	if len(fixes) != 0 {
		t.Errorf("second run fixes = %v, want none", fixes)
	}
}

func TestCheckHealthReportsOrphansAndSessions(t *testing.T) {
	st, paths := newTestStore(t)
	st.Update(func(d *models.Document) error {
		d.Users["1"] = &models.User{ID: "1"}
		for i := 0; i < maxSessionCount+1; i++ {
			d.Sessions[fmt.Sprintf("tok%04d", i)] = &models.Session{UserID: "1", Created: time.Now().Unix()}
		}
		return nil
	})
	os.WriteFile(filepath.Join(paths.Videos(), "ghost.mp4"), []byte("x"), 0o644)

	issues, err := NewMonitor(st, paths).CheckHealth()
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	var sawOrphans, sawSessions bool
	for _, is := range issues {
		if is == "Orphaned video files: 1" {
			sawOrphans = true
		}
		if is == "High session count: 1001" {
			sawSessions = true
		}
	}
	if !sawOrphans || !sawSessions {
		t.Errorf("issues = %v, want orphan and session findings", issues)
	}
}

func TestCheckHealthCleanSystem(t *testing.T) {
	st, paths := newTestStore(t)
	issues, err := NewMonitor(st, paths).CheckHealth()
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues on a clean system = %v", issues)
	}
	st.View(func(d *models.Document) error {
		if d.Health.LastCheck == 0 {
			t.Error("last_check not set")
		}
		return nil
	})
}
