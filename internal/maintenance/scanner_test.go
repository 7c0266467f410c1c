// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
)

// testProber points at a nonexistent binary: every probe fails and
// degrades to a zero duration, which is the offline path the scanner
// has to tolerate anyway.
func testProber() *media.Prober {
	return media.NewProber("/nonexistent/ffprobe", time.Second)
}

func TestScanImportsVideoFiles(t *testing.T) {
	st, paths := newTestStore(t)
	st.Update(func(d *models.Document) error {
		d.Users["1"] = &models.User{ID: "1", Username: "admin", IsAdmin: true}
		return nil
	})
	os.WriteFile(filepath.Join(paths.Imports(), "cool_clip.mp4"), []byte("vid"), 0o644)
	os.WriteFile(filepath.Join(paths.Imports(), "notes.txt"), []byte("skip"), 0o644)

	sc := NewScanner(st, paths, testProber(), time.Minute)
	added, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	st.View(func(d *models.Document) error {
		if len(d.Videos) != 1 {
			t.Fatalf("videos = %d, want 1", len(d.Videos))
		}
		for _, v := range d.Videos {
			if v.Title != "cool clip" {
				t.Errorf("title = %q, want %q", v.Title, "cool clip")
			}
			if v.OwnerID != "1" {
				t.Errorf("owner = %s, want admin 1", v.OwnerID)
			}
			if v.AutoSource != "cool_clip.mp4" {
				t.Errorf("auto source = %q", v.AutoSource)
			}
			if _, err := os.Stat(paths.VideoFile(v.URL)); err != nil {
				t.Errorf("imported file missing: %v", err)
			}
		}
		return nil
	})

	// Re-scan is a no-op.
	added, err = sc.Scan(context.Background())
	if err != nil || added != 0 {
		t.Errorf("second scan = %d, %v, want 0 imports", added, err)
	}
}

func TestScanCreatesSystemOwnerWithoutAdmin(t *testing.T) {
	st, paths := newTestStore(t)
	os.WriteFile(filepath.Join(paths.Imports(), "drop.webm"), []byte("vid"), 0o644)

	added, err := NewScanner(st, paths, testProber(), time.Minute).Scan(context.Background())
	if err != nil || added != 1 {
		t.Fatalf("Scan = %d, %v", added, err)
	}

	st.View(func(d *models.Document) error {
		sys, ok := d.Users[systemUserID]
		if !ok {
			t.Fatal("system user not created")
		}
		if !sys.IsAdmin || sys.Username != "system" {
			t.Errorf("system user = %+v", sys)
		}
		for _, v := range d.Videos {
			if v.OwnerID != systemUserID {
				t.Errorf("owner = %s, want system", v.OwnerID)
			}
		}
		return nil
	})
}
