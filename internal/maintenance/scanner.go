// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package maintenance

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/metrics"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/store"
)

// systemUserID is the synthesized owner for imports when no admin
// account exists yet.
const systemUserID = "0"

// Scanner imports video files dropped into the auto-import folder.
// Each new file becomes a video owned by the first admin account, with
// its title derived from the filename. Files already imported (tracked
// via the video's AutoSource field) are skipped, so re-scans are cheap
// and idempotent.
type Scanner struct {
	store    *store.Store
	paths    media.Paths
	prober   *media.Prober
	interval time.Duration
}

// NewScanner creates a Scanner over the import folder.
func NewScanner(st *store.Store, paths media.Paths, prober *media.Prober, interval time.Duration) *Scanner {
	return &Scanner{store: st, paths: paths, prober: prober, interval: interval}
}

// Serve runs periodic scans until the context is canceled. It
// implements suture.Service.
func (s *Scanner) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				logging.Error().Err(err).Msg("Import scan failed")
			}
		}
	}
}

func (s *Scanner) String() string { return "import-scanner" }

// Scan walks the import folder once and returns how many videos were
// added.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.paths.Imports())
	if err != nil {
		return 0, fmt.Errorf("reading import folder: %w", err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !media.VideoExtensions[ext] {
			continue
		}
		if s.alreadyImported(name) {
			continue
		}

		srcPath := filepath.Join(s.paths.Imports(), name)
		duration := s.prober.Duration(ctx, srcPath)

		err := s.store.Update(func(d *models.Document) error {
			vid := d.NextID(models.CounterVideo)
			filename := vid + ext
			destPath := filepath.Join(s.paths.Videos(), filename)
			size, err := copyFile(srcPath, destPath)
			if err != nil {
				return fmt.Errorf("importing %s: %w", name, err)
			}
			d.Videos[vid] = &models.Video{
				ID:         vid,
				OwnerID:    importOwner(d),
				Title:      media.TitleFromFilename(name),
				URL:        "/media/videos/" + filename,
				Created:    time.Now().Unix(),
				SizeMB:     float64(int(size*100/(1<<20))) / 100,
				Duration:   duration,
				IsShort:    models.ClassifyShort(duration),
				AutoSource: name,
				Qualities:  []string{"original"},
				MaxQuality: "original",
			}
			return nil
		})
		if err != nil {
			logging.Error().Err(err).Str("file", name).Msg("Import failed")
			continue
		}
		metrics.ImportedVideosTotal.Inc()
		logging.Info().Str("file", name).Msg("Imported video")
		added++
	}
	return added, nil
}

func (s *Scanner) alreadyImported(name string) bool {
	found := false
	s.store.View(func(d *models.Document) error {
		for _, v := range d.Videos {
			if v.AutoSource == name {
				found = true
				break
			}
		}
		return nil
	})
	return found
}

// importOwner returns the first admin account's id, creating the
// synthetic system admin when no admin exists yet.
func importOwner(d *models.Document) string {
	var adminID string
	for _, u := range d.Users {
		if u.IsAdmin && (adminID == "" || u.ID < adminID) {
			adminID = u.ID
		}
	}
	if adminID != "" {
		return adminID
	}
	hash, err := auth.HashPassword(auth.NewToken())
	if err != nil {
		hash = ""
	}
	d.Users[systemUserID] = &models.User{
		ID:           systemUserID,
		Username:     "system",
		PasswordHash: hash,
		DisplayName:  "System",
		Created:      time.Now().Unix(),
		IsAdmin:      true,
		IsVerified:   true,
	}
	return systemUserID
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return media.SaveStream(dst, io.Reader(in))
}
