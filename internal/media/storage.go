// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package media owns everything under the data directory except the
// document itself: original video files, thumbnails, avatars, the
// auto-import drop folder and transcoded quality renditions. It also
// wraps the ffprobe/ffmpeg externals behind circuit breakers so a
// wedged binary cannot stall every upload.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// VideoExtensions are the container formats accepted by upload and the
// import scanner.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
}

// Paths resolves the media subdirectories under the data directory.
type Paths struct {
	DataDir string
}

func (p Paths) Videos() string   { return filepath.Join(p.DataDir, "videos") }
func (p Paths) Thumbs() string   { return filepath.Join(p.DataDir, "thumbnails") }
func (p Paths) Avatars() string  { return filepath.Join(p.DataDir, "avatars") }
func (p Paths) Imports() string  { return filepath.Join(p.DataDir, "auto_videos") }
func (p Paths) Quality() string  { return filepath.Join(p.DataDir, "quality") }
func (p Paths) Backups() string  { return filepath.Join(p.DataDir, "backups") }
func (p Paths) Document() string { return filepath.Join(p.DataDir, "db.json") }

// EnsureDirs creates every media subdirectory.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{
		p.DataDir, p.Videos(), p.Thumbs(), p.Avatars(), p.Imports(), p.Quality(), p.Backups(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// VideoFile maps a stored video URL ("/media/videos/<name>") back to
// its path on disk. Only the basename is trusted.
func (p Paths) VideoFile(url string) string {
	return filepath.Join(p.Videos(), filepath.Base(url))
}

// QualityFile returns the on-disk path of one transcoded rendition.
func (p Paths) QualityFile(videoID, quality string) string {
	return filepath.Join(p.Quality(), videoID, quality+".mp4")
}

// SaveStream streams r into path and returns the byte count. The write
// goes to a sibling temp file first so a failed upload never leaves a
// half-written media file in place.
func SaveStream(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

// RemoveVideoFiles deletes a video's original file, thumbnail and
// quality renditions. Missing files are not errors: deletion must
// succeed even when media has already gone away.
func (p Paths) RemoveVideoFiles(videoID, url, thumb string) {
	if url != "" {
		os.Remove(p.VideoFile(url))
	}
	if thumb != "" {
		os.Remove(filepath.Join(p.Thumbs(), filepath.Base(thumb)))
	}
	os.RemoveAll(filepath.Join(p.Quality(), videoID))
}

// TitleFromFilename derives a display title from an imported filename:
// extension stripped, separators spaced out.
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ReplaceAll(base, "_", " ")
	return strings.ReplaceAll(base, "-", " ")
}
