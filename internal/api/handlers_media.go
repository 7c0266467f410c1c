// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// serveFile streams a media file with range-request support. Only the
// basename of the requested name is honored, so a crafted path can
// never escape the media directories.
func serveFile(w http.ResponseWriter, r *http.Request, dir, name string) {
	path := filepath.Join(dir, filepath.Base(name))
	f, err := os.Open(path)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "File not found", nil)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "File not found", nil)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// HandleVideoFile serves an original upload.
func (h *Handler) HandleVideoFile(w http.ResponseWriter, r *http.Request) {
	serveFile(w, r, h.paths.Videos(), chi.URLParam(r, "file"))
}

// HandleThumbFile serves a thumbnail.
func (h *Handler) HandleThumbFile(w http.ResponseWriter, r *http.Request) {
	serveFile(w, r, h.paths.Thumbs(), chi.URLParam(r, "file"))
}

// HandleAvatarFile serves an avatar or banner image.
func (h *Handler) HandleAvatarFile(w http.ResponseWriter, r *http.Request) {
	serveFile(w, r, h.paths.Avatars(), chi.URLParam(r, "file"))
}

// HandleQualityFile serves one transcoded rendition of a video.
func (h *Handler) HandleQualityFile(w http.ResponseWriter, r *http.Request) {
	vid := filepath.Base(chi.URLParam(r, "id"))
	serveFile(w, r, filepath.Join(h.paths.Quality(), vid), chi.URLParam(r, "file"))
}
