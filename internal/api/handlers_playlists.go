// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

func playlistSummaries(d *models.Document, pred func(*models.Playlist) bool) []*models.PlaylistSummary {
	out := []*models.PlaylistSummary{}
	for _, pl := range d.Playlists {
		if !pred(pl) {
			continue
		}
		summary := &models.PlaylistSummary{
			ID:          pl.ID,
			Name:        pl.Name,
			Description: pl.Description,
			VideoCount:  len(pl.Videos),
			OwnerID:     pl.OwnerID,
			Public:      pl.Public,
		}
		if len(pl.Videos) > 0 {
			if v, ok := d.Videos[pl.Videos[0]]; ok {
				summary.Thumb = v.Thumb
			}
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HandleListPlaylists returns the caller's own playlists.
func (h *Handler) HandleListPlaylists(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	playlists := []*models.PlaylistSummary{}
	h.store.View(func(d *models.Document) error {
		playlists = playlistSummaries(d, func(pl *models.Playlist) bool {
			return pl.OwnerID == u.ID
		})
		return nil
	})
	respondData(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// CreatePlaylistRequest creates a playlist.
type CreatePlaylistRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"desc" validate:"max=500"`
	Public      *bool  `json:"public"`
}

// HandleCreatePlaylist creates an empty playlist, public by default.
func (h *Handler) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req CreatePlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}
	pl := &models.Playlist{
		ID:          shortID(),
		OwnerID:     u.ID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Videos:      []string{},
		Created:     time.Now().Unix(),
		Public:      public,
	}
	err := h.store.Update(func(d *models.Document) error {
		d.Playlists[pl.ID] = pl
		return nil
	})
	if !h.respondStoreErr(w, err, "") {
		return
	}
	respondData(w, http.StatusCreated, map[string]string{"id": pl.ID})
}

// PlaylistVideoRequest adds or removes a video from a playlist.
type PlaylistVideoRequest struct {
	PlaylistID string `json:"playlist_id" validate:"required"`
	VideoID    string `json:"video_id" validate:"required"`
}

// HandleAddToPlaylist appends a video to a playlist the caller owns.
// Adding a video already present is a no-op.
func (h *Handler) HandleAddToPlaylist(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req PlaylistVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	added := false
	err := h.store.Update(func(d *models.Document) error {
		pl, ok := d.Playlists[req.PlaylistID]
		if !ok {
			return errNotFound
		}
		if pl.OwnerID != u.ID {
			return errForbidden
		}
		if _, ok := d.Videos[req.VideoID]; !ok {
			return errNotFound
		}
		for _, vid := range pl.Videos {
			if vid == req.VideoID {
				return nil
			}
		}
		pl.Videos = append(pl.Videos, req.VideoID)
		added = true
		return nil
	})
	if !h.respondStoreErr(w, err, "Playlist or video not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"added": added})
}

// HandleRemoveFromPlaylist removes a video from a playlist the caller
// owns.
func (h *Handler) HandleRemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req PlaylistVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		pl, ok := d.Playlists[req.PlaylistID]
		if !ok {
			return errNotFound
		}
		if pl.OwnerID != u.ID {
			return errForbidden
		}
		for i, vid := range pl.Videos {
			if vid == req.VideoID {
				pl.Videos = append(pl.Videos[:i], pl.Videos[i+1:]...)
				break
			}
		}
		return nil
	})
	if !h.respondStoreErr(w, err, "Playlist not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"removed": true})
}

// HandleGetPlaylist returns a playlist with its visible videos
// enriched. Private playlists are only visible to their owner.
func (h *Handler) HandleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := ""
	if u := auth.UserFrom(r.Context()); u != nil {
		viewerID = u.ID
	}

	var (
		view      *models.PlaylistView
		forbidden bool
	)
	h.store.View(func(d *models.Document) error {
		pl, ok := d.Playlists[id]
		if !ok {
			return nil
		}
		if !pl.Public && pl.OwnerID != viewerID {
			forbidden = true
			return nil
		}
		view = &models.PlaylistView{Playlist: *pl, Items: []*models.VideoView{}}
		if owner, ok := d.Users[pl.OwnerID]; ok {
			view.OwnerName = owner.DisplayName
		} else {
			view.OwnerName = "?"
		}
		for _, vid := range pl.Videos {
			if v, ok := d.Videos[vid]; ok && query.Visible(v) {
				view.Items = append(view.Items, query.EnrichVideo(d, v))
			}
		}
		return nil
	})
	if forbidden {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Playlist is private", nil)
		return
	}
	if view == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Playlist not found", nil)
		return
	}
	respondData(w, http.StatusOK, view)
}

// DeletePlaylistRequest deletes a playlist.
type DeletePlaylistRequest struct {
	PlaylistID string `json:"playlist_id" validate:"required"`
}

// HandleDeletePlaylist removes a playlist the caller owns (admins may
// remove any).
func (h *Handler) HandleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req DeletePlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		pl, ok := d.Playlists[req.PlaylistID]
		if !ok {
			return errNotFound
		}
		if pl.OwnerID != u.ID && !u.IsAdmin {
			return errForbidden
		}
		delete(d.Playlists, req.PlaylistID)
		return nil
	})
	if !h.respondStoreErr(w, err, "Playlist not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}
