// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

// HandleGetUser returns a user's public channel profile.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := ""
	if u := auth.UserFrom(r.Context()); u != nil {
		viewerID = u.ID
	}
	var view *models.ChannelView
	h.store.View(func(d *models.Document) error {
		if u, ok := d.Users[id]; ok {
			view = query.ChannelViewFor(d, u, viewerID)
		}
		return nil
	})
	if view == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
		return
	}
	respondData(w, http.StatusOK, view)
}

// HandleGetUserVideos lists a channel's videos newest-first. Owners
// see their hidden videos too.
func (h *Handler) HandleGetUserVideos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := ""
	if u := auth.UserFrom(r.Context()); u != nil {
		viewerID = u.ID
	}
	videos := []*models.VideoView{}
	h.store.View(func(d *models.Document) error {
		vids := query.Videos(d, func(v *models.Video) bool {
			return v.OwnerID == id && (viewerID == id || query.Visible(v))
		})
		videos = query.EnrichVideos(d, vids)
		query.SortVideos(videos, "newest")
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// HandleGetUserPlaylists lists a user's playlists; private ones appear
// only to their owner.
func (h *Handler) HandleGetUserPlaylists(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := ""
	if u := auth.UserFrom(r.Context()); u != nil {
		viewerID = u.ID
	}
	playlists := []*models.PlaylistSummary{}
	h.store.View(func(d *models.Document) error {
		playlists = playlistSummaries(d, func(pl *models.Playlist) bool {
			return pl.OwnerID == id && (pl.Public || viewerID == id)
		})
		return nil
	})
	respondData(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// HandleUpdateProfile updates display name, bio, avatar and banner via
// multipart form.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "Profile payload too large", err)
		return
	}

	avatarURL, bannerURL := "", ""
	if f, hdr, err := r.FormFile("avatar"); err == nil {
		ext := strings.ToLower(filepath.Ext(hdr.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		name := u.ID + ext
		if _, err := media.SaveStream(filepath.Join(h.paths.Avatars(), name), f); err == nil {
			avatarURL = "/media/avatars/" + name
		}
		f.Close()
	}
	if f, hdr, err := r.FormFile("banner"); err == nil {
		ext := strings.ToLower(filepath.Ext(hdr.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		name := "banner_" + u.ID + ext
		if _, err := media.SaveStream(filepath.Join(h.paths.Avatars(), name), f); err == nil {
			bannerURL = "/media/avatars/" + name
		}
		f.Close()
	}

	displayName := strings.TrimSpace(r.FormValue("display_name"))
	bio, bioSet := "", false
	if vals, ok := r.MultipartForm.Value["bio"]; ok && len(vals) > 0 {
		bio, bioSet = strings.TrimSpace(vals[0]), true
	}

	var view *models.ChannelView
	err := h.store.Update(func(d *models.Document) error {
		usr, ok := d.Users[u.ID]
		if !ok {
			return errNotFound
		}
		if displayName != "" {
			usr.DisplayName = displayName
		}
		if bioSet {
			usr.Bio = bio
		}
		if avatarURL != "" {
			usr.Avatar = avatarURL
		}
		if bannerURL != "" {
			usr.Banner = bannerURL
		}
		view = query.ChannelViewFor(d, usr, "")
		return nil
	})
	if !h.respondStoreErr(w, err, "User not found") {
		return
	}
	respondData(w, http.StatusOK, view)
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=4,max=128"`
}

// HandleChangePassword verifies the old password and stores a new
// hash.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		usr, ok := d.Users[u.ID]
		if !ok {
			return errNotFound
		}
		if !auth.CheckPassword(usr.PasswordHash, req.OldPassword) {
			return errValidation
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		usr.PasswordHash = hash
		return nil
	})
	switch err {
	case nil:
		respondData(w, http.StatusOK, map[string]bool{"ok": true})
	case errValidation:
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Current password is incorrect", nil)
	case errNotFound:
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Password change failed", err)
	}
}

// HandleGetWatchLater lists the user's watch-later queue in order.
func (h *Handler) HandleGetWatchLater(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	videos := []*models.VideoView{}
	h.store.View(func(d *models.Document) error {
		for _, vid := range d.WatchLater[u.ID] {
			if v, ok := d.Videos[vid]; ok && query.Visible(v) {
				videos = append(videos, query.EnrichVideo(d, v))
			}
		}
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// WatchLaterRequest toggles a video in the watch-later queue.
type WatchLaterRequest struct {
	VideoID string `json:"video_id" validate:"required"`
}

// HandleWatchLater toggles a video in the caller's watch-later queue,
// newest at the front, capped at 200 entries.
func (h *Handler) HandleWatchLater(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req WatchLaterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var (
		added bool
		count int
	)
	err := h.store.Update(func(d *models.Document) error {
		if _, ok := d.Videos[req.VideoID]; !ok {
			return errNotFound
		}
		wl := d.WatchLater[u.ID]
		idx := -1
		for i, vid := range wl {
			if vid == req.VideoID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			wl = append(wl[:idx], wl[idx+1:]...)
		} else {
			wl = append([]string{req.VideoID}, wl...)
			if len(wl) > 200 {
				wl = wl[:200]
			}
			added = true
		}
		d.WatchLater[u.ID] = wl
		count = len(wl)
		return nil
	})
	if !h.respondStoreErr(w, err, "Video not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"added": added, "count": count})
}
