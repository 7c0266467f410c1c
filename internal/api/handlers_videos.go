// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

// videoListResponse is the shape of paginated video listings.
type videoListResponse struct {
	Videos []*models.VideoView `json:"videos"`
	Total  int                 `json:"total,omitempty"`
	Page   int                 `json:"page,omitempty"`
}

// HandleListVideos returns the public long-form catalog, paginated and
// sorted by "newest" (default), "popular" or "liked".
func (h *Handler) HandleListVideos(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	page := getIntParam(r, "page", 1)
	perPage := getIntParam(r, "per_page", 12)

	var resp videoListResponse
	h.store.View(func(d *models.Document) error {
		vids := query.Videos(d, func(v *models.Video) bool {
			return query.Visible(v) && !v.IsShort
		})
		views := query.EnrichVideos(d, vids)
		query.SortVideos(views, sortBy)
		resp.Videos, resp.Total = query.Paginate(views, page, perPage)
		resp.Page = page
		return nil
	})
	respondData(w, http.StatusOK, resp)
}

// HandleShorts returns up to 20 short-form videos in random order.
func (h *Handler) HandleShorts(w http.ResponseWriter, r *http.Request) {
	var resp videoListResponse
	h.store.View(func(d *models.Document) error {
		resp.Videos = query.Shorts(d, h.rng())
		return nil
	})
	respondData(w, http.StatusOK, resp)
}

// HandleGetVideo returns the watch-page view of one video.
func (h *Handler) HandleGetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID := ""
	if u := auth.UserFrom(r.Context()); u != nil {
		viewerID = u.ID
	}

	var view *models.VideoView
	h.store.View(func(d *models.Document) error {
		if v, ok := d.Videos[id]; ok {
			view = query.EnrichVideoDetail(d, v, viewerID)
		}
		return nil
	})
	if view == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Video not found", nil)
		return
	}
	respondData(w, http.StatusOK, view)
}

// HandleUpload accepts a multipart upload with a video file, optional
// thumbnail, and metadata fields. Subscribers of the uploader are
// notified.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())

	var maxMB int
	h.store.View(func(d *models.Document) error {
		maxMB = d.Settings.MaxUploadMB
		return nil
	})
	// Headroom for the thumbnail and field overhead.
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxMB+10)<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "Upload exceeds the size limit", err)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Video file is required", err)
		return
	}
	defer file.Close()

	if header.Size > int64(maxMB)<<20 {
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
			"Video exceeds the maximum of "+strconv.Itoa(maxMB)+" MB", nil)
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".mp4"
	}
	if !media.VideoExtensions[ext] {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Unsupported video format", nil)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = "Untitled"
	}
	desc := strings.TrimSpace(r.FormValue("description"))
	tags := splitTags(r.FormValue("tags"))
	maxQuality := strings.TrimSpace(r.FormValue("quality"))
	if maxQuality == "" {
		maxQuality = "720p"
	}
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	var created *models.VideoView
	err = h.store.Update(func(d *models.Document) error {
		vid := d.NextID(models.CounterVideo)
		filename := vid + ext
		size, err := media.SaveStream(filepath.Join(h.paths.Videos(), filename), file)
		if err != nil {
			return err
		}

		// Client-declared duration is advisory; ffprobe the stored
		// file when the client sent none.
		if duration == 0 {
			duration = h.prober.Duration(r.Context(), filepath.Join(h.paths.Videos(), filename))
		}

		thumb := ""
		if tf, th, err := r.FormFile("thumbnail"); err == nil {
			text := strings.ToLower(filepath.Ext(th.Filename))
			if text == "" {
				text = ".jpg"
			}
			if _, err := media.SaveStream(filepath.Join(h.paths.Thumbs(), vid+text), tf); err == nil {
				thumb = "/media/thumbnails/" + vid + text
			}
			tf.Close()
		}

		video := &models.Video{
			ID:          vid,
			OwnerID:     u.ID,
			Title:       title,
			Description: desc,
			Tags:        tags,
			URL:         "/media/videos/" + filename,
			Thumb:       thumb,
			Created:     time.Now().Unix(),
			SizeMB:      float64(size*100>>20) / 100,
			Duration:    duration,
			IsShort:     models.ClassifyShort(duration),
			Qualities:   media.QualitiesUpTo(maxQuality),
			MaxQuality:  maxQuality,
		}
		d.Videos[vid] = video
		notifySubscribers(d, u.ID, vid, "New video: "+title)
		created = query.EnrichVideo(d, video)
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Upload failed", err)
		return
	}
	logging.Info().Str("video_id", created.ID).Str("owner", u.ID).Msg("Video uploaded")
	respondData(w, http.StatusCreated, created)
}

// ViewRequest reports a playback start for view counting.
type ViewRequest struct {
	VideoID string `json:"video_id" validate:"required"`
}

// HandleView counts a view, deduplicated per client fingerprint within
// a five-minute window. Authenticated viewers also get the video
// prepended to their watch history (skipping their own videos) and
// their format preference updated.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := decodeJSON(r, &req); err != nil || req.VideoID == "" {
		respondData(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	fp := clientFingerprint(r)
	now := time.Now()
	counted := false
	h.store.Update(func(d *models.Document) error {
		v, ok := d.Videos[req.VideoID]
		if !ok {
			return nil
		}
		key := fp + "_" + req.VideoID
		if now.Unix()-d.ViewLog[key] < int64(viewDedupWindow.Seconds()) {
			return nil
		}
		d.ViewLog[key] = now.Unix()
		v.Views++
		counted = true

		// Opportunistic prune keeps the log from growing unbounded.
		cutoff := now.Add(-time.Hour).Unix()
		for k, t := range d.ViewLog {
			if t <= cutoff {
				delete(d.ViewLog, k)
			}
		}

		if u := auth.UserFrom(r.Context()); u != nil && v.OwnerID != u.ID {
			appendHistory(d, u.ID, req.VideoID, now)
			recordWatch(d, u.ID, v.Duration, now)
		}
		return nil
	})
	respondData(w, http.StatusOK, map[string]bool{"ok": true, "counted": counted})
}

// EditVideoRequest updates video metadata. Hidden and IsShort are
// admin-only.
type EditVideoRequest struct {
	VideoID     string      `json:"video_id" validate:"required"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Tags        interface{} `json:"tags"`
	Hidden      *bool       `json:"hidden"`
	IsShort     *bool       `json:"is_short"`
}

// HandleEditVideo updates a video's metadata. Owner or admin only.
func (h *Handler) HandleEditVideo(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req EditVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		v, ok := d.Videos[req.VideoID]
		if !ok {
			return errNotFound
		}
		if v.OwnerID != u.ID && !u.IsAdmin {
			return errForbidden
		}
		if req.Title != nil {
			v.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			v.Description = strings.TrimSpace(*req.Description)
		}
		if req.Tags != nil {
			v.Tags = coerceTags(req.Tags)
		}
		if u.IsAdmin {
			if req.Hidden != nil {
				v.Hidden = *req.Hidden
			}
			if req.IsShort != nil {
				v.IsShort = *req.IsShort
			}
		}
		return nil
	})
	if !h.respondStoreErr(w, err, "Video not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteVideoRequest names the video to delete.
type DeleteVideoRequest struct {
	VideoID string `json:"video_id" validate:"required"`
}

// HandleDeleteVideo removes a video, its media files and its dependent
// records (comments, likes). Owner or admin only.
func (h *Handler) HandleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req DeleteVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		v, ok := d.Videos[req.VideoID]
		if !ok {
			return errNotFound
		}
		if v.OwnerID != u.ID && !u.IsAdmin {
			return errForbidden
		}
		h.paths.RemoveVideoFiles(v.ID, v.URL, v.Thumb)
		deleteVideoRecords(d, v.ID)
		return nil
	})
	if !h.respondStoreErr(w, err, "Video not found") {
		return
	}
	logging.Info().Str("video_id", req.VideoID).Str("by", u.ID).Msg("Video deleted")
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// ShareRequest names the shared video.
type ShareRequest struct {
	VideoID string `json:"video_id" validate:"required"`
}

// HandleShare increments a video's share counter. Anonymous allowed.
func (h *Handler) HandleShare(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := decodeJSON(r, &req); err == nil && req.VideoID != "" {
		h.store.Update(func(d *models.Document) error {
			if v, ok := d.Videos[req.VideoID]; ok {
				v.Shares++
			}
			return nil
		})
	}
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// respondStoreErr maps transaction sentinels to responses. Returns
// true when the caller may proceed to the success response.
func (h *Handler) respondStoreErr(w http.ResponseWriter, err error, notFoundMsg string) bool {
	switch err {
	case nil:
		return true
	case errNotFound:
		respondError(w, http.StatusNotFound, ErrCodeNotFound, notFoundMsg, nil)
	case errForbidden:
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Not allowed", nil)
	case errConflict:
		respondError(w, http.StatusConflict, ErrCodeConflict, "Conflict", nil)
	case errValidation:
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid request", nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Operation failed", err)
	}
	return false
}

// deleteVideoRecords removes a video and everything keyed to it.
func deleteVideoRecords(d *models.Document, videoID string) {
	delete(d.Videos, videoID)
	for id, c := range d.Comments {
		if c.VideoID == videoID {
			delete(d.Comments, id)
		}
	}
	for id, l := range d.Likes {
		if l.VideoID == videoID {
			delete(d.Likes, id)
		}
	}
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// coerceTags accepts either a JSON array of strings or one
// comma-separated string.
func coerceTags(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return splitTags(t)
	case []interface{}:
		var tags []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
		}
		return tags
	}
	return nil
}
