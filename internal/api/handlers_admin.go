// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/maintenance"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

// HandleAdminHealth runs a health check and returns server statistics
// alongside the detected issues.
func (h *Handler) HandleAdminHealth(w http.ResponseWriter, r *http.Request) {
	issues, err := h.monitor.CheckHealth()
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Health check failed", err)
		return
	}

	stats := map[string]interface{}{}
	h.store.View(func(d *models.Document) error {
		stats["users"] = len(d.Users)
		stats["videos"] = len(d.Videos)
		stats["comments"] = len(d.Comments)
		stats["likes"] = len(d.Likes)
		stats["sessions"] = len(d.Sessions)
		stats["last_check"] = d.Health.LastCheck
		return nil
	})
	if free, err := maintenance.FreeDiskGB(h.paths.DataDir); err == nil {
		stats["disk_free_gb"] = free
	}
	stats["issues"] = issues
	respondData(w, http.StatusOK, stats)
}

// HandleFixServer runs the maintenance sweep and reports what it
// cleaned up.
func (h *Handler) HandleFixServer(w http.ResponseWriter, r *http.Request) {
	fixes, err := h.monitor.FixAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Maintenance sweep failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"fixes": fixes})
}

// HandleScanVideos triggers an import-folder scan.
func (h *Handler) HandleScanVideos(w http.ResponseWriter, r *http.Request) {
	imported, err := h.scanner.Scan(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Import scan failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]int{"imported": imported})
}

// TranscodeRequest queues a transcode of a video to a target quality.
type TranscodeRequest struct {
	VideoID string `json:"video_id" validate:"required"`
	Quality string `json:"quality" validate:"required"`
}

// HandleTranscode starts a background transcode. The quality rung is
// appended to the video's ladder once the encode succeeds.
func (h *Handler) HandleTranscode(w http.ResponseWriter, r *http.Request) {
	var req TranscodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if _, ok := media.QualityLadder[req.Quality]; !ok {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Unknown quality", nil)
		return
	}

	var src string
	h.store.View(func(d *models.Document) error {
		if v, ok := d.Videos[req.VideoID]; ok {
			src = h.paths.VideoFile(v.URL)
		}
		return nil
	})
	if src == "" {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Video not found", nil)
		return
	}

	go func(videoID, source, quality string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.transcoder.Transcode(ctx, videoID, source, quality); err != nil {
			logging.Error().Err(err).
				Str("video_id", sanitizeLogValue(videoID)).
				Str("quality", quality).
				Msg("Background transcode failed")
			return
		}
		h.store.Update(func(d *models.Document) error {
			v, ok := d.Videos[videoID]
			if !ok {
				return nil
			}
			for _, q := range v.Qualities {
				if q == quality {
					return nil
				}
			}
			v.Qualities = append(v.Qualities, quality)
			return nil
		})
	}(req.VideoID, src, req.Quality)

	respondData(w, http.StatusAccepted, map[string]string{"status": "transcoding", "quality": req.Quality})
}

// HandleListUsers returns every account for the admin console.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users := []*models.ChannelView{}
	h.store.View(func(d *models.Document) error {
		ids := make([]string, 0, len(d.Users))
		for id := range d.Users {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			users = append(users, query.ChannelViewFor(d, d.Users[id], ""))
		}
		return nil
	})
	respondData(w, http.StatusOK, map[string]interface{}{"users": users})
}

// UserActionRequest targets a user for a moderation toggle.
type UserActionRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// HandleBanUser toggles a ban. Banning revokes every session the user
// holds.
func (h *Handler) HandleBanUser(w http.ResponseWriter, r *http.Request) {
	admin := auth.UserFrom(r.Context())
	var req UserActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.UserID == admin.ID {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Cannot ban yourself", nil)
		return
	}

	banned := false
	err := h.store.Update(func(d *models.Document) error {
		u, ok := d.Users[req.UserID]
		if !ok {
			return errNotFound
		}
		u.IsBanned = !u.IsBanned
		banned = u.IsBanned
		if banned {
			auth.RevokeUser(d, u.ID)
		}
		return nil
	})
	if !h.respondStoreErr(w, err, "User not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"banned": banned})
}

// HandleVerifyUser toggles the verified badge.
func (h *Handler) HandleVerifyUser(w http.ResponseWriter, r *http.Request) {
	var req UserActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	verified := false
	err := h.store.Update(func(d *models.Document) error {
		u, ok := d.Users[req.UserID]
		if !ok {
			return errNotFound
		}
		u.IsVerified = !u.IsVerified
		verified = u.IsVerified
		return nil
	})
	if !h.respondStoreErr(w, err, "User not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"verified": verified})
}

// HandleToggleAdmin toggles admin rights. Admins cannot demote
// themselves, so there is always at least one admin left.
func (h *Handler) HandleToggleAdmin(w http.ResponseWriter, r *http.Request) {
	admin := auth.UserFrom(r.Context())
	var req UserActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.UserID == admin.ID {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Cannot change your own admin status", nil)
		return
	}

	isAdmin := false
	err := h.store.Update(func(d *models.Document) error {
		u, ok := d.Users[req.UserID]
		if !ok {
			return errNotFound
		}
		u.IsAdmin = !u.IsAdmin
		isAdmin = u.IsAdmin
		return nil
	})
	if !h.respondStoreErr(w, err, "User not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"is_admin": isAdmin})
}

// HandleDeleteUser removes an account and everything it owns: videos
// and their files, comments, likes, subscriptions in both directions,
// playlists, notifications, history, behavior and sessions.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := auth.UserFrom(r.Context())
	var req UserActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.UserID == admin.ID {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Cannot delete yourself", nil)
		return
	}

	var removeFiles []*models.Video
	err := h.store.Update(func(d *models.Document) error {
		uid := req.UserID
		if _, ok := d.Users[uid]; !ok {
			return errNotFound
		}

		for vid, v := range d.Videos {
			if v.OwnerID != uid {
				continue
			}
			removeFiles = append(removeFiles, v)
			deleteVideoRecords(d, vid)
			delete(d.Videos, vid)
		}
		for cid, c := range d.Comments {
			if c.AuthorID == uid {
				delete(d.Comments, cid)
			}
		}
		for key, l := range d.Likes {
			if l.UserID == uid {
				delete(d.Likes, key)
			}
		}
		for key, cl := range d.CommentLikes {
			if cl.UserID == uid {
				delete(d.CommentLikes, key)
			}
		}
		for sid, s := range d.Subs {
			if s.SubscriberID == uid || s.ChannelID == uid {
				delete(d.Subs, sid)
			}
		}
		for pid, pl := range d.Playlists {
			if pl.OwnerID == uid {
				delete(d.Playlists, pid)
			}
		}
		delete(d.WatchLater, uid)
		delete(d.Notifications, uid)
		delete(d.History, uid)
		delete(d.Behavior, uid)
		auth.RevokeUser(d, uid)
		delete(d.Users, uid)
		return nil
	})
	if !h.respondStoreErr(w, err, "User not found") {
		return
	}

	for _, v := range removeFiles {
		h.paths.RemoveVideoFiles(v.ID, v.URL, v.Thumb)
	}
	logging.Info().Str("user_id", sanitizeLogValue(req.UserID)).Msg("User account deleted")
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ResetPasswordRequest sets a user's password from the admin console.
type ResetPasswordRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=4,max=128"`
}

// HandleResetPassword overwrites a user's password hash.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Password reset failed", err)
		return
	}
	err = h.store.Update(func(d *models.Document) error {
		u, ok := d.Users[req.UserID]
		if !ok {
			return errNotFound
		}
		u.PasswordHash = hash
		auth.RevokeUser(d, u.ID)
		return nil
	})
	if !h.respondStoreErr(w, err, "User not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleGetSettings returns the mutable server settings.
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	h.store.View(func(d *models.Document) error {
		settings = d.Settings
		return nil
	})
	respondData(w, http.StatusOK, settings)
}

// SettingsRequest updates the mutable server settings. Absent fields
// keep their current value.
type SettingsRequest struct {
	RegistrationEnabled *bool `json:"reg"`
	Maintenance         *bool `json:"maint"`
	MaxUploadMB         *int  `json:"max_mb" validate:"omitempty,min=1,max=10240"`
}

// HandleUpdateSettings applies partial settings changes.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var settings models.Settings
	err := h.store.Update(func(d *models.Document) error {
		if req.RegistrationEnabled != nil {
			d.Settings.RegistrationEnabled = *req.RegistrationEnabled
		}
		if req.Maintenance != nil {
			d.Settings.Maintenance = *req.Maintenance
		}
		if req.MaxUploadMB != nil {
			d.Settings.MaxUploadMB = *req.MaxUploadMB
		}
		settings = d.Settings
		return nil
	})
	if !h.respondStoreErr(w, err, "") {
		return
	}
	respondData(w, http.StatusOK, settings)
}

// reportView is a report with its id attached for the admin console.
type reportView struct {
	ID string `json:"id"`
	models.Report
}

// HandleListReports returns open reports first, newest within each
// group.
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	reports := []reportView{}
	h.store.View(func(d *models.Document) error {
		for id, rep := range d.Reports {
			reports = append(reports, reportView{ID: id, Report: *rep})
		}
		return nil
	})
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Resolved != reports[j].Resolved {
			return !reports[i].Resolved
		}
		if reports[i].Created != reports[j].Created {
			return reports[i].Created > reports[j].Created
		}
		return reports[i].ID < reports[j].ID
	})
	respondData(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// ResolveReportRequest marks a report handled.
type ResolveReportRequest struct {
	ReportID string `json:"report_id" validate:"required"`
}

// HandleResolveReport marks a report resolved.
func (h *Handler) HandleResolveReport(w http.ResponseWriter, r *http.Request) {
	var req ResolveReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		rep, ok := d.Reports[req.ReportID]
		if !ok {
			return errNotFound
		}
		rep.Resolved = true
		return nil
	})
	if !h.respondStoreErr(w, err, "Report not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"resolved": true})
}

// BroadcastRequest sends a system notification to every account.
type BroadcastRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

// HandleBroadcast queues a system notification for every user.
func (h *Handler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	admin := auth.UserFrom(r.Context())
	var req BroadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	sent := 0
	err := h.store.Update(func(d *models.Document) error {
		for uid := range d.Users {
			if uid == admin.ID {
				continue
			}
			notify(d, uid, models.NotifSystem, "", admin.ID, req.Message)
			sent++
		}
		return nil
	})
	if !h.respondStoreErr(w, err, "") {
		return
	}
	respondData(w, http.StatusOK, map[string]int{"sent": sent})
}

// HandleClearSessions logs everyone out, including the caller.
func (h *Handler) HandleClearSessions(w http.ResponseWriter, r *http.Request) {
	cleared := 0
	err := h.store.Update(func(d *models.Document) error {
		cleared = len(d.Sessions)
		d.Sessions = map[string]*models.Session{}
		return nil
	})
	if !h.respondStoreErr(w, err, "") {
		return
	}
	logging.Info().Int("cleared", cleared).Msg("All sessions cleared")
	respondData(w, http.StatusOK, map[string]int{"cleared": cleared})
}

// HandleCreateBackup snapshots the document to the backup directory.
func (h *Handler) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	name, err := h.backups.Snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Backup failed", err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{"backup": name})
}

// HandleListBackups lists backup snapshots newest-first.
func (h *Handler) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	names, err := h.backups.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Listing backups failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"backups": names})
}
