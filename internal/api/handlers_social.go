// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

// shortID returns the 8-char random ids used for likes, subscriptions,
// notifications, reports and playlists.
func shortID() string {
	return uuid.NewString()[:8]
}

// notifySubscribers queues a new-video notification to every
// subscriber of the channel.
func notifySubscribers(d *models.Document, channelID, videoID, message string) {
	now := time.Now().Unix()
	for _, s := range d.Subs {
		if s.ChannelID != channelID {
			continue
		}
		d.Notifications[s.SubscriberID] = append(d.Notifications[s.SubscriberID], &models.Notification{
			ID:      shortID(),
			Type:    models.NotifNewVideo,
			VideoID: videoID,
			From:    channelID,
			Message: message,
			Created: now,
		})
	}
}

// notify queues a single notification.
func notify(d *models.Document, to, notifType, videoID, from, message string) {
	d.Notifications[to] = append(d.Notifications[to], &models.Notification{
		ID:      shortID(),
		Type:    notifType,
		VideoID: videoID,
		From:    from,
		Message: message,
		Created: time.Now().Unix(),
	})
}

// appendHistory moves a video to the front of the user's watch
// history, deduplicated, capped at 100 entries.
func appendHistory(d *models.Document, userID, videoID string, now time.Time) {
	hist := d.History[userID]
	kept := make([]*models.HistoryEntry, 0, len(hist)+1)
	kept = append(kept, &models.HistoryEntry{VideoID: videoID, Time: now.Unix()})
	for _, h := range hist {
		if h.VideoID != videoID {
			kept = append(kept, h)
		}
	}
	if len(kept) > 100 {
		kept = kept[:100]
	}
	d.History[userID] = kept
}

// recordWatch updates the viewer's behavior profile with one watch.
func recordWatch(d *models.Document, userID string, duration float64, now time.Time) {
	p := d.Behavior[userID]
	if p == nil {
		p = &models.BehaviorProfile{}
		d.Behavior[userID] = p
	}
	if models.ClassifyShort(duration) {
		p.ShortWatches++
	} else {
		p.LongWatches++
	}
	p.WatchTimes = append(p.WatchTimes, models.WatchSample{Time: now.Unix(), Duration: duration})
	if len(p.WatchTimes) > 100 {
		p.WatchTimes = p.WatchTimes[len(p.WatchTimes)-100:]
	}
	p.LastActive = now.Unix()
}

// LikeRequest toggles a like or dislike on a video.
type LikeRequest struct {
	VideoID string `json:"video_id" validate:"required"`
	Value   int    `json:"value" validate:"oneof=-1 1"`
}

type likeResponse struct {
	LikeCount    int `json:"like_count"`
	DislikeCount int `json:"dislike_count"`
	UserLiked    int `json:"user_liked"`
}

// HandleLike toggles the caller's like state on a video: same value
// removes it, the opposite value flips it.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req LikeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var resp likeResponse
	err := h.store.Update(func(d *models.Document) error {
		if _, ok := d.Videos[req.VideoID]; !ok {
			return errNotFound
		}
		var existingID string
		for id, l := range d.Likes {
			if l.UserID == u.ID && l.VideoID == req.VideoID {
				existingID = id
				break
			}
		}
		final := req.Value
		switch {
		case existingID != "" && d.Likes[existingID].Value == req.Value:
			delete(d.Likes, existingID)
			final = 0
		case existingID != "":
			d.Likes[existingID].Value = req.Value
		default:
			d.Likes[shortID()] = &models.Like{UserID: u.ID, VideoID: req.VideoID, Value: req.Value}
		}
		resp = likeResponse{
			LikeCount:    query.LikeCount(d, req.VideoID, 1),
			DislikeCount: query.LikeCount(d, req.VideoID, -1),
			UserLiked:    final,
		}
		return nil
	})
	if !h.respondStoreErr(w, err, "Video not found") {
		return
	}
	respondData(w, http.StatusOK, resp)
}

// CommentRequest posts a comment or (with ParentID) a reply.
type CommentRequest struct {
	VideoID  string `json:"video_id" validate:"required"`
	Text     string `json:"text" validate:"required,max=2000"`
	ParentID string `json:"parent_id"`
}

// HandleComment adds a comment to a video. The video owner is
// notified of top-level comments, the parent author of replies.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var created *models.CommentView
	err := h.store.Update(func(d *models.Document) error {
		v, ok := d.Videos[req.VideoID]
		if !ok {
			return errNotFound
		}
		if req.ParentID != "" {
			parent, ok := d.Comments[req.ParentID]
			if !ok || parent.VideoID != req.VideoID {
				return errNotFound
			}
		}
		cid := d.NextID(models.CounterComment)
		c := &models.Comment{
			ID:       cid,
			VideoID:  req.VideoID,
			AuthorID: u.ID,
			Text:     req.Text,
			Created:  time.Now().Unix(),
			ParentID: req.ParentID,
		}
		d.Comments[cid] = c

		if req.ParentID != "" {
			if parent := d.Comments[req.ParentID]; parent.AuthorID != u.ID {
				notify(d, parent.AuthorID, models.NotifReply, req.VideoID, u.ID, "New reply to your comment")
			}
		} else if v.OwnerID != u.ID {
			notify(d, v.OwnerID, models.NotifComment, req.VideoID, u.ID, "New comment on your video")
		}
		created = query.EnrichComment(d, c, u.ID)
		return nil
	})
	if !h.respondStoreErr(w, err, "Video or parent comment not found") {
		return
	}
	respondData(w, http.StatusCreated, created)
}

// HandleGetComments lists a video's comments, pinned first, replies
// nested.
func (h *Handler) HandleGetComments(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	viewerID := ""
	if u := auth.UserFrom(r.Context()); u != nil {
		viewerID = u.ID
	}
	var comments []*models.CommentView
	h.store.View(func(d *models.Document) error {
		comments = query.CommentsForVideo(d, videoID, viewerID)
		return nil
	})
	if comments == nil {
		comments = []*models.CommentView{}
	}
	respondData(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// DeleteCommentRequest names the comment to delete.
type DeleteCommentRequest struct {
	CommentID string `json:"comment_id" validate:"required"`
}

// HandleDeleteComment removes a comment. Allowed for the comment
// author, the video owner and admins; replies go with their parent.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req DeleteCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.store.Update(func(d *models.Document) error {
		c, ok := d.Comments[req.CommentID]
		if !ok {
			return errNotFound
		}
		videoOwner := ""
		if v, ok := d.Videos[c.VideoID]; ok {
			videoOwner = v.OwnerID
		}
		if c.AuthorID != u.ID && videoOwner != u.ID && !u.IsAdmin {
			return errForbidden
		}
		delete(d.Comments, req.CommentID)
		for id, cc := range d.Comments {
			if cc.ParentID == req.CommentID {
				delete(d.Comments, id)
			}
		}
		return nil
	})
	if !h.respondStoreErr(w, err, "Comment not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// CommentLikeRequest toggles a like on a comment.
type CommentLikeRequest struct {
	CommentID string `json:"comment_id" validate:"required"`
}

// HandleCommentLike toggles the caller's like on a comment.
func (h *Handler) HandleCommentLike(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req CommentLikeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var (
		liked bool
		count int
	)
	err := h.store.Update(func(d *models.Document) error {
		if _, ok := d.Comments[req.CommentID]; !ok {
			return errNotFound
		}
		key := u.ID + "_" + req.CommentID
		if _, ok := d.CommentLikes[key]; ok {
			delete(d.CommentLikes, key)
		} else {
			d.CommentLikes[key] = &models.CommentLike{UserID: u.ID, CommentID: req.CommentID, Created: time.Now().Unix()}
			liked = true
		}
		count = query.CommentLikeCount(d, req.CommentID)
		return nil
	})
	if !h.respondStoreErr(w, err, "Comment not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"liked": liked, "count": count})
}

// PinCommentRequest toggles the pin on a comment.
type PinCommentRequest struct {
	CommentID string `json:"comment_id" validate:"required"`
}

// HandlePinComment toggles a comment's pinned flag. Only the video
// owner may pin, and pinning unpins every other comment on the video.
func (h *Handler) HandlePinComment(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req PinCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var pinned bool
	err := h.store.Update(func(d *models.Document) error {
		c, ok := d.Comments[req.CommentID]
		if !ok {
			return errNotFound
		}
		v, ok := d.Videos[c.VideoID]
		if !ok || v.OwnerID != u.ID {
			return errForbidden
		}
		wasPinned := c.Pinned
		for _, cc := range d.Comments {
			if cc.VideoID == c.VideoID {
				cc.Pinned = false
			}
		}
		c.Pinned = !wasPinned
		pinned = c.Pinned
		return nil
	})
	if !h.respondStoreErr(w, err, "Comment not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"ok": true, "pinned": pinned})
}

// SubscribeRequest toggles a subscription to a channel.
type SubscribeRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
}

// HandleSubscribe toggles the caller's subscription to a channel.
// Self-subscription is rejected; new subscriptions notify the channel.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req SubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.ChannelID == u.ID {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Cannot subscribe to yourself", nil)
		return
	}

	var (
		subscribed bool
		count      int
	)
	err := h.store.Update(func(d *models.Document) error {
		if _, ok := d.Users[req.ChannelID]; !ok {
			return errNotFound
		}
		var existingID string
		for id, s := range d.Subs {
			if s.SubscriberID == u.ID && s.ChannelID == req.ChannelID {
				existingID = id
				break
			}
		}
		if existingID != "" {
			delete(d.Subs, existingID)
		} else {
			d.Subs[shortID()] = &models.Subscription{
				SubscriberID: u.ID,
				ChannelID:    req.ChannelID,
				Created:      time.Now().Unix(),
			}
			subscribed = true
			notify(d, req.ChannelID, models.NotifSubscribe, "", u.ID, "New subscriber")
		}
		count = query.SubscriberCount(d, req.ChannelID)
		return nil
	})
	if !h.respondStoreErr(w, err, "Channel not found") {
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"subscribed": subscribed, "count": count})
}

// ReportRequest files a complaint against a video, comment or user.
type ReportRequest struct {
	Type     string `json:"type" validate:"omitempty,oneof=video comment user"`
	TargetID string `json:"target_id" validate:"required"`
	Reason   string `json:"reason" validate:"max=1000"`
}

// HandleReport records a report for admin review.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.Type == "" {
		req.Type = "video"
	}

	h.store.Update(func(d *models.Document) error {
		d.Reports[shortID()] = &models.Report{
			Reporter: u.ID,
			Type:     req.Type,
			Target:   req.TargetID,
			Reason:   req.Reason,
			Created:  time.Now().Unix(),
		}
		return nil
	})
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// BehaviorRequest reports a client-side behavior event.
type BehaviorRequest struct {
	Action string                 `json:"action" validate:"required,oneof=session_start video_watch afk active"`
	Data   map[string]interface{} `json:"data"`
}

// HandleBehavior ingests behavior events feeding the recommendation
// profile.
func (h *Handler) HandleBehavior(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var req BehaviorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	now := time.Now()
	h.store.Update(func(d *models.Document) error {
		p := d.Behavior[u.ID]
		if p == nil {
			p = &models.BehaviorProfile{}
			d.Behavior[u.ID] = p
		}
		switch req.Action {
		case "video_watch":
			duration, _ := req.Data["duration"].(float64)
			recordWatch(d, u.ID, duration, now)
		case "afk":
			p.AFKCount++
		case "active":
			hour := now.Hour()
			seen := false
			for _, h := range p.PeakHours {
				if h == hour {
					seen = true
					break
				}
			}
			if !seen {
				p.PeakHours = append(p.PeakHours, hour)
			}
		}
		p.LastActive = now.Unix()
		return nil
	})
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}
