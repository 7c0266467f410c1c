// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

// HandleSearch scores videos against the q parameter and returns the
// top 30 matches.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var videos []*models.VideoView
	h.store.View(func(d *models.Document) error {
		videos = query.Search(d, q)
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// HandleTrending returns the top 20 videos by engagement velocity.
func (h *Handler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	var videos []*models.VideoView
	h.store.View(func(d *models.Document) error {
		videos = query.Trending(d, time.Now())
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// HandleFeed returns the newest uploads from subscribed channels.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var videos []*models.VideoView
	h.store.View(func(d *models.Document) error {
		videos = query.Feed(d, u.ID)
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// HandleRecommendations returns personalized recommendations, empty
// until the user has watch behavior on record.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var videos []*models.VideoView
	h.store.View(func(d *models.Document) error {
		videos = query.Recommend(d, u.ID)
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// HandleHistory returns the user's watch history, most recent first,
// skipping videos that have since been hidden or deleted.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	videos := []*models.VideoView{}
	h.store.View(func(d *models.Document) error {
		for _, entry := range d.History[u.ID] {
			if v, ok := d.Videos[entry.VideoID]; ok && query.Visible(v) {
				videos = append(videos, query.EnrichVideo(d, v))
			}
		}
		return nil
	})
	respondData(w, http.StatusOK, videoListResponse{Videos: videos})
}

// HandleSubscriptions lists the channels the user subscribes to.
func (h *Handler) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	channels := []*models.ChannelView{}
	h.store.View(func(d *models.Document) error {
		ids := make([]string, 0, len(d.Subs))
		for id := range d.Subs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			s := d.Subs[id]
			if s.SubscriberID != u.ID {
				continue
			}
			if ch, ok := d.Users[s.ChannelID]; ok {
				channels = append(channels, query.ChannelViewFor(d, ch, u.ID))
			}
		}
		return nil
	})
	respondData(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

// HandleNotifications returns the newest 50 notifications and marks
// them all read.
func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var views []*models.NotificationView
	h.store.Update(func(d *models.Document) error {
		for _, n := range d.Notifications[u.ID] {
			n.Read = true
		}
		views = query.EnrichNotifications(d, u.ID, 50)
		return nil
	})
	if views == nil {
		views = []*models.NotificationView{}
	}
	respondData(w, http.StatusOK, map[string]interface{}{"notifications": views})
}

// HandleAnalytics returns the creator dashboard aggregates for the
// authenticated user's channel.
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	var a *query.CreatorAnalytics
	h.store.View(func(d *models.Document) error {
		a = query.Analytics(d, u.ID)
		return nil
	})
	respondData(w, http.StatusOK, a)
}
