// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package query answers read queries over the in-memory document with
// linear scans, and computes the read-time enrichment (author fields,
// like/comment counts, viewer state) that decorated entities carry.
//
// No indexes are maintained: every aggregate is recomputed per request
// by scanning the relevant collection. That is O(collection) per
// enriched record, which is fine at the scale a single JSON document
// can reach anyway. Map iteration is made deterministic by walking
// lexically sorted keys; combined with stable sorts this fixes the
// tie-break order for records with equal sort keys (identifiers are
// numeric strings compared lexically, a historical quirk kept as is).
package query

import (
	"sort"

	"github.com/tubelite/tubelite/internal/models"
)

// sortedKeys returns map keys in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Videos returns videos matching pred, in lexical id order.
func Videos(d *models.Document, pred func(*models.Video) bool) []*models.Video {
	var out []*models.Video
	for _, id := range sortedKeys(d.Videos) {
		v := d.Videos[id]
		if pred == nil || pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// Visible reports whether a video appears in public listings.
func Visible(v *models.Video) bool {
	return !v.Hidden
}

// LikeCount counts likes on a video with the given value (+1 or -1).
func LikeCount(d *models.Document, videoID string, value int) int {
	n := 0
	for _, l := range d.Likes {
		if l.VideoID == videoID && l.Value == value {
			n++
		}
	}
	return n
}

// UserLikeValue returns the viewer's like value on a video, 0 if none.
func UserLikeValue(d *models.Document, userID, videoID string) int {
	for _, l := range d.Likes {
		if l.UserID == userID && l.VideoID == videoID {
			return l.Value
		}
	}
	return 0
}

// CommentCount counts all comments (including replies) on a video.
func CommentCount(d *models.Document, videoID string) int {
	n := 0
	for _, c := range d.Comments {
		if c.VideoID == videoID {
			n++
		}
	}
	return n
}

// CommentLikeCount counts likes on a comment.
func CommentLikeCount(d *models.Document, commentID string) int {
	n := 0
	for _, cl := range d.CommentLikes {
		if cl.CommentID == commentID {
			n++
		}
	}
	return n
}

// UserLikedComment reports whether the viewer liked a comment.
func UserLikedComment(d *models.Document, userID, commentID string) bool {
	if userID == "" {
		return false
	}
	_, ok := d.CommentLikes[userID+"_"+commentID]
	return ok
}

// SubscriberCount counts subscriptions to a channel.
func SubscriberCount(d *models.Document, channelID string) int {
	n := 0
	for _, s := range d.Subs {
		if s.ChannelID == channelID {
			n++
		}
	}
	return n
}

// IsSubscribed reports whether subscriber follows channel.
func IsSubscribed(d *models.Document, subscriberID, channelID string) bool {
	if subscriberID == "" {
		return false
	}
	for _, s := range d.Subs {
		if s.SubscriberID == subscriberID && s.ChannelID == channelID {
			return true
		}
	}
	return false
}

// VideoCountFor counts a user's videos, optionally skipping hidden ones.
func VideoCountFor(d *models.Document, userID string, includeHidden bool) int {
	n := 0
	for _, v := range d.Videos {
		if v.OwnerID == userID && (includeHidden || !v.Hidden) {
			n++
		}
	}
	return n
}

// UnreadCount counts a user's unread notifications.
func UnreadCount(d *models.Document, userID string) int {
	n := 0
	for _, notif := range d.Notifications[userID] {
		if !notif.Read {
			n++
		}
	}
	return n
}

// EnrichVideo builds the list-page view of a video: a copy of the record
// decorated with author display fields and aggregate counts.
func EnrichVideo(d *models.Document, v *models.Video) *models.VideoView {
	view := &models.VideoView{
		Video:             *v,
		LikeCount:         LikeCount(d, v.ID, 1),
		DislikeCount:      LikeCount(d, v.ID, -1),
		CommentCount:      CommentCount(d, v.ID),
		FormattedDuration: models.FormatDuration(v.Duration),
	}
	if author, ok := d.Users[v.OwnerID]; ok {
		view.AuthorName = author.DisplayName
		view.AuthorAvatar = author.Avatar
		view.AuthorVerified = author.IsVerified
		view.AuthorUsername = author.Username
	} else {
		view.AuthorName = "?"
	}
	return view
}

// EnrichVideos enriches a slice of videos in order.
func EnrichVideos(d *models.Document, vs []*models.Video) []*models.VideoView {
	views := make([]*models.VideoView, len(vs))
	for i, v := range vs {
		views[i] = EnrichVideo(d, v)
	}
	return views
}

// EnrichVideoDetail builds the watch-page view: list enrichment plus
// channel subscriber count, the viewer's like/subscription state, and
// the top related videos by view count.
func EnrichVideoDetail(d *models.Document, v *models.Video, viewerID string) *models.VideoView {
	view := EnrichVideo(d, v)
	view.ChannelSubs = SubscriberCount(d, v.OwnerID)
	if viewerID != "" {
		view.UserLiked = UserLikeValue(d, viewerID, v.ID)
		view.UserSubscribed = IsSubscribed(d, viewerID, v.OwnerID)
	}
	view.Related = Related(d, v.ID, 10)
	return view
}

// Related returns the most-viewed visible videos other than videoID.
func Related(d *models.Document, videoID string, limit int) []*models.VideoView {
	rel := Videos(d, func(v *models.Video) bool {
		return v.ID != videoID && Visible(v)
	})
	sort.SliceStable(rel, func(i, j int) bool { return rel[i].Views > rel[j].Views })
	if len(rel) > limit {
		rel = rel[:limit]
	}
	return EnrichVideos(d, rel)
}

// EnrichComment builds the view of a single comment.
func EnrichComment(d *models.Document, c *models.Comment, viewerID string) *models.CommentView {
	view := &models.CommentView{
		Comment:   *c,
		LikeCount: CommentLikeCount(d, c.ID),
		UserLiked: UserLikedComment(d, viewerID, c.ID),
	}
	if author, ok := d.Users[c.AuthorID]; ok {
		view.AuthorName = author.DisplayName
		view.AuthorAvatar = author.Avatar
		view.AuthorVerified = author.IsVerified
	} else {
		view.AuthorName = "?"
	}
	return view
}

// CommentsForVideo returns top-level comments for a video with replies
// nested oldest-first. The pinned comment (at most one) sorts first;
// the rest are newest-first.
func CommentsForVideo(d *models.Document, videoID, viewerID string) []*models.CommentView {
	var top []*models.CommentView
	for _, id := range sortedKeys(d.Comments) {
		c := d.Comments[id]
		if c.VideoID != videoID || c.ParentID != "" {
			continue
		}
		view := EnrichComment(d, c, viewerID)
		for _, rid := range sortedKeys(d.Comments) {
			r := d.Comments[rid]
			if r.ParentID == c.ID {
				view.Replies = append(view.Replies, EnrichComment(d, r, viewerID))
			}
		}
		sort.SliceStable(view.Replies, func(i, j int) bool {
			return view.Replies[i].Created < view.Replies[j].Created
		})
		top = append(top, view)
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Pinned != top[j].Pinned {
			return top[i].Pinned
		}
		return top[i].Created > top[j].Created
	})
	return top
}

// ChannelViewFor builds a user's public profile with channel aggregates
// and the viewer's subscription state.
func ChannelViewFor(d *models.Document, u *models.User, viewerID string) *models.ChannelView {
	view := models.NewChannelView(u)
	view.SubsCount = SubscriberCount(d, u.ID)
	view.VideoCount = VideoCountFor(d, u.ID, false)
	for _, v := range d.Videos {
		if v.OwnerID == u.ID {
			view.TotalViews += v.Views
		}
	}
	if viewerID != "" {
		view.IsSubscribed = IsSubscribed(d, viewerID, u.ID)
	}
	return view
}

// EnrichNotifications returns a user's notifications newest-first,
// capped, with sender display fields attached.
func EnrichNotifications(d *models.Document, userID string, limit int) []*models.NotificationView {
	notifs := d.Notifications[userID]
	views := make([]*models.NotificationView, 0, len(notifs))
	for _, n := range notifs {
		view := &models.NotificationView{Notification: *n, FromName: "System"}
		if from, ok := d.Users[n.From]; ok {
			view.FromName = from.DisplayName
			view.FromAvatar = from.Avatar
		}
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Created > views[j].Created })
	if len(views) > limit {
		views = views[:limit]
	}
	return views
}

// SortVideos orders enriched videos by the named sort: "popular" by
// views, "liked" by like count, anything else newest-first. Sorting is
// stable, so equal keys keep the deterministic lexical-id input order.
func SortVideos(views []*models.VideoView, sortBy string) {
	switch sortBy {
	case "popular":
		sort.SliceStable(views, func(i, j int) bool { return views[i].Views > views[j].Views })
	case "liked":
		sort.SliceStable(views, func(i, j int) bool { return views[i].LikeCount > views[j].LikeCount })
	default:
		sort.SliceStable(views, func(i, j int) bool { return views[i].Created > views[j].Created })
	}
}

// Paginate slices a 1-based page out of views. Returns the page and the
// total count before slicing.
func Paginate(views []*models.VideoView, page, perPage int) ([]*models.VideoView, int) {
	total := len(views)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	start := (page - 1) * perPage
	if start >= total {
		return []*models.VideoView{}, total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return views[start:end], total
}
