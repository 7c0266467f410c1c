// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package query

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/tubelite/tubelite/internal/models"
)

const (
	searchWeightTitle = 10
	searchWeightDesc  = 5
	searchWeightTag   = 7
	searchLimit       = 30

	trendingLimit  = 20
	recommendLimit = 20
	shortsLimit    = 20
	feedLimit      = 30

	// Multiplier applied to videos matching the viewer's short/long
	// format preference.
	affinityBoost = 1.5
)

// Search scores visible videos against a case-insensitive query:
// title match 10, description 5, per-tag 7. Zero-score videos are
// dropped and the top 30 are returned with their scores attached.
func Search(d *models.Document, q string) []*models.VideoView {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []*models.VideoView{}
	}
	type scored struct {
		v     *models.Video
		score int
	}
	var hits []scored
	for _, id := range sortedKeys(d.Videos) {
		v := d.Videos[id]
		if !Visible(v) {
			continue
		}
		score := 0
		if strings.Contains(strings.ToLower(v.Title), q) {
			score += searchWeightTitle
		}
		if strings.Contains(strings.ToLower(v.Description), q) {
			score += searchWeightDesc
		}
		for _, tag := range v.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				score += searchWeightTag
			}
		}
		if score > 0 {
			hits = append(hits, scored{v, score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > searchLimit {
		hits = hits[:searchLimit]
	}
	views := make([]*models.VideoView, len(hits))
	for i, h := range hits {
		views[i] = EnrichVideo(d, h.v)
		views[i].SearchScore = h.score
	}
	return views
}

// Trending ranks visible videos by engagement velocity:
// (views + 3*likes + 2*comments) / age in hours, age floored at one
// hour so fresh videos are not divided by near-zero.
func Trending(d *models.Document, now time.Time) []*models.VideoView {
	type scored struct {
		view  *models.VideoView
		score float64
	}
	var ranked []scored
	for _, id := range sortedKeys(d.Videos) {
		v := d.Videos[id]
		if !Visible(v) {
			continue
		}
		view := EnrichVideo(d, v)
		ageHours := float64(now.Unix()-v.Created) / 3600
		if ageHours < 1 {
			ageHours = 1
		}
		score := (float64(v.Views) + 3*float64(view.LikeCount) + 2*float64(view.CommentCount)) / ageHours
		view.TrendScore = score
		ranked = append(ranked, scored{view, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > trendingLimit {
		ranked = ranked[:trendingLimit]
	}
	views := make([]*models.VideoView, len(ranked))
	for i, r := range ranked {
		views[i] = r.view
	}
	return views
}

// Recommend ranks videos for a user by views + 2*likes, boosting the
// format (short or long) the user's watch behavior prefers. Without a
// recorded behavior profile there is nothing to personalize, so the
// result is empty and callers fall back to another surface.
func Recommend(d *models.Document, userID string) []*models.VideoView {
	profile, ok := d.Behavior[userID]
	if !ok {
		return []*models.VideoView{}
	}
	prefersShort := profile.PrefersShort()

	type scored struct {
		view  *models.VideoView
		score float64
	}
	var ranked []scored
	for _, id := range sortedKeys(d.Videos) {
		v := d.Videos[id]
		if !Visible(v) || v.OwnerID == userID {
			continue
		}
		view := EnrichVideo(d, v)
		score := float64(v.Views) + 2*float64(view.LikeCount)
		if v.IsShort == prefersShort {
			score *= affinityBoost
		}
		ranked = append(ranked, scored{view, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > recommendLimit {
		ranked = ranked[:recommendLimit]
	}
	views := make([]*models.VideoView, len(ranked))
	for i, r := range ranked {
		views[i] = r.view
	}
	return views
}

// Feed returns the newest videos from channels the user subscribes to.
func Feed(d *models.Document, userID string) []*models.VideoView {
	channels := make(map[string]bool)
	for _, s := range d.Subs {
		if s.SubscriberID == userID {
			channels[s.ChannelID] = true
		}
	}
	vids := Videos(d, func(v *models.Video) bool {
		return Visible(v) && channels[v.OwnerID]
	})
	views := EnrichVideos(d, vids)
	SortVideos(views, "newest")
	if len(views) > feedLimit {
		views = views[:feedLimit]
	}
	return views
}

// Shorts returns up to 20 visible short-form videos in random order.
func Shorts(d *models.Document, rng *rand.Rand) []*models.VideoView {
	shorts := Videos(d, func(v *models.Video) bool {
		return Visible(v) && v.IsShort
	})
	rng.Shuffle(len(shorts), func(i, j int) { shorts[i], shorts[j] = shorts[j], shorts[i] })
	if len(shorts) > shortsLimit {
		shorts = shorts[:shortsLimit]
	}
	return EnrichVideos(d, shorts)
}

// CreatorAnalytics aggregates a creator's channel performance.
type CreatorAnalytics struct {
	TotalViews    int64               `json:"total_views"`
	TotalLikes    int                 `json:"total_likes"`
	TotalComments int                 `json:"total_comments"`
	VideoCount    int                 `json:"video_count"`
	Subscribers   int                 `json:"subscribers"`
	TopVideos     []*models.VideoView `json:"top_videos"`
}

// Analytics computes channel totals and the creator's five most-viewed
// videos, hidden ones included since the creator sees their own.
func Analytics(d *models.Document, userID string) *CreatorAnalytics {
	a := &CreatorAnalytics{Subscribers: SubscriberCount(d, userID)}
	own := Videos(d, func(v *models.Video) bool { return v.OwnerID == userID })
	a.VideoCount = len(own)
	views := EnrichVideos(d, own)
	for _, view := range views {
		a.TotalViews += view.Views
		a.TotalLikes += view.LikeCount
		a.TotalComments += view.CommentCount
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Views > views[j].Views })
	if len(views) > 5 {
		views = views[:5]
	}
	a.TopVideos = views
	return a
}
