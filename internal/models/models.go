// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package models defines the persisted entity types and the API response
// envelope. Every entity lives inside the single Document that the store
// persists as one JSON file; field tags therefore double as the on-disk
// schema and must stay stable across releases.
package models

import "fmt"

// User is a registered account. The first account ever registered becomes
// an admin automatically.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	DisplayName  string `json:"display_name"`
	Avatar       string `json:"avatar"`
	Banner       string `json:"banner,omitempty"`
	Bio          string `json:"bio"`
	Created      int64  `json:"created"`
	IsAdmin      bool   `json:"is_admin"`
	IsBanned     bool   `json:"is_banned"`
	IsVerified   bool   `json:"is_verified"`
}

// Video is an uploaded or auto-imported video. Duration is in seconds;
// a video under 60 seconds is classified as a short.
type Video struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"uid"`
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Thumb       string   `json:"thumb"`
	Views       int64    `json:"views"`
	Created     int64    `json:"created"`
	SizeMB      float64  `json:"size_mb"`
	Hidden      bool     `json:"hidden"`
	Duration    float64  `json:"duration"`
	IsShort     bool     `json:"is_short"`
	Shares      int64    `json:"shares"`
	AutoSource  string   `json:"auto_source,omitempty"`
	Qualities   []string `json:"qualities"`
	MaxQuality  string   `json:"max_quality,omitempty"`
}

// ShortThresholdSeconds separates shorts from regular videos.
const ShortThresholdSeconds = 60

// ClassifyShort reports whether a known duration falls under the short
// threshold. Unknown durations (zero) never classify as short.
func ClassifyShort(duration float64) bool {
	return duration > 0 && duration < ShortThresholdSeconds
}

// FormatDuration renders seconds as M:SS or H:MM:SS for display.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	s := int(seconds)
	h, m, sec := s/3600, (s%3600)/60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Comment is a comment or a one-level reply (ParentID set). At most one
// comment per video may be pinned.
type Comment struct {
	ID       string `json:"id"`
	VideoID  string `json:"vid"`
	AuthorID string `json:"uid"`
	Text     string `json:"text"`
	Created  int64  `json:"cr"`
	ParentID string `json:"parent_id,omitempty"`
	Pinned   bool   `json:"pinned,omitempty"`
}

// Like is a +1/-1 vote on a video. Conceptually keyed by (user, video);
// the map key in the document is a random short id.
type Like struct {
	UserID  string `json:"uid"`
	VideoID string `json:"vid"`
	Value   int    `json:"val"`
}

// CommentLike marks a comment as liked by a user. Keyed "<uid>_<cid>" in
// the document, so presence alone means "liked".
type CommentLike struct {
	UserID    string `json:"uid"`
	CommentID string `json:"cid"`
	Created   int64  `json:"cr"`
}

// Subscription links a subscriber to a channel (another user).
type Subscription struct {
	SubscriberID string `json:"sub"`
	ChannelID    string `json:"ch"`
	Created      int64  `json:"cr"`
}

// Notification is delivered to a single recipient; listing notifications
// marks them read.
type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	VideoID string `json:"vid,omitempty"`
	From    string `json:"from"`
	Message string `json:"msg"`
	Created int64  `json:"cr"`
	Read    bool   `json:"read"`
}

// Notification types.
const (
	NotifNewVideo  = "new_video"
	NotifComment   = "comment"
	NotifReply     = "reply"
	NotifSubscribe = "subscribe"
	NotifSystem    = "system"
)

// Session maps an opaque token (the map key) to a user.
type Session struct {
	UserID  string `json:"uid"`
	Created int64  `json:"cr"`
}

// HistoryEntry records one watched video in a user's history list.
type HistoryEntry struct {
	VideoID string `json:"v"`
	Time    int64  `json:"t"`
}

// Playlist is an ordered, optionally public list of video ids.
type Playlist struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"uid"`
	Name        string   `json:"name"`
	Description string   `json:"desc"`
	Videos      []string `json:"videos"`
	Created     int64    `json:"created"`
	Public      bool     `json:"public"`
}

// Report is a user complaint against a video, comment or user.
type Report struct {
	Reporter string `json:"reporter"`
	Type     string `json:"type"`
	Target   string `json:"target"`
	Reason   string `json:"reason"`
	Created  int64  `json:"cr"`
	Resolved bool   `json:"resolved"`
}

// WatchSample is one recorded watch duration for behavior tracking.
type WatchSample struct {
	Time     int64   `json:"time"`
	Duration float64 `json:"duration"`
}

// BehaviorProfile holds per-user counters feeding the recommendation
// heuristic. WatchTimes is capped at 100 samples.
type BehaviorProfile struct {
	ShortWatches int           `json:"short_watches"`
	LongWatches  int           `json:"long_watches"`
	WatchTimes   []WatchSample `json:"watch_times"`
	LastActive   int64         `json:"last_active"`
	AFKCount     int           `json:"afk_count"`
	PeakHours    []int         `json:"peak_hours"`
}

// PrefersShort reports whether the user's history skews toward shorts.
func (p *BehaviorProfile) PrefersShort() bool {
	return p.ShortWatches > p.LongWatches
}

// Settings is the process-wide mutable configuration stored inside the
// document (distinct from the immutable boot configuration).
type Settings struct {
	RegistrationEnabled bool `json:"reg"`
	MaxUploadMB         int  `json:"max_mb"`
	Maintenance         bool `json:"maint"`
}

// ServerHealth records the outcome of the last health check and fix run.
type ServerHealth struct {
	LastCheck int64    `json:"last_check"`
	Issues    []string `json:"issues"`
	Fixes     []string `json:"fixes"`
}
