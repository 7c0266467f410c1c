// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package models

// Read-time views. These are the enriched shapes endpoints return: the
// stored entity plus derived fields recomputed per request by the query
// layer. Nothing here is persisted.

// VideoView is a video decorated with author fields, aggregate counts and
// (on detail pages) the viewer's own like/subscription state.
type VideoView struct {
	Video

	AuthorName     string `json:"author_name"`
	AuthorAvatar   string `json:"author_avatar"`
	AuthorVerified bool   `json:"author_verified"`
	AuthorUsername string `json:"author_username"`

	LikeCount         int    `json:"like_count"`
	DislikeCount      int    `json:"dislike_count"`
	CommentCount      int    `json:"comment_count"`
	FormattedDuration string `json:"formatted_duration"`

	// Detail-page extras.
	ChannelSubs    int          `json:"channel_subs,omitempty"`
	UserLiked      int          `json:"user_liked,omitempty"`
	UserSubscribed bool         `json:"user_subscribed,omitempty"`
	Related        []*VideoView `json:"related,omitempty"`

	// Ranking scores, present only on the endpoints that compute them.
	SearchScore int     `json:"score,omitempty"`
	TrendScore  float64 `json:"trend,omitempty"`
}

// CommentView is a comment decorated with author fields, like state and
// (for top-level comments) its replies oldest-first.
type CommentView struct {
	Comment

	AuthorName     string         `json:"author_name"`
	AuthorAvatar   string         `json:"author_avatar"`
	AuthorVerified bool           `json:"author_verified"`
	LikeCount      int            `json:"like_count"`
	UserLiked      bool           `json:"user_liked"`
	Replies        []*CommentView `json:"replies,omitempty"`
}

// ChannelView is a user's public profile: the account minus credentials,
// plus channel aggregates.
type ChannelView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Banner      string `json:"banner,omitempty"`
	Bio         string `json:"bio"`
	Created     int64  `json:"created"`
	IsAdmin     bool   `json:"is_admin"`
	IsBanned    bool   `json:"is_banned"`
	IsVerified  bool   `json:"is_verified"`

	SubsCount    int   `json:"subs_count"`
	VideoCount   int   `json:"vid_count"`
	TotalViews   int64 `json:"total_views,omitempty"`
	IsSubscribed bool  `json:"is_subscribed,omitempty"`
	Unread       int   `json:"unread,omitempty"`
}

// NewChannelView copies the public fields of a user. Aggregates are
// filled in by the query layer.
func NewChannelView(u *User) *ChannelView {
	return &ChannelView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Banner:      u.Banner,
		Bio:         u.Bio,
		Created:     u.Created,
		IsAdmin:     u.IsAdmin,
		IsBanned:    u.IsBanned,
		IsVerified:  u.IsVerified,
	}
}

// NotificationView is a notification decorated with sender display fields.
type NotificationView struct {
	Notification

	FromName   string `json:"from_name"`
	FromAvatar string `json:"from_avatar"`
}

// PlaylistSummary is the list-page shape of a playlist.
type PlaylistSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	VideoCount  int    `json:"video_count"`
	OwnerID     string `json:"owner_id"`
	Public      bool   `json:"public"`
	Thumb       string `json:"thumb"`
}

// PlaylistView is a playlist with its visible videos enriched.
type PlaylistView struct {
	Playlist

	OwnerName string       `json:"owner_name"`
	Items     []*VideoView `json:"items"`
}
