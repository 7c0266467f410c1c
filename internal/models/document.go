// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package models

import "strconv"

// Document is the whole persisted state: one JSON blob holding every
// collection. The store serializes all access to it.
type Document struct {
	Counters      map[string]int64            `json:"cnt"`
	Users         map[string]*User            `json:"users"`
	Videos        map[string]*Video           `json:"videos"`
	Comments      map[string]*Comment         `json:"comments"`
	Likes         map[string]*Like            `json:"likes"`
	Subs          map[string]*Subscription    `json:"subs"`
	Sessions      map[string]*Session         `json:"sess"`
	Notifications map[string][]*Notification  `json:"notifs"`
	History       map[string][]*HistoryEntry  `json:"hist"`
	ViewLog       map[string]int64            `json:"vlog"`
	Reports       map[string]*Report          `json:"reports"`
	Settings      Settings                    `json:"settings"`
	Behavior      map[string]*BehaviorProfile `json:"algorithm"`
	Health        ServerHealth                `json:"server_health"`
	Playlists     map[string]*Playlist        `json:"playlists"`
	WatchLater    map[string][]string         `json:"watchlater"`
	CommentLikes  map[string]*CommentLike     `json:"clikes"`
}

// Identifier categories for NextID.
const (
	CounterUser    = "u"
	CounterVideo   = "v"
	CounterComment = "c"
)

// NewDocument returns an empty document with every collection initialized
// and default settings applied.
func NewDocument() *Document {
	d := &Document{
		Settings: Settings{
			RegistrationEnabled: true,
			MaxUploadMB:         500,
		},
	}
	d.EnsureCollections()
	return d
}

// EnsureCollections backfills nil collections after unmarshalling an older
// or partial document. Schema migration by union: keys never present in
// the loaded file get their empty default, existing data is untouched.
func (d *Document) EnsureCollections() {
	if d.Counters == nil {
		d.Counters = map[string]int64{CounterUser: 0, CounterVideo: 0, CounterComment: 0}
	}
	if d.Users == nil {
		d.Users = map[string]*User{}
	}
	if d.Videos == nil {
		d.Videos = map[string]*Video{}
	}
	if d.Comments == nil {
		d.Comments = map[string]*Comment{}
	}
	if d.Likes == nil {
		d.Likes = map[string]*Like{}
	}
	if d.Subs == nil {
		d.Subs = map[string]*Subscription{}
	}
	if d.Sessions == nil {
		d.Sessions = map[string]*Session{}
	}
	if d.Notifications == nil {
		d.Notifications = map[string][]*Notification{}
	}
	if d.History == nil {
		d.History = map[string][]*HistoryEntry{}
	}
	if d.ViewLog == nil {
		d.ViewLog = map[string]int64{}
	}
	if d.Reports == nil {
		d.Reports = map[string]*Report{}
	}
	if d.Behavior == nil {
		d.Behavior = map[string]*BehaviorProfile{}
	}
	if d.Playlists == nil {
		d.Playlists = map[string]*Playlist{}
	}
	if d.WatchLater == nil {
		d.WatchLater = map[string][]string{}
	}
	if d.CommentLikes == nil {
		d.CommentLikes = map[string]*CommentLike{}
	}
}

// NextID increments and returns the per-category counter as a decimal
// string. Identifiers are compared lexically wherever they break sort
// ties, matching the document's historical ordering.
func (d *Document) NextID(category string) string {
	d.Counters[category]++
	return strconv.FormatInt(d.Counters[category], 10)
}
