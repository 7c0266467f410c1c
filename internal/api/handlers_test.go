// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tubelite/tubelite/internal/backup"
	"github.com/tubelite/tubelite/internal/config"
	"github.com/tubelite/tubelite/internal/maintenance"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/store"
)

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

type testEnv struct {
	handler *Handler
	mux     http.Handler
	store   *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	paths := media.Paths{DataDir: t.TempDir()}
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	st, err := store.Open(paths.Document())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	cfg := config.Default()
	prober := media.NewProber("ffprobe-not-installed", time.Second)
	transcoder := media.NewTranscoder("ffmpeg-not-installed", time.Second, paths)
	scanner := maintenance.NewScanner(st, paths, prober, time.Minute)
	monitor := maintenance.NewMonitor(st, paths)
	backups := backup.NewManager(st, paths.Backups())

	h := New(st, paths, prober, transcoder, scanner, monitor, backups, cfg)
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	return &testEnv{
		handler: h,
		mux:     NewRouter(h, mwCfg).Setup(),
		store:   st,
	}
}

// do issues a request against the route tree. A non-empty cookie is
// attached as the session cookie header.
func (e *testEnv) do(t *testing.T, method, path, cookie string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, rec.Body.String())
	}
	if env.Status != "success" {
		t.Fatalf("status %q, error %+v", env.Status, env.Error)
	}
	if into != nil {
		if err := json.Unmarshal(env.Data, into); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
	}
}

// register creates an account through the API and returns its session
// cookie and channel view.
func (e *testEnv) register(t *testing.T, username string) (string, *models.ChannelView) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"password": "hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	cookie := ""
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			cookie = c.Name + "=" + c.Value
		}
	}
	if cookie == "" {
		t.Fatalf("register %s: no session cookie", username)
	}
	var view models.ChannelView
	decodeData(t, rec, &view)
	return cookie, &view
}

func (e *testEnv) seedVideo(t *testing.T, v *models.Video) {
	t.Helper()
	if err := e.store.Update(func(d *models.Document) error {
		d.Videos[v.ID] = v
		return nil
	}); err != nil {
		t.Fatalf("seeding video: %v", err)
	}
}

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, alice := env.register(t, "alice")
	if !alice.IsAdmin {
		t.Error("first registered user should be admin")
	}
	_, bob := env.register(t, "bob")
	if bob.IsAdmin {
		t.Error("second user should not be admin")
	}

	rec := env.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "ALICE",
		"password": "hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate username (case-insensitive) got status %d, want 409", rec.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "carol")

	rec := env.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "carol",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password login: status %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "Carol",
		"password": "hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	cookie := ""
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			cookie = c.Name + "=" + c.Value
		}
	}

	rec = env.do(t, http.MethodGet, "/api/me", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/me: status %d", rec.Code)
	}
	var me models.ChannelView
	decodeData(t, rec, &me)
	if me.Username != "carol" {
		t.Errorf("me.Username = %q, want carol", me.Username)
	}
}

func TestLikeToggle(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.register(t, "viewer")
	env.seedVideo(t, &models.Video{ID: "v1", OwnerID: "999", Title: "clip"})

	like := func(value int) likeResponse {
		rec := env.do(t, http.MethodPost, "/api/like", cookie, map[string]interface{}{
			"video_id": "v1", "value": value,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("like: status %d body %s", rec.Code, rec.Body.String())
		}
		var resp likeResponse
		decodeData(t, rec, &resp)
		return resp
	}

	if got := like(1); got.LikeCount != 1 || got.UserLiked != 1 {
		t.Fatalf("first like: %+v", got)
	}
	if got := like(1); got.LikeCount != 0 || got.UserLiked != 0 {
		t.Fatalf("same value should remove the like: %+v", got)
	}
	if got := like(-1); got.DislikeCount != 1 || got.UserLiked != -1 {
		t.Fatalf("dislike: %+v", got)
	}
	if got := like(1); got.LikeCount != 1 || got.DislikeCount != 0 || got.UserLiked != 1 {
		t.Fatalf("opposite value should flip: %+v", got)
	}
}

func TestSubscribeToggleAndSelfReject(t *testing.T) {
	env := newTestEnv(t)
	cookie, me := env.register(t, "subscriber")
	_, channel := env.register(t, "creator")

	rec := env.do(t, http.MethodPost, "/api/subscribe", cookie, map[string]string{"channel_id": me.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self-subscribe: status %d, want 400", rec.Code)
	}

	var resp struct {
		Subscribed bool `json:"subscribed"`
		Count      int  `json:"count"`
	}
	rec = env.do(t, http.MethodPost, "/api/subscribe", cookie, map[string]string{"channel_id": channel.ID})
	decodeData(t, rec, &resp)
	if !resp.Subscribed || resp.Count != 1 {
		t.Fatalf("subscribe: %+v", resp)
	}

	rec = env.do(t, http.MethodPost, "/api/subscribe", cookie, map[string]string{"channel_id": channel.ID})
	decodeData(t, rec, &resp)
	if resp.Subscribed || resp.Count != 0 {
		t.Fatalf("unsubscribe toggle: %+v", resp)
	}
}

func TestViewDedup(t *testing.T) {
	env := newTestEnv(t)
	env.seedVideo(t, &models.Video{ID: "v1", OwnerID: "999", Title: "clip"})

	view := func() bool {
		rec := env.do(t, http.MethodPost, "/api/view", "", map[string]string{"video_id": "v1"})
		var resp struct {
			Counted bool `json:"counted"`
		}
		decodeData(t, rec, &resp)
		return resp.Counted
	}

	if !view() {
		t.Fatal("first view should count")
	}
	if view() {
		t.Fatal("second view inside the dedup window should not count")
	}
	env.store.View(func(d *models.Document) error {
		if got := d.Videos["v1"].Views; got != 1 {
			t.Errorf("views = %d, want 1", got)
		}
		return nil
	})
}

func TestMaintenanceGate(t *testing.T) {
	env := newTestEnv(t)
	adminCookie, _ := env.register(t, "root")
	userCookie, _ := env.register(t, "pleb")

	env.store.Update(func(d *models.Document) error {
		d.Settings.Maintenance = true
		return nil
	})

	rec := env.do(t, http.MethodGet, "/api/videos", userCookie, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("non-admin during maintenance: status %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SERVICE_UNAVAILABLE") {
		t.Errorf("missing error code in body %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/videos", adminCookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin during maintenance: status %d, want 200", rec.Code)
	}

	// The admin console stays reachable so maintenance can be disabled.
	rec = env.do(t, http.MethodPost, "/api/admin/settings", adminCookie, map[string]bool{"maint": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("disable maintenance: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, "/api/videos", userCookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("after maintenance off: status %d", rec.Code)
	}
}

func TestAdminAuthz(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "root")
	userCookie, _ := env.register(t, "pleb")

	rec := env.do(t, http.MethodGet, "/api/admin/users", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous admin access: status %d, want 401", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/admin/users", userCookie, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin access: status %d, want 403", rec.Code)
	}
}

func TestPinCommentExclusive(t *testing.T) {
	env := newTestEnv(t)
	cookie, owner := env.register(t, "owner")
	env.seedVideo(t, &models.Video{ID: "v1", OwnerID: owner.ID, Title: "clip"})
	env.store.Update(func(d *models.Document) error {
		d.Comments["c1"] = &models.Comment{ID: "c1", VideoID: "v1", AuthorID: owner.ID, Text: "one"}
		d.Comments["c2"] = &models.Comment{ID: "c2", VideoID: "v1", AuthorID: owner.ID, Text: "two"}
		return nil
	})

	pin := func(id string) {
		rec := env.do(t, http.MethodPost, "/api/comment/pin", cookie, map[string]string{"comment_id": id})
		if rec.Code != http.StatusOK {
			t.Fatalf("pin %s: status %d body %s", id, rec.Code, rec.Body.String())
		}
	}

	pin("c1")
	pin("c2")
	env.store.View(func(d *models.Document) error {
		if d.Comments["c1"].Pinned {
			t.Error("c1 should have been unpinned when c2 was pinned")
		}
		if !d.Comments["c2"].Pinned {
			t.Error("c2 should be pinned")
		}
		return nil
	})

	// Pinning again toggles off.
	pin("c2")
	env.store.View(func(d *models.Document) error {
		if d.Comments["c2"].Pinned {
			t.Error("second pin of c2 should unpin it")
		}
		return nil
	})
}

func TestWatchLaterToggle(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.register(t, "queue")
	env.seedVideo(t, &models.Video{ID: "v1", OwnerID: "999", Title: "clip"})

	var resp struct {
		Added bool `json:"added"`
		Count int  `json:"count"`
	}
	rec := env.do(t, http.MethodPost, "/api/watchlater", cookie, map[string]string{"video_id": "v1"})
	decodeData(t, rec, &resp)
	if !resp.Added || resp.Count != 1 {
		t.Fatalf("add: %+v", resp)
	}
	rec = env.do(t, http.MethodPost, "/api/watchlater", cookie, map[string]string{"video_id": "v1"})
	decodeData(t, rec, &resp)
	if resp.Added || resp.Count != 0 {
		t.Fatalf("toggle remove: %+v", resp)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	adminCookie, admin := env.register(t, "root")
	targetCookie, target := env.register(t, "leaver")

	env.seedVideo(t, &models.Video{ID: "va", OwnerID: admin.ID, Title: "kept"})
	env.seedVideo(t, &models.Video{ID: "vt", OwnerID: target.ID, Title: "doomed"})
	env.store.Update(func(d *models.Document) error {
		// One record of every kind touching the target, plus a comment
		// by someone else on the target's video.
		d.Comments["c1"] = &models.Comment{ID: "c1", VideoID: "va", AuthorID: target.ID, Text: "bye"}
		d.Comments["c2"] = &models.Comment{ID: "c2", VideoID: "vt", AuthorID: admin.ID, Text: "stays?"}
		d.Likes["l1"] = &models.Like{UserID: target.ID, VideoID: "va", Value: 1}
		d.Likes["l2"] = &models.Like{UserID: admin.ID, VideoID: "vt", Value: 1}
		d.CommentLikes[target.ID+"_c2"] = &models.CommentLike{UserID: target.ID, CommentID: "c2"}
		d.Subs["s1"] = &models.Subscription{SubscriberID: target.ID, ChannelID: admin.ID}
		d.Subs["s2"] = &models.Subscription{SubscriberID: admin.ID, ChannelID: target.ID}
		d.Playlists["p1"] = &models.Playlist{ID: "p1", OwnerID: target.ID, Name: "mine", Videos: []string{"va"}}
		d.WatchLater[target.ID] = []string{"va"}
		d.Notifications[target.ID] = []*models.Notification{{ID: "n1", Type: models.NotifSystem}}
		d.History[target.ID] = []*models.HistoryEntry{{VideoID: "va"}}
		d.Behavior[target.ID] = &models.BehaviorProfile{LongWatches: 1}
		return nil
	})

	rec := env.do(t, http.MethodPost, "/api/admin/delete-user", adminCookie, map[string]string{"user_id": target.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete-user: status %d body %s", rec.Code, rec.Body.String())
	}

	env.store.View(func(d *models.Document) error {
		if _, ok := d.Users[target.ID]; ok {
			t.Error("user record still present")
		}
		if _, ok := d.Videos["vt"]; ok {
			t.Error("target's video still present")
		}
		if _, ok := d.Videos["va"]; !ok {
			t.Error("unrelated video was removed")
		}
		for id, c := range d.Comments {
			if c.AuthorID == target.ID {
				t.Errorf("comment %s by deleted user still present", id)
			}
			if c.VideoID == "vt" {
				t.Errorf("comment %s on deleted video still present", id)
			}
		}
		for id, l := range d.Likes {
			if l.UserID == target.ID || l.VideoID == "vt" {
				t.Errorf("like %s touching deleted user still present", id)
			}
		}
		for key, cl := range d.CommentLikes {
			if cl.UserID == target.ID {
				t.Errorf("comment like %s by deleted user still present", key)
			}
		}
		for id, s := range d.Subs {
			if s.SubscriberID == target.ID || s.ChannelID == target.ID {
				t.Errorf("subscription %s touching deleted user still present", id)
			}
		}
		for id, pl := range d.Playlists {
			if pl.OwnerID == target.ID {
				t.Errorf("playlist %s owned by deleted user still present", id)
			}
		}
		if _, ok := d.WatchLater[target.ID]; ok {
			t.Error("watch-later queue still present")
		}
		if _, ok := d.Notifications[target.ID]; ok {
			t.Error("notifications still present")
		}
		if _, ok := d.History[target.ID]; ok {
			t.Error("history still present")
		}
		if _, ok := d.Behavior[target.ID]; ok {
			t.Error("behavior profile still present")
		}
		for tok, s := range d.Sessions {
			if s.UserID == target.ID {
				t.Errorf("session %s for deleted user still present", tok)
			}
		}
		return nil
	})

	rec = env.do(t, http.MethodGet, "/api/me", targetCookie, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("deleted user's session still resolves: status %d", rec.Code)
	}
}

func TestConcurrentLikesBothPersist(t *testing.T) {
	env := newTestEnv(t)
	cookieA, _ := env.register(t, "first")
	cookieB, _ := env.register(t, "second")
	env.seedVideo(t, &models.Video{ID: "v1", OwnerID: "999", Title: "clip"})

	body, err := json.Marshal(map[string]interface{}{"video_id": "v1", "value": 1})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, cookie := range []string{cookieA, cookieB} {
		wg.Add(1)
		go func(i int, cookie string) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/like", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Cookie", cookie)
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i, cookie)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("like request %d: status %d", i, code)
		}
	}
	env.store.View(func(d *models.Document) error {
		likes := 0
		for _, l := range d.Likes {
			if l.VideoID == "v1" && l.Value == 1 {
				likes++
			}
		}
		if likes != 2 {
			t.Errorf("like count after concurrent toggles = %d, want 2", likes)
		}
		return nil
	})
}

func TestBanRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	adminCookie, _ := env.register(t, "root")
	userCookie, user := env.register(t, "spammer")

	rec := env.do(t, http.MethodPost, "/api/admin/ban", adminCookie, map[string]string{"user_id": user.ID})
	var resp struct {
		Banned bool `json:"banned"`
	}
	decodeData(t, rec, &resp)
	if !resp.Banned {
		t.Fatal("ban toggle should report banned=true")
	}

	rec = env.do(t, http.MethodGet, "/api/me", userCookie, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("banned user session still valid: status %d", rec.Code)
	}
}
