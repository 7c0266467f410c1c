// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package auth

import (
	"testing"
	"time"

	"github.com/tubelite/tubelite/internal/models"
)

func TestPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2!" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter2!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3!") {
		t.Error("wrong password accepted")
	}
}

func TestNewTokenUnique(t *testing.T) {
	a, b := NewToken(), NewToken()
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("two tokens collided")
	}
}

func TestSessionLifecycle(t *testing.T) {
	d := models.NewDocument()
	d.Users["1"] = &models.User{ID: "1", Username: "alice"}
	now := time.Now()
	ttl := 7 * 24 * time.Hour

	token := Issue(d, "1", now)
	u, ok := Resolve(d, token, ttl, now)
	if !ok || u.ID != "1" {
		t.Fatalf("Resolve = %v/%v, want user 1", u, ok)
	}

	if _, ok := Resolve(d, token, ttl, now.Add(ttl+time.Minute)); ok {
		t.Error("expired session resolved")
	}
	if _, ok := Resolve(d, "bogus", ttl, now); ok {
		t.Error("unknown token resolved")
	}

	d.Users["1"].IsBanned = true
	if _, ok := Resolve(d, token, ttl, now); ok {
		t.Error("banned user's session resolved")
	}
	d.Users["1"].IsBanned = false

	Revoke(d, token)
	if _, ok := Resolve(d, token, ttl, now); ok {
		t.Error("revoked session resolved")
	}
}

func TestRevokeUser(t *testing.T) {
	d := models.NewDocument()
	d.Users["1"] = &models.User{ID: "1"}
	d.Users["2"] = &models.User{ID: "2"}
	Issue(d, "1", time.Now())
	Issue(d, "1", time.Now())
	other := Issue(d, "2", time.Now())

	if n := RevokeUser(d, "1"); n != 2 {
		t.Errorf("RevokeUser removed %d sessions, want 2", n)
	}
	if _, ok := d.Sessions[other]; !ok {
		t.Error("other user's session was removed")
	}
}
