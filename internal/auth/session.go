// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/tubelite/tubelite/internal/models"
)

// CookieName is the session cookie set on login and registration.
const CookieName = "session"

// NewToken returns a 64-hex-char session token from crypto/rand.
func NewToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process cannot do anything
		// security-relevant at all.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// Issue creates a session for userID inside the document and returns
// its token.
func Issue(d *models.Document, userID string, now time.Time) string {
	token := NewToken()
	d.Sessions[token] = &models.Session{UserID: userID, Created: now.Unix()}
	return token
}

// Resolve maps a session token to its user. Expired sessions and
// sessions whose user is gone or banned resolve to nothing; stale
// entries are left in place for the maintenance sweep to remove.
func Resolve(d *models.Document, token string, ttl time.Duration, now time.Time) (*models.User, bool) {
	sess, ok := d.Sessions[token]
	if !ok {
		return nil, false
	}
	if now.Unix()-sess.Created > int64(ttl.Seconds()) {
		return nil, false
	}
	u, ok := d.Users[sess.UserID]
	if !ok || u.IsBanned {
		return nil, false
	}
	return u, true
}

// Revoke deletes a single session.
func Revoke(d *models.Document, token string) {
	delete(d.Sessions, token)
}

// RevokeUser deletes every session belonging to userID and returns how
// many were removed. Used on ban and account deletion.
func RevokeUser(d *models.Document, userID string) int {
	n := 0
	for token, sess := range d.Sessions {
		if sess.UserID == userID {
			delete(d.Sessions, token)
			n++
		}
	}
	return n
}

type contextKey struct{}

// WithUser attaches the authenticated user to a request context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFrom returns the authenticated user from the context, or nil for
// anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(contextKey{}).(*models.User)
	return u
}
