// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package api implements the HTTP surface: auth, videos, social
// actions, discovery, playlists, profiles, media delivery and the
// admin operations. Handlers read and mutate state exclusively through
// the document store, so every response reflects a consistent snapshot.
package api

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/backup"
	"github.com/tubelite/tubelite/internal/config"
	"github.com/tubelite/tubelite/internal/maintenance"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/store"
)

// viewDedupWindow is how long one client fingerprint counts at most
// one view per video.
const viewDedupWindow = 300 * time.Second

// Handler carries the dependencies shared by all endpoint handlers.
type Handler struct {
	store      *store.Store
	paths      media.Paths
	prober     *media.Prober
	transcoder *media.Transcoder
	scanner    *maintenance.Scanner
	monitor    *maintenance.Monitor
	backups    *backup.Manager
	cfg        *config.Config
}

// New creates the API handler set.
func New(
	st *store.Store,
	paths media.Paths,
	prober *media.Prober,
	transcoder *media.Transcoder,
	scanner *maintenance.Scanner,
	monitor *maintenance.Monitor,
	backups *backup.Manager,
	cfg *config.Config,
) *Handler {
	return &Handler{
		store:      st,
		paths:      paths,
		prober:     prober,
		transcoder: transcoder,
		scanner:    scanner,
		monitor:    monitor,
		backups:    backups,
		cfg:        cfg,
	}
}

// rng returns a fresh rand source; math/rand sources are not safe for
// concurrent use, so shuffles get their own.
func (h *Handler) rng() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// withUser resolves the session cookie and, when valid, attaches the
// user to the request context. Anonymous requests pass through.
func (h *Handler) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		var user *models.User
		h.store.View(func(d *models.Document) error {
			if u, ok := auth.Resolve(d, cookie.Value, h.cfg.Auth.SessionTTL, time.Now()); ok {
				copied := *u
				user = &copied
			}
			return nil
		})
		if user != nil {
			r = r.WithContext(auth.WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects anonymous requests.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFrom(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects requests from non-admin accounts.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFrom(r.Context())
		if u == nil {
			respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
			return
		}
		if !u.IsAdmin {
			respondError(w, http.StatusForbidden, ErrCodeForbidden, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// maintenanceGate returns 503 for all requests while maintenance mode
// is on, except for admins, who still need the API to turn it off.
func (h *Handler) maintenanceGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var enabled bool
		h.store.View(func(d *models.Document) error {
			enabled = d.Settings.Maintenance
			return nil
		})
		if enabled {
			if u := auth.UserFrom(r.Context()); u == nil || !u.IsAdmin {
				respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Server is under maintenance", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
