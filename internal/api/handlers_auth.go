// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tubelite/tubelite/internal/auth"
	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/query"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=4,max=128"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates an account. The first account on the instance
// becomes the admin; usernames are unique case-insensitively.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var (
		token   string
		created *models.ChannelView
	)
	err := h.store.Update(func(d *models.Document) error {
		if !d.Settings.RegistrationEnabled {
			return errRegistration
		}
		lower := strings.ToLower(req.Username)
		for _, u := range d.Users {
			if strings.ToLower(u.Username) == lower {
				return errUsernameTaken
			}
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return err
		}
		uid := d.NextID(models.CounterUser)
		user := &models.User{
			ID:           uid,
			Username:     req.Username,
			PasswordHash: hash,
			DisplayName:  req.Username,
			Created:      time.Now().Unix(),
			IsAdmin:      len(d.Users) == 0,
		}
		d.Users[uid] = user
		token = auth.Issue(d, uid, time.Now())
		created = query.ChannelViewFor(d, user, "")
		return nil
	})
	switch err {
	case nil:
	case errRegistration:
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Registration is disabled", nil)
		return
	case errUsernameTaken:
		respondError(w, http.StatusConflict, ErrCodeConflict, "Username already taken", nil)
		return
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Registration failed", err)
		return
	}

	h.setSessionCookie(w, token)
	logging.Info().Str("username", sanitizeLogValue(req.Username)).Msg("User registered")
	respondData(w, http.StatusCreated, created)
}

// HandleLogin authenticates a user and issues a session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var (
		token string
		view  *models.ChannelView
	)
	err := h.store.Update(func(d *models.Document) error {
		lower := strings.ToLower(strings.TrimSpace(req.Username))
		var user *models.User
		for _, u := range d.Users {
			if strings.ToLower(u.Username) == lower {
				user = u
				break
			}
		}
		if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
			return errBadCredentials
		}
		if user.IsBanned {
			return errBanned
		}
		token = auth.Issue(d, user.ID, time.Now())
		view = query.ChannelViewFor(d, user, "")
		return nil
	})
	switch err {
	case nil:
	case errBadCredentials:
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password", nil)
		return
	case errBanned:
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Account is banned", nil)
		return
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Login failed", err)
		return
	}

	h.setSessionCookie(w, token)
	respondData(w, http.StatusOK, view)
}

// HandleLogout revokes the current session and clears the cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		h.store.Update(func(d *models.Document) error {
			auth.Revoke(d, cookie.Value)
			return nil
		})
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleMe returns the authenticated user's own profile with unread
// notification count.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	me := auth.UserFrom(r.Context())
	var view *models.ChannelView
	h.store.View(func(d *models.Document) error {
		if u, ok := d.Users[me.ID]; ok {
			view = query.ChannelViewFor(d, u, "")
			view.Unread = query.UnreadCount(d, u.ID)
		}
		return nil
	})
	if view == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
		return
	}
	respondData(w, http.StatusOK, view)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
