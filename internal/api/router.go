// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tubelite/tubelite/internal/middleware"
)

// Router wires the handler set into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router over the given handler set.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	// Operational endpoints sit outside the API middleware stack.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health/live", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Login and registration get a tighter rate limit and no session.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.AuthRateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/api/register", h.HandleRegister)
		r.Post("/api/login", h.HandleLogin)
	})

	// The main API: session-aware, metered, gated during maintenance.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)
		r.Use(h.withUser)
		r.Use(h.maintenanceGate)

		// Browsing works logged out.
		r.Get("/api/videos", h.HandleListVideos)
		r.Get("/api/videos/{id}", h.HandleGetVideo)
		r.Get("/api/videos/{id}/comments", h.HandleGetComments)
		r.Get("/api/shorts", h.HandleShorts)
		r.Get("/api/search", h.HandleSearch)
		r.Get("/api/trending", h.HandleTrending)
		r.Get("/api/user/{id}", h.HandleGetUser)
		r.Get("/api/user/{id}/videos", h.HandleGetUserVideos)
		r.Get("/api/user/{id}/playlists", h.HandleGetUserPlaylists)
		r.Get("/api/playlist/{id}", h.HandleGetPlaylist)
		r.Post("/api/view", h.HandleView)
		r.Post("/api/share", h.HandleShare)

		// Everything below needs an account.
		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Post("/api/logout", h.HandleLogout)
			r.Get("/api/me", h.HandleMe)
			r.Post("/api/profile", h.HandleUpdateProfile)
			r.Post("/api/password", h.HandleChangePassword)

			r.Post("/api/upload", h.HandleUpload)
			r.Post("/api/videos/edit", h.HandleEditVideo)
			r.Post("/api/videos/delete", h.HandleDeleteVideo)

			r.Post("/api/like", h.HandleLike)
			r.Post("/api/comment", h.HandleComment)
			r.Post("/api/comment/delete", h.HandleDeleteComment)
			r.Post("/api/comment/like", h.HandleCommentLike)
			r.Post("/api/comment/pin", h.HandlePinComment)
			r.Post("/api/subscribe", h.HandleSubscribe)
			r.Post("/api/report", h.HandleReport)
			r.Post("/api/behavior", h.HandleBehavior)

			r.Get("/api/feed", h.HandleFeed)
			r.Get("/api/recommendations", h.HandleRecommendations)
			r.Get("/api/history", h.HandleHistory)
			r.Get("/api/subscriptions", h.HandleSubscriptions)
			r.Get("/api/notifications", h.HandleNotifications)
			r.Get("/api/analytics", h.HandleAnalytics)

			r.Get("/api/watchlater", h.HandleGetWatchLater)
			r.Post("/api/watchlater", h.HandleWatchLater)
			r.Get("/api/playlists", h.HandleListPlaylists)
			r.Post("/api/playlists", h.HandleCreatePlaylist)
			r.Post("/api/playlists/add", h.HandleAddToPlaylist)
			r.Post("/api/playlists/remove", h.HandleRemoveFromPlaylist)
			r.Post("/api/playlists/delete", h.HandleDeletePlaylist)
		})
	})

	// Admin console. Session-aware but never maintenance-gated, so the
	// mode can still be switched off.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(h.withUser)
		r.Use(h.requireAdmin)

		r.Get("/health", h.HandleAdminHealth)
		r.Post("/fix", h.HandleFixServer)
		r.Post("/scan", h.HandleScanVideos)
		r.Post("/transcode", h.HandleTranscode)
		r.Get("/users", h.HandleListUsers)
		r.Post("/ban", h.HandleBanUser)
		r.Post("/verify", h.HandleVerifyUser)
		r.Post("/toggle-admin", h.HandleToggleAdmin)
		r.Post("/delete-user", h.HandleDeleteUser)
		r.Post("/reset-password", h.HandleResetPassword)
		r.Get("/settings", h.HandleGetSettings)
		r.Post("/settings", h.HandleUpdateSettings)
		r.Get("/reports", h.HandleListReports)
		r.Post("/reports/resolve", h.HandleResolveReport)
		r.Post("/broadcast", h.HandleBroadcast)
		r.Post("/sessions/clear", h.HandleClearSessions)
		r.Post("/backup", h.HandleCreateBackup)
		r.Get("/backups", h.HandleListBackups)
	})

	// Media delivery with range-request support.
	r.Group(func(r chi.Router) {
		r.Get("/media/videos/{file}", h.HandleVideoFile)
		r.Get("/media/thumbnails/{file}", h.HandleThumbFile)
		r.Get("/media/avatars/{file}", h.HandleAvatarFile)
		r.Get("/media/quality/{id}/{file}", h.HandleQualityFile)
	})

	return r
}
