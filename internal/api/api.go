/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the dashboard HTTP surface.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/audit"
	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/config"
	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/history"
	"github.com/drerries/wantedboard/internal/logbuffer"
	"github.com/drerries/wantedboard/internal/media"
	"github.com/drerries/wantedboard/internal/messagelog"
	"github.com/drerries/wantedboard/internal/registry"
	"github.com/drerries/wantedboard/internal/reports"
	"github.com/drerries/wantedboard/internal/search"
	"github.com/drerries/wantedboard/internal/voice"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	cfg       *config.Config
	jwtSecret []byte

	voiceSvc    *voice.Service
	refresher   *voice.Refresher
	registrySvc *registry.Service
	messagesSvc *messagelog.Service
	historySvc  *history.Service
	reportsSvc  *reports.Service
	uploader    *media.Uploader
	searchSvc   *search.Client
	auditSvc    *audit.Service
	discord     *auth.DiscordAuthenticator

	broker    events.Broker
	logBuffer *logbuffer.Buffer
	logger    zerolog.Logger
}

// Deps bundles the service graph handed to the API.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Voice     *voice.Service
	Refresher *voice.Refresher
	Registry  *registry.Service
	Messages  *messagelog.Service
	History   *history.Service
	Reports   *reports.Service
	Uploader  *media.Uploader
	Search    *search.Client
	Audit     *audit.Service
	Discord   *auth.DiscordAuthenticator
	Broker    events.Broker
	LogBuffer *logbuffer.Buffer
	Logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(deps Deps) *API {
	return &API{
		db:          deps.DB,
		cfg:         deps.Config,
		jwtSecret:   []byte(deps.Config.JWTSigningKey),
		voiceSvc:    deps.Voice,
		refresher:   deps.Refresher,
		registrySvc: deps.Registry,
		messagesSvc: deps.Messages,
		historySvc:  deps.History,
		reportsSvc:  deps.Reports,
		uploader:    deps.Uploader,
		searchSvc:   deps.Search,
		auditSvc:    deps.Audit,
		discord:     deps.Discord,
		broker:      deps.Broker,
		logBuffer:   deps.LogBuffer,
		logger:      deps.Logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)
		r.Get("/version", a.handleVersion)

		// Public read-only surface
		r.Get("/voice-activity", a.handleVoiceActivity)
		r.Get("/voice-activity/stats", a.handleVoiceStats)
		r.Get("/wanted", a.handleWantedList)
		r.Get("/wanted/{id}", a.handleWantedGet)
		r.Get("/search", a.handleWantedSearch)

		// Login flow
		r.Get("/auth/login", a.handleAuthLogin)
		r.Get("/auth/callback", a.handleAuthCallback)

		// Authenticated surface (JWT or API key)
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(a.db, a.jwtSecret))

			pr.Get("/auth/me", a.handleAuthMe)
			pr.Get("/events", a.handleEvents)

			// Moderator dashboard (admin role)
			pr.Group(func(mr chi.Router) {
				mr.Use(auth.RequireRole(auth.RoleAdmin))

				mr.Post("/wanted", a.handleWantedCreate)
				mr.Put("/wanted/{id}", a.handleWantedUpdate)
				mr.Delete("/wanted/{id}", a.handleWantedDelete)

				mr.Get("/deleted-messages", a.handleDeletedMessages)
				mr.Get("/edited-messages", a.handleEditedMessages)
				mr.Get("/user-history", a.handleUserHistory)

				mr.Get("/reports", a.handleReportsList)
				mr.Get("/reports/{id}", a.handleReportGet)
				mr.Post("/reports", a.handleReportSubmit)
				mr.Post("/reports/{id}/review", a.handleReportReview)

				mr.Post("/upload-media", a.handleUploadMedia)
				mr.Get("/search-users", a.handleSearchUsers)

				mr.Route("/admin", func(ar chi.Router) {
					ar.Get("/logs", a.handleAdminLogs)
					ar.Get("/audit", a.handleAuditList)

					ar.Get("/whitelist", a.handleWhitelistList)
					ar.Post("/whitelist", a.handleWhitelistAdd)
					ar.Delete("/whitelist/{userID}", a.handleWhitelistRemove)

					ar.Get("/api-keys", a.handleAPIKeysList)
					ar.Post("/api-keys", a.handleAPIKeyCreate)
					ar.Delete("/api-keys/{id}", a.handleAPIKeyRevoke)
				})
			})

			// Bot ingest surface (API key)
			pr.Route("/ingest", func(ir chi.Router) {
				ir.Use(auth.RequireRole(auth.RoleBot, auth.RoleAdmin))

				ir.Post("/voice/join", a.handleVoiceJoin)
				ir.Post("/voice/leave", a.handleVoiceLeave)
				ir.Post("/messages/deleted", a.handleIngestDeleted)
				ir.Post("/messages/edited", a.handleIngestEdited)
				ir.Post("/history", a.handleIngestHistory)
			})
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func parseEventTypes(raw string) []events.EventType {
	parts := strings.Split(raw, ",")
	out := make([]events.EventType, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, events.EventType(part))
	}
	return out
}
