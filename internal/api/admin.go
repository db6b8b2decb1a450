/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/logbuffer"
)

// handleAdminLogs serves the in-memory log ring buffer.
// Query params: level, component, search, since (RFC 3339), limit.
func (a *API) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := logbuffer.QueryParams{
		Level:     q.Get("level"),
		Component: q.Get("component"),
		Search:    q.Get("search"),
	}
	if raw := q.Get("since"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			params.Since = parsed
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			params.Limit = parsed
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": a.logBuffer.Query(params)})
}

func (a *API) handleAuditList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := a.auditSvc.List(r.Context(), r.URL.Query().Get("action"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit": entries})
}

func (a *API) handleWhitelistList(w http.ResponseWriter, r *http.Request) {
	entries, err := auth.ListWhitelist(a.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"whitelist": entries})
}

type whitelistAddRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Notes    string `json:"notes"`
}

func (a *API) handleWhitelistAdd(w http.ResponseWriter, r *http.Request) {
	var in whitelistAddRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if in.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id_required")
		return
	}

	actor := a.actor(r)
	entry, err := auth.AddToWhitelist(a.db, in.UserID, in.Username, actor.UserID, in.Notes)
	if errors.Is(err, auth.ErrAlreadyWhitelisted) {
		writeError(w, http.StatusConflict, "already_whitelisted")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.broker.Publish(events.EventAuditWhitelistAdd, events.Payload{
		"actor_id":   actor.UserID,
		"actor_name": actor.Username,
		"target_id":  in.UserID,
	})
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleWhitelistRemove(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := auth.RemoveFromWhitelist(a.db, userID)
	if errors.Is(err, auth.ErrWhitelistEntryNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	actor := a.actor(r)
	a.broker.Publish(events.EventAuditWhitelistRemove, events.Payload{
		"actor_id":   actor.UserID,
		"actor_name": actor.Username,
		"target_id":  userID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (a *API) handleAPIKeysList(w http.ResponseWriter, r *http.Request) {
	keys, err := auth.ListAPIKeys(a.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

type apiKeyCreateRequest struct {
	Name      string `json:"name"`
	ExpiresIn int    `json:"expires_in_days"`
}

func (a *API) handleAPIKeyCreate(w http.ResponseWriter, r *http.Request) {
	var in apiKeyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}
	if in.ExpiresIn <= 0 {
		in.ExpiresIn = 365
	}

	actor := a.actor(r)
	plaintext, key, err := auth.GenerateAPIKey(actor.UserID, in.Name, time.Duration(in.ExpiresIn)*24*time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "keygen_error")
		return
	}
	if err := a.db.Create(key).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.broker.Publish(events.EventAuditAPIKeyCreate, events.Payload{
		"actor_id":   actor.UserID,
		"actor_name": actor.Username,
		"target_id":  key.ID,
		"name":       key.Name,
	})

	// The plaintext is shown exactly once.
	writeJSON(w, http.StatusCreated, map[string]any{
		"key":        plaintext,
		"id":         key.ID,
		"name":       key.Name,
		"prefix":     key.KeyPrefix,
		"expires_at": key.ExpiresAt,
	})
}

func (a *API) handleAPIKeyRevoke(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")
	err := auth.RevokeAPIKey(a.db, keyID)
	if errors.Is(err, auth.ErrAPIKeyNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	actor := a.actor(r)
	a.broker.Publish(events.EventAuditAPIKeyRevoke, events.Payload{
		"actor_id":   actor.UserID,
		"actor_name": actor.Username,
		"target_id":  keyID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// actor returns the calling identity, or zero claims when absent.
func (a *API) actor(r *http.Request) *auth.Claims {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return claims
	}
	return &auth.Claims{}
}
