/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/drerries/wantedboard/internal/history"
	"github.com/drerries/wantedboard/internal/messagelog"
)

func listOptionsFromQuery(r *http.Request) messagelog.ListOptions {
	q := r.URL.Query()
	opts := messagelog.ListOptions{
		AuthorID:  q.Get("author_id"),
		ChannelID: q.Get("channel_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			opts.Limit = parsed
		}
	}
	return opts
}

func (a *API) handleDeletedMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.messagesSvc.ListDeleted(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		a.logger.Error().Err(err).Msg("deleted messages list failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (a *API) handleEditedMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.messagesSvc.ListEdited(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		a.logger.Error().Err(err).Msg("edited messages list failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (a *API) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := history.ListOptions{
		UserID:     q.Get("user_id"),
		ChangeType: q.Get("change_type"),
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			opts.Limit = parsed
		}
	}

	entries, err := a.historySvc.List(r.Context(), opts)
	if err != nil {
		a.logger.Error().Err(err).Msg("user history list failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (a *API) handleIngestDeleted(w http.ResponseWriter, r *http.Request) {
	var in messagelog.DeletedInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	msg, err := a.messagesSvc.RecordDeleted(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (a *API) handleIngestEdited(w http.ResponseWriter, r *http.Request) {
	var in messagelog.EditedInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	msg, err := a.messagesSvc.RecordEdited(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (a *API) handleIngestHistory(w http.ResponseWriter, r *http.Request) {
	var in history.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	entry, err := a.historySvc.Record(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_entry")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
