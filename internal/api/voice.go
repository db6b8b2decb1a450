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

	"github.com/drerries/wantedboard/internal/telemetry"
	"github.com/drerries/wantedboard/internal/voice"
)

// handleVoiceActivity serves the raw session timeline, newest first.
// Query params: user, channel, live_only, from, to (RFC 3339), limit.
func (a *API) handleVoiceActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := voice.Criteria{
		UserSubstring:    q.Get("user"),
		ChannelSubstring: q.Get("channel"),
		LiveOnly:         q.Get("live_only") == "true",
	}
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from")
			return
		}
		criteria.DateFrom = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to")
			return
		}
		criteria.DateTo = parsed
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}

	sessions, err := a.voiceSvc.Timeline(r.Context(), criteria, limit)
	if err != nil {
		a.logger.Error().Err(err).Msg("voice timeline failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activity": sessions})
}

// handleVoiceStats serves the aggregated statistics snapshot.
func (a *API) handleVoiceStats(w http.ResponseWriter, r *http.Request) {
	snap, err := a.refresher.Snapshot(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("voice stats failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) handleVoiceJoin(w http.ResponseWriter, r *http.Request) {
	var in voice.JoinInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	session, err := a.voiceSvc.RecordJoin(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session")
		return
	}

	telemetry.VoiceSessionsOpened.Inc()
	writeJSON(w, http.StatusCreated, session)
}

type voiceLeaveRequest struct {
	SessionID string    `json:"session_id"`
	LeftAt    time.Time `json:"left_at"`
}

func (a *API) handleVoiceLeave(w http.ResponseWriter, r *http.Request) {
	var in voiceLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if in.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id_required")
		return
	}

	session, err := a.voiceSvc.RecordLeave(r.Context(), in.SessionID, in.LeftAt)
	switch {
	case errors.Is(err, voice.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	case errors.Is(err, voice.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "session_already_closed")
		return
	case errors.Is(err, voice.ErrInvalidTimestamp):
		writeError(w, http.StatusBadRequest, "left_before_joined")
		return
	case err != nil:
		a.logger.Error().Err(err).Msg("voice leave failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	telemetry.VoiceSessionsClosed.Inc()
	writeJSON(w, http.StatusOK, session)
}
