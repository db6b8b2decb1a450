/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/drerries/wantedboard/internal/search"
)

// handleSearchUsers proxies guild member lookups to the moderation bot.
func (a *API) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		writeError(w, http.StatusBadRequest, "query_too_short")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	members, err := a.searchSvc.Search(r.Context(), query, limit)
	if errors.Is(err, search.ErrUnavailable) {
		writeError(w, http.StatusBadGateway, "search_unavailable")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}
