/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drerries/wantedboard/internal/registry"
)

func (a *API) handleWantedList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	persons, err := a.registrySvc.List(r.Context(), registry.ListOptions{
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Search:   q.Get("search"),
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("wanted list failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"persons": persons})
}

// handleWantedSearch serves quick poster lookups in a compact shape, used by
// the dashboard's autocomplete.
func (a *API) handleWantedSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		writeError(w, http.StatusBadRequest, "query_too_short")
		return
	}

	persons, err := a.registrySvc.List(r.Context(), registry.ListOptions{Search: query})
	if err != nil {
		a.logger.Error().Err(err).Msg("wanted search failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if len(persons) > 10 {
		persons = persons[:10]
	}

	results := make([]map[string]string, 0, len(persons))
	for _, p := range persons {
		results = append(results, map[string]string{
			"id":           p.ID,
			"username":     p.Username,
			"drerries_tag": p.DrerriesTag,
			"avatar":       p.Avatar,
			"status":       p.Status,
			"severity":     p.Severity,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (a *API) handleWantedGet(w http.ResponseWriter, r *http.Request) {
	person, err := a.registrySvc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (a *API) handleWantedCreate(w http.ResponseWriter, r *http.Request) {
	var in registry.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	person, err := a.registrySvc.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_person")
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (a *API) handleWantedUpdate(w http.ResponseWriter, r *http.Request) {
	var in registry.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	person, err := a.registrySvc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_update")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (a *API) handleWantedDelete(w http.ResponseWriter, r *http.Request) {
	err := a.registrySvc.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
