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

	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/reports"
)

func (a *API) handleReportsList(w http.ResponseWriter, r *http.Request) {
	list, err := a.reportsSvc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (a *API) handleReportGet(w http.ResponseWriter, r *http.Request) {
	report, err := a.reportsSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, reports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleReportSubmit(w http.ResponseWriter, r *http.Request) {
	var in reports.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	// The reporter is whoever is logged in, never client-supplied.
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		in.ReporterID = claims.UserID
	}

	report, err := a.reportsSvc.Submit(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_report")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

type reportReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (a *API) handleReportReview(w http.ResponseWriter, r *http.Request) {
	var in reportReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	reviewedBy := ""
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		reviewedBy = claims.UserID
	}

	report, err := a.reportsSvc.Review(r.Context(), chi.URLParam(r, "id"), in.Status, reviewedBy, in.Notes)
	switch {
	case errors.Is(err, reports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
		return
	case errors.Is(err, reports.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, "already_reviewed")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid_review")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
