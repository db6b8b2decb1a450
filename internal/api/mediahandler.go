/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"

	"github.com/drerries/wantedboard/internal/media"
)

// handleUploadMedia accepts one multipart "file" part and stores it as
// evidence, returning its public URL and media kind.
func (a *API) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.cfg.MaxUploadSizeBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file_too_large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file_part_required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	upload, err := a.uploader.Upload(r.Context(), contentType, file)
	if errors.Is(err, media.ErrUnsupportedType) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("media upload failed")
		writeError(w, http.StatusInternalServerError, "storage_error")
		return
	}

	writeJSON(w, http.StatusCreated, upload)
}
