/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/drerries/wantedboard/internal/auth"
)

const stateCookie = "wb_oauth_state"

// handleAuthLogin redirects the browser to the Discord consent page.
func (a *API) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeError(w, http.StatusInternalServerError, "state_error")
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/v1/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, a.discord.LoginURL(state), http.StatusFound)
}

// handleAuthCallback completes the OAuth flow: verifies state, enforces the
// whitelist and issues the dashboard JWT.
func (a *API) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code_required")
		return
	}

	user, err := a.discord.Exchange(r.Context(), code)
	if errors.Is(err, auth.ErrNotWhitelisted) {
		a.logger.Warn().Msg("login rejected: not whitelisted")
		writeError(w, http.StatusForbidden, "not_whitelisted")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("oauth exchange failed")
		writeError(w, http.StatusBadGateway, "oauth_error")
		return
	}

	token, err := auth.Issue(a.jwtSecret, auth.Claims{
		UserID:   user.ID,
		Username: user.DisplayName(),
		Avatar:   user.AvatarURL(),
		Role:     auth.RoleAdmin,
	}, auth.SessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":       user.ID,
			"username": user.DisplayName(),
			"avatar":   user.AvatarURL(),
		},
	})
}

// handleAuthMe returns the logged-in identity from the presented token.
func (a *API) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       claims.UserID,
		"username": claims.Username,
		"avatar":   claims.Avatar,
		"role":     claims.Role,
	})
}
