/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/models"
)

// ErrNotWhitelisted is returned when a Discord user completes OAuth but is
// not on the access whitelist.
var ErrNotWhitelisted = errors.New("user not whitelisted")

const discordUserURL = "https://discord.com/api/users/@me"

// DiscordEndpoint is Discord's OAuth2 endpoint.
var DiscordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// DiscordUser is the subset of the Discord identity payload the dashboard
// needs.
type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	GlobalName    string `json:"global_name"`
}

// DisplayName prefers the global display name over the login name.
func (u *DiscordUser) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// AvatarURL builds the CDN URL for the user's avatar, or empty when unset.
func (u *DiscordUser) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", u.ID, u.Avatar)
}

// DiscordAuthenticator runs the OAuth login flow and the whitelist gate.
type DiscordAuthenticator struct {
	db     *gorm.DB
	oauth  *oauth2.Config
	client *http.Client
}

// NewDiscordAuthenticator creates an authenticator with the given OAuth
// application credentials.
func NewDiscordAuthenticator(db *gorm.DB, clientID, clientSecret, redirectURL string) *DiscordAuthenticator {
	return &DiscordAuthenticator{
		db: db,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify"},
			Endpoint:     DiscordEndpoint,
		},
		client: http.DefaultClient,
	}
}

// LoginURL returns the Discord consent page URL for the given CSRF state.
func (a *DiscordAuthenticator) LoginURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// Exchange trades the OAuth code for an identity and enforces the whitelist.
func (a *DiscordAuthenticator) Exchange(ctx context.Context, code string) (*DiscordUser, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}

	user, err := a.fetchIdentity(ctx, token)
	if err != nil {
		return nil, err
	}

	var entry models.WhitelistedUser
	result := a.db.WithContext(ctx).First(&entry, "user_id = ?", user.ID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotWhitelisted
	}
	if result.Error != nil {
		return nil, fmt.Errorf("check whitelist: %w", result.Error)
	}

	return user, nil
}

func (a *DiscordAuthenticator) fetchIdentity(ctx context.Context, token *oauth2.Token) (*DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordUserURL, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch discord identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord identity endpoint returned %d", resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode discord identity: %w", err)
	}
	return &user, nil
}
