/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package search proxies guild member lookups to the moderation bot, which
// holds the live Discord member cache.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when the bot cannot be reached.
var ErrUnavailable = errors.New("member search unavailable")

// Member is one guild member search hit.
type Member struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Tag         string `json:"tag"`
	Avatar      string `json:"avatar"`
}

// Client queries the bot's member-search endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a member search client. baseURL is the bot's HTTP
// endpoint; an empty value disables search.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger.With().Str("component", "search").Logger(),
	}
}

// Enabled reports whether a bot endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Search returns members matching the query, as the bot ranks them.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Member, error) {
	if !c.Enabled() {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 10
	}

	u := fmt.Sprintf("%s/search-users?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("member search request failed")
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: bot returned %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Members []Member `json:"members"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if payload.Members == nil {
		payload.Members = []Member{}
	}
	return payload.Members, nil
}
