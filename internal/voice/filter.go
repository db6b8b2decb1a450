/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package voice

import (
	"strings"
	"time"

	"github.com/drerries/wantedboard/internal/models"
)

// Criteria narrows a session list for the timeline view or as aggregation
// input. Zero-value fields impose no constraint.
type Criteria struct {
	UserSubstring    string    // case-insensitive substring of Username
	ChannelSubstring string    // case-insensitive substring of ChannelName
	LiveOnly         bool      // only sessions with no leave time
	DateFrom         time.Time // inclusive lower bound on JoinedAt
	DateTo           time.Time // inclusive upper bound on JoinedAt
}

// Filter returns the subsequence of sessions satisfying every supplied
// constraint, preserving the input's relative order. Pure; never fails.
func Filter(sessions []models.VoiceSession, criteria Criteria) []models.VoiceSession {
	userNeedle := strings.ToLower(criteria.UserSubstring)
	channelNeedle := strings.ToLower(criteria.ChannelSubstring)

	result := make([]models.VoiceSession, 0, len(sessions))
	for _, s := range sessions {
		if userNeedle != "" && !strings.Contains(strings.ToLower(s.Username), userNeedle) {
			continue
		}
		if channelNeedle != "" && !strings.Contains(strings.ToLower(s.ChannelName), channelNeedle) {
			continue
		}
		if criteria.LiveOnly && s.LeftAt != nil {
			continue
		}
		if !criteria.DateFrom.IsZero() && s.JoinedAt.Before(criteria.DateFrom) {
			continue
		}
		if !criteria.DateTo.IsZero() && s.JoinedAt.After(criteria.DateTo) {
			continue
		}
		result = append(result, s)
	}
	return result
}
