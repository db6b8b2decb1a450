/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package voice

import (
	"math"
	"sort"

	"github.com/drerries/wantedboard/internal/models"
)

// UserTotal is one leaderboard entry.
type UserTotal struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	TotalSeconds int64  `json:"total_seconds"`
}

// HourBucket counts closed sessions that started in one hour of day.
type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// ChannelTotal counts closed sessions per channel.
type ChannelTotal struct {
	ChannelName   string `json:"channel_name"`
	TotalSessions int    `json:"total_sessions"`
}

// Snapshot is the derived statistics bundle, recomputed on demand and never
// persisted.
type Snapshot struct {
	TotalHours   float64        `json:"total_hours"`
	TopUsers     []UserTotal    `json:"top_users"`
	PeakHours    []HourBucket   `json:"peak_hours"`
	ChannelStats []ChannelTotal `json:"channel_stats"`
}

const topUsersCap = 10

// Aggregate reduces a session list to a Snapshot. Live sessions are excluded
// from every statistic. Pure and deterministic for a fixed input sequence.
//
// Hour bucketing uses UTC. Usernames on the leaderboard take the value from
// the last session processed per user in input order; callers feed sessions
// newest-first, so a user's oldest session in the set wins the display name.
func Aggregate(sessions []models.VoiceSession) Snapshot {
	var closed []models.VoiceSession
	for _, s := range sessions {
		if s.Closed() {
			closed = append(closed, s)
		}
	}

	// With no closed sessions everything is empty, including the hour
	// histogram. The non-empty path always emits all 24 buckets.
	if len(closed) == 0 {
		return Snapshot{
			TopUsers:     []UserTotal{},
			PeakHours:    []HourBucket{},
			ChannelStats: []ChannelTotal{},
		}
	}

	var totalSeconds int64

	userIndex := make(map[string]int)
	users := make([]UserTotal, 0)

	var hourCounts [24]int

	channelIndex := make(map[string]int)
	channels := make([]ChannelTotal, 0)

	for _, s := range closed {
		totalSeconds += *s.DurationSeconds

		if i, ok := userIndex[s.UserID]; ok {
			users[i].TotalSeconds += *s.DurationSeconds
			users[i].Username = s.Username
		} else {
			userIndex[s.UserID] = len(users)
			users = append(users, UserTotal{
				UserID:       s.UserID,
				Username:     s.Username,
				TotalSeconds: *s.DurationSeconds,
			})
		}

		hourCounts[s.JoinedAt.UTC().Hour()]++

		if i, ok := channelIndex[s.ChannelName]; ok {
			channels[i].TotalSessions++
		} else {
			channelIndex[s.ChannelName] = len(channels)
			channels = append(channels, ChannelTotal{ChannelName: s.ChannelName, TotalSessions: 1})
		}
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalSeconds > users[j].TotalSeconds
	})
	if len(users) > topUsersCap {
		users = users[:topUsersCap]
	}

	peak := make([]HourBucket, 24)
	for hour, count := range hourCounts {
		peak[hour] = HourBucket{Hour: hour, Count: count}
	}
	sort.SliceStable(peak, func(i, j int) bool {
		return peak[i].Count > peak[j].Count
	})

	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].TotalSessions > channels[j].TotalSessions
	})

	return Snapshot{
		TotalHours:   roundTenths(float64(totalSeconds) / 3600),
		TopUsers:     users,
		PeakHours:    peak,
		ChannelStats: channels,
	}
}

// roundTenths rounds half-up to one decimal place.
func roundTenths(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
