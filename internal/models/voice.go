/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// VoiceSession is one membership interval of one user in one voice channel.
//
// A session is live while LeftAt is nil. Closing sets LeftAt and
// DurationSeconds together in one guarded UPDATE; neither field is ever
// cleared or overwritten afterwards. Username and ChannelName are display
// snapshots taken at join time and are not updated retroactively.
type VoiceSession struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string     `gorm:"index;not null" json:"user_id"`
	Username        string     `gorm:"not null" json:"username"`
	ChannelID       string     `gorm:"index;not null" json:"channel_id"`
	ChannelName     string     `gorm:"not null" json:"channel_name"`
	JoinedAt        time.Time  `gorm:"index;not null" json:"joined_at"`
	LeftAt          *time.Time `gorm:"index" json:"left_at"`
	DurationSeconds *int64     `json:"duration_seconds"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (VoiceSession) TableName() string {
	return "voice_activity"
}

// Live reports whether the session has no recorded end yet.
func (s *VoiceSession) Live() bool {
	return s.LeftAt == nil
}

// Closed reports whether both end time and duration are recorded. Only
// closed sessions contribute to statistics.
func (s *VoiceSession) Closed() bool {
	return s.LeftAt != nil && s.DurationSeconds != nil
}
