/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// User history change types.
const (
	ChangeUsername      = "USERNAME"
	ChangeAvatar        = "AVATAR"
	ChangeDiscriminator = "DISCRIMINATOR"
	ChangeNickname      = "NICKNAME"
)

// ValidChangeType reports whether t is a known profile change type.
func ValidChangeType(t string) bool {
	return t == ChangeUsername || t == ChangeAvatar || t == ChangeDiscriminator || t == ChangeNickname
}

// DeletedMessage is a chat message captured by the bot before deletion.
type DeletedMessage struct {
	ID                string           `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID         string           `gorm:"index;not null" json:"message_id"`
	AuthorID          string           `gorm:"index;not null" json:"author_id"`
	AuthorUsername    string           `json:"author_username"`
	AuthorTag         string           `json:"author_tag"`
	AuthorAvatar      string           `json:"author_avatar"`
	Content           string           `json:"content"`
	Attachments       []string         `gorm:"serializer:json" json:"attachments"`
	Embeds            []map[string]any `gorm:"serializer:json" json:"embeds"`
	ChannelID         string           `gorm:"index;not null" json:"channel_id"`
	ChannelName       string           `json:"channel_name"`
	DeletedAt         time.Time        `gorm:"index;not null" json:"deleted_at"`
	OriginalTimestamp time.Time        `json:"original_timestamp"`
}

// TableName returns the table name for GORM.
func (DeletedMessage) TableName() string {
	return "deleted_messages"
}

// EditedMessage is a before/after pair captured by the bot on edit.
type EditedMessage struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID         string    `gorm:"index;not null" json:"message_id"`
	AuthorID          string    `gorm:"index;not null" json:"author_id"`
	AuthorUsername    string    `json:"author_username"`
	AuthorTag         string    `json:"author_tag"`
	AuthorAvatar      string    `json:"author_avatar"`
	OldContent        string    `json:"old_content"`
	NewContent        string    `json:"new_content"`
	ChannelID         string    `gorm:"index;not null" json:"channel_id"`
	ChannelName       string    `json:"channel_name"`
	EditedAt          time.Time `gorm:"index;not null" json:"edited_at"`
	OriginalTimestamp time.Time `json:"original_timestamp"`
}

// TableName returns the table name for GORM.
func (EditedMessage) TableName() string {
	return "edited_messages"
}

// UserHistoryEntry records one profile change observed by the bot.
type UserHistoryEntry struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	ChangeType string    `gorm:"type:varchar(16);index;not null" json:"change_type"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	ChangedAt  time.Time `gorm:"index;not null" json:"changed_at"`
	GuildID    string    `json:"guild_id,omitempty"`
}

// TableName returns the table name for GORM.
func (UserHistoryEntry) TableName() string {
	return "user_history"
}
