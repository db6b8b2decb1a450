/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package messagelog stores deleted and edited chat messages captured by the
// moderation bot.
package messagelog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
)

// DefaultPageSize bounds the log listings.
const DefaultPageSize = 100

// Service stores and serves message logs.
type Service struct {
	db     *gorm.DB
	broker events.Broker
	logger zerolog.Logger
}

// NewService creates a message log service.
func NewService(db *gorm.DB, broker events.Broker, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		broker: broker,
		logger: logger.With().Str("component", "messagelog").Logger(),
	}
}

// DeletedInput is the ingest payload for a deleted message.
type DeletedInput struct {
	MessageID         string           `json:"message_id"`
	AuthorID          string           `json:"author_id"`
	AuthorUsername    string           `json:"author_username"`
	AuthorTag         string           `json:"author_tag"`
	AuthorAvatar      string           `json:"author_avatar"`
	Content           string           `json:"content"`
	Attachments       []string         `json:"attachments"`
	Embeds            []map[string]any `json:"embeds"`
	ChannelID         string           `json:"channel_id"`
	ChannelName       string           `json:"channel_name"`
	DeletedAt         time.Time        `json:"deleted_at"`
	OriginalTimestamp time.Time        `json:"original_timestamp"`
}

// RecordDeleted stores a deleted message.
func (s *Service) RecordDeleted(ctx context.Context, in DeletedInput) (*models.DeletedMessage, error) {
	if in.MessageID == "" || in.AuthorID == "" || in.ChannelID == "" {
		return nil, fmt.Errorf("message_id, author_id and channel_id are required")
	}
	if in.DeletedAt.IsZero() {
		in.DeletedAt = time.Now().UTC()
	}

	msg := models.DeletedMessage{
		ID:                uuid.NewString(),
		MessageID:         in.MessageID,
		AuthorID:          in.AuthorID,
		AuthorUsername:    in.AuthorUsername,
		AuthorTag:         in.AuthorTag,
		AuthorAvatar:      in.AuthorAvatar,
		Content:           in.Content,
		Attachments:       in.Attachments,
		Embeds:            in.Embeds,
		ChannelID:         in.ChannelID,
		ChannelName:       in.ChannelName,
		DeletedAt:         in.DeletedAt,
		OriginalTimestamp: in.OriginalTimestamp,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("store deleted message: %w", err)
	}

	s.broker.Publish(events.EventMessageDeleted, events.Payload{
		"id":        msg.ID,
		"author_id": msg.AuthorID,
		"channel":   msg.ChannelName,
	})
	return &msg, nil
}

// EditedInput is the ingest payload for an edited message.
type EditedInput struct {
	MessageID         string    `json:"message_id"`
	AuthorID          string    `json:"author_id"`
	AuthorUsername    string    `json:"author_username"`
	AuthorTag         string    `json:"author_tag"`
	AuthorAvatar      string    `json:"author_avatar"`
	OldContent        string    `json:"old_content"`
	NewContent        string    `json:"new_content"`
	ChannelID         string    `json:"channel_id"`
	ChannelName       string    `json:"channel_name"`
	EditedAt          time.Time `json:"edited_at"`
	OriginalTimestamp time.Time `json:"original_timestamp"`
}

// RecordEdited stores an edited message pair.
func (s *Service) RecordEdited(ctx context.Context, in EditedInput) (*models.EditedMessage, error) {
	if in.MessageID == "" || in.AuthorID == "" || in.ChannelID == "" {
		return nil, fmt.Errorf("message_id, author_id and channel_id are required")
	}
	if in.EditedAt.IsZero() {
		in.EditedAt = time.Now().UTC()
	}

	msg := models.EditedMessage{
		ID:                uuid.NewString(),
		MessageID:         in.MessageID,
		AuthorID:          in.AuthorID,
		AuthorUsername:    in.AuthorUsername,
		AuthorTag:         in.AuthorTag,
		AuthorAvatar:      in.AuthorAvatar,
		OldContent:        in.OldContent,
		NewContent:        in.NewContent,
		ChannelID:         in.ChannelID,
		ChannelName:       in.ChannelName,
		EditedAt:          in.EditedAt,
		OriginalTimestamp: in.OriginalTimestamp,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("store edited message: %w", err)
	}

	s.broker.Publish(events.EventMessageEdited, events.Payload{
		"id":        msg.ID,
		"author_id": msg.AuthorID,
		"channel":   msg.ChannelName,
	})
	return &msg, nil
}

// ListOptions narrow a log listing.
type ListOptions struct {
	AuthorID  string
	ChannelID string
	Limit     int
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 || o.Limit > DefaultPageSize {
		return DefaultPageSize
	}
	return o.Limit
}

// ListDeleted returns deleted messages, newest deletion first.
func (s *Service) ListDeleted(ctx context.Context, opts ListOptions) ([]models.DeletedMessage, error) {
	query := s.db.WithContext(ctx).Order("deleted_at DESC").Limit(opts.limit())
	if opts.AuthorID != "" {
		query = query.Where("author_id = ?", opts.AuthorID)
	}
	if opts.ChannelID != "" {
		query = query.Where("channel_id = ?", opts.ChannelID)
	}

	var msgs []models.DeletedMessage
	if err := query.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list deleted messages: %w", err)
	}
	return msgs, nil
}

// ListEdited returns edited messages, newest edit first.
func (s *Service) ListEdited(ctx context.Context, opts ListOptions) ([]models.EditedMessage, error) {
	query := s.db.WithContext(ctx).Order("edited_at DESC").Limit(opts.limit())
	if opts.AuthorID != "" {
		query = query.Where("author_id = ?", opts.AuthorID)
	}
	if opts.ChannelID != "" {
		query = query.Where("channel_id = ?", opts.ChannelID)
	}

	var msgs []models.EditedMessage
	if err := query.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list edited messages: %w", err)
	}
	return msgs, nil
}
