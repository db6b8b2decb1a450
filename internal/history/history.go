/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history records user profile changes observed by the bot.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/models"
)

// DefaultPageSize bounds history listings.
const DefaultPageSize = 200

// Service stores and serves profile-change history.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a history service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// RecordInput is the ingest payload for one profile change.
type RecordInput struct {
	UserID     string    `json:"user_id"`
	ChangeType string    `json:"change_type"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	ChangedAt  time.Time `json:"changed_at"`
	GuildID    string    `json:"guild_id"`
}

// Record stores a profile change.
func (s *Service) Record(ctx context.Context, in RecordInput) (*models.UserHistoryEntry, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if !models.ValidChangeType(in.ChangeType) {
		return nil, fmt.Errorf("invalid change_type %q", in.ChangeType)
	}
	if in.ChangedAt.IsZero() {
		in.ChangedAt = time.Now().UTC()
	}

	entry := models.UserHistoryEntry{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		ChangeType: in.ChangeType,
		OldValue:   in.OldValue,
		NewValue:   in.NewValue,
		ChangedAt:  in.ChangedAt,
		GuildID:    in.GuildID,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("store history entry: %w", err)
	}
	return &entry, nil
}

// ListOptions narrow a history listing.
type ListOptions struct {
	UserID     string
	ChangeType string
	Limit      int
}

// List returns history entries, newest change first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.UserHistoryEntry, error) {
	limit := opts.Limit
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}

	query := s.db.WithContext(ctx).Order("changed_at DESC").Limit(limit)
	if opts.UserID != "" {
		query = query.Where("user_id = ?", opts.UserID)
	}
	if opts.ChangeType != "" {
		query = query.Where("change_type = ?", opts.ChangeType)
	}

	var entries []models.UserHistoryEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	return entries, nil
}
