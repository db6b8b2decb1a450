/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
)

// ErrSessionNotFound is returned when no session matches the given id.
var ErrSessionNotFound = errors.New("voice session not found")

// DefaultFetchLimit bounds how many recent sessions feed the timeline and
// the statistics computation.
const DefaultFetchLimit = 500

// Service persists voice sessions and serves the timeline and statistics.
type Service struct {
	db     *gorm.DB
	broker events.Broker
	logger zerolog.Logger
}

// NewService creates a voice activity service.
func NewService(db *gorm.DB, broker events.Broker, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		broker: broker,
		logger: logger.With().Str("component", "voice").Logger(),
	}
}

// JoinInput describes a user entering a voice channel.
type JoinInput struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// RecordJoin opens a new live session.
func (s *Service) RecordJoin(ctx context.Context, in JoinInput) (*models.VoiceSession, error) {
	if in.UserID == "" || in.ChannelID == "" {
		return nil, fmt.Errorf("user_id and channel_id are required")
	}
	if in.JoinedAt.IsZero() {
		in.JoinedAt = time.Now().UTC()
	}

	session := models.VoiceSession{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Username:    in.Username,
		ChannelID:   in.ChannelID,
		ChannelName: in.ChannelName,
		JoinedAt:    in.JoinedAt,
	}

	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create voice session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Str("channel", session.ChannelName).
		Msg("voice session opened")

	s.broker.Publish(events.EventVoiceJoin, events.Payload{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"username":   session.Username,
		"channel_id": session.ChannelID,
		"joined_at":  session.JoinedAt,
	})

	return &session, nil
}

// RecordLeave closes the session identified by id. The leave time and the
// derived duration land in one guarded UPDATE so a concurrent close cannot
// overwrite an already-recorded end.
func (s *Service) RecordLeave(ctx context.Context, id string, leftAt time.Time) (*models.VoiceSession, error) {
	if leftAt.IsZero() {
		leftAt = time.Now().UTC()
	}

	var session models.VoiceSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load voice session: %w", err)
	}

	if err := Close(&session, leftAt); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).
		Model(&models.VoiceSession{}).
		Where("id = ? AND left_at IS NULL", id).
		Updates(map[string]any{
			"left_at":          session.LeftAt,
			"duration_seconds": session.DurationSeconds,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("close voice session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race to another close.
		return nil, ErrInvalidTransition
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Int64("duration_seconds", *session.DurationSeconds).
		Msg("voice session closed")

	s.broker.Publish(events.EventVoiceLeave, events.Payload{
		"session_id":       session.ID,
		"user_id":          session.UserID,
		"username":         session.Username,
		"channel_id":       session.ChannelID,
		"left_at":          session.LeftAt,
		"duration_seconds": session.DurationSeconds,
	})

	return &session, nil
}

// Timeline returns the most recent sessions, newest joined first, narrowed
// by the criteria. The limit bounds the fetch, not the filtered result.
func (s *Service) Timeline(ctx context.Context, criteria Criteria, limit int) ([]models.VoiceSession, error) {
	sessions, err := s.fetchRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Filter(sessions, criteria), nil
}

// Stats computes the statistics snapshot over the most recent sessions.
func (s *Service) Stats(ctx context.Context, limit int) (Snapshot, error) {
	sessions, err := s.fetchRecent(ctx, limit)
	if err != nil {
		return Snapshot{}, err
	}
	return Aggregate(sessions), nil
}

func (s *Service) fetchRecent(ctx context.Context, limit int) ([]models.VoiceSession, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	var sessions []models.VoiceSession
	err := s.db.WithContext(ctx).
		Order("joined_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("fetch voice sessions: %w", err)
	}
	return sessions, nil
}
