/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package reports implements the user-report intake and review workflow.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
)

var (
	// ErrNotFound is returned when no report matches the given id.
	ErrNotFound = errors.New("report not found")
	// ErrAlreadyReviewed is returned when reviewing a report that has
	// already left PENDING.
	ErrAlreadyReviewed = errors.New("report already reviewed")
)

// Service manages the report workflow.
type Service struct {
	db     *gorm.DB
	broker events.Broker
	logger zerolog.Logger
}

// NewService creates a report service.
func NewService(db *gorm.DB, broker events.Broker, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		broker: broker,
		logger: logger.With().Str("component", "reports").Logger(),
	}
}

// SubmitInput carries a new report.
type SubmitInput struct {
	ReportedUserID   string   `json:"reported_user_id"`
	ReportedUsername string   `json:"reported_username"`
	ReportedTag      string   `json:"reported_tag"`
	ReportedAvatar   string   `json:"reported_avatar"`
	ReporterID       string   `json:"reporter_id"`
	Reason           string   `json:"reason"`
	MediaURLs        []string `json:"media_urls"`
}

// Submit files a new report in PENDING state.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Report, error) {
	if in.ReportedUserID == "" || in.ReportedUsername == "" || in.ReportedTag == "" || in.Reason == "" {
		return nil, fmt.Errorf("reported_user_id, reported_username, reported_tag and reason are required")
	}

	report := models.Report{
		ID:               uuid.NewString(),
		ReportedUserID:   in.ReportedUserID,
		ReportedUsername: in.ReportedUsername,
		ReportedTag:      in.ReportedTag,
		ReportedAvatar:   in.ReportedAvatar,
		ReporterID:       in.ReporterID,
		Reason:           in.Reason,
		MediaURLs:        in.MediaURLs,
		Status:           models.ReportStatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	s.logger.Info().Str("id", report.ID).Str("reported", report.ReportedUserID).Msg("report filed")
	s.broker.Publish(events.EventReportCreated, withActor(ctx, events.Payload{
		"id":                report.ID,
		"reported_user_id":  report.ReportedUserID,
		"reported_username": report.ReportedUsername,
	}))

	return &report, nil
}

// Get returns one report by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return &report, nil
}

// List returns reports, newest first, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, status string) ([]models.Report, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		if !models.ValidReportStatus(status) {
			return nil, fmt.Errorf("invalid status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var list []models.Report
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return list, nil
}

// Review moves a PENDING report to REVIEWED or DISMISSED. The status change
// is a guarded UPDATE so two moderators cannot both claim the review.
func (s *Service) Review(ctx context.Context, id, status, reviewedBy, notes string) (*models.Report, error) {
	if status != models.ReportStatusReviewed && status != models.ReportStatusDismissed {
		return nil, fmt.Errorf("invalid review status %q", status)
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewedBy,
			"reviewed_at": now,
			"notes":       notes,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("review report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyReviewed
	}

	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Str("status", status).Str("by", reviewedBy).Msg("report reviewed")
	s.broker.Publish(events.EventReportReviewed, withActor(ctx, events.Payload{
		"id":          report.ID,
		"status":      report.Status,
		"reviewed_by": reviewedBy,
	}))

	return report, nil
}

// withActor stamps the calling moderator's identity onto an event payload so
// the audit trail can attribute the mutation.
func withActor(ctx context.Context, payload events.Payload) events.Payload {
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		payload["actor_id"] = claims.UserID
		payload["actor_name"] = claims.Username
	}
	return payload
}
