/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audit persists an administrative action trail.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
)

// DefaultPageSize bounds audit listings.
const DefaultPageSize = 200

// Service writes and reads the audit trail.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates an audit service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record writes one audit entry.
func (s *Service) Record(ctx context.Context, action, actorID, actorName, targetID string, detail map[string]any) error {
	entry := models.AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		ActorID:   actorID,
		ActorName: actorName,
		TargetID:  targetID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// List returns audit entries, newest first.
func (s *Service) List(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Listen consumes administrative mutation events from the broker and
// persists them to the audit trail, blocking until ctx is cancelled.
func (s *Service) Listen(ctx context.Context, broker events.Broker) {
	types := []events.EventType{
		events.EventWantedCreated,
		events.EventWantedUpdated,
		events.EventWantedDeleted,
		events.EventReportCreated,
		events.EventReportReviewed,
		events.EventAuditWhitelistAdd,
		events.EventAuditWhitelistRemove,
		events.EventAuditAPIKeyCreate,
		events.EventAuditAPIKeyRevoke,
	}

	type tagged struct {
		eventType events.EventType
		payload   events.Payload
	}
	merged := make(chan tagged, 32)

	var wg sync.WaitGroup
	subs := make(map[events.EventType]events.Subscriber, len(types))
	for _, t := range types {
		sub := broker.Subscribe(t)
		subs[t] = sub
		wg.Add(1)
		go func(t events.EventType, sub events.Subscriber) {
			defer wg.Done()
			for payload := range sub {
				select {
				case merged <- tagged{eventType: t, payload: payload}:
				case <-ctx.Done():
					return
				}
			}
		}(t, sub)
	}

	go func() {
		<-ctx.Done()
		for t, sub := range subs {
			broker.Unsubscribe(t, sub)
		}
		wg.Wait()
		close(merged)
	}()

	for entry := range merged {
		s.persistEvent(ctx, entry.eventType, entry.payload)
	}
}

func (s *Service) persistEvent(ctx context.Context, t events.EventType, payload events.Payload) {
	actorID, _ := payload["actor_id"].(string)
	actorName, _ := payload["actor_name"].(string)
	targetID, _ := payload["target_id"].(string)
	if targetID == "" {
		// Domain events carry the mutated entity under "id".
		targetID, _ = payload["id"].(string)
	}

	if err := s.Record(ctx, string(t), actorID, actorName, targetID, payload); err != nil {
		s.logger.Error().Err(err).Str("action", string(t)).Msg("audit event lost")
	}
}
