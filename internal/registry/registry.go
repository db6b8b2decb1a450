/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package registry manages the most-wanted persons list.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
)

// ErrNotFound is returned when no wanted person matches the given id.
var ErrNotFound = errors.New("wanted person not found")

// Poster field defaults, kept in Dutch to match the community's posters.
const (
	DefaultLastSeen = "Onbekend"
	DefaultReward   = "0 Server Credits"
)

// Service manages wanted-person records.
type Service struct {
	db     *gorm.DB
	broker events.Broker
	logger zerolog.Logger
}

// NewService creates a registry service.
func NewService(db *gorm.DB, broker events.Broker, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		broker: broker,
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// CreateInput carries the fields for a new wanted poster.
type CreateInput struct {
	Username    string   `json:"username"`
	DrerriesTag string   `json:"drerries_tag"`
	DiscordID   string   `json:"discord_id"`
	Avatar      string   `json:"avatar"`
	Status      string   `json:"status"`
	Severity    string   `json:"severity"`
	Charges     []string `json:"charges"`
	Description string   `json:"description"`
	LastSeen    string   `json:"last_seen"`
	Reward      string   `json:"reward"`
	Evidence    []string `json:"evidence"`
	Aliases     []string `json:"aliases"`
	MediaURLs   []string `json:"media_urls"`
	MediaTypes  []string `json:"media_types"`
}

// Create adds a wanted person, allocating the next sequential id so poster
// numbering stays contiguous.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.WantedPerson, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.DrerriesTag = strings.TrimSpace(in.DrerriesTag)
	in.Description = strings.TrimSpace(in.Description)
	in.LastSeen = strings.TrimSpace(in.LastSeen)
	in.Reward = strings.TrimSpace(in.Reward)

	if in.Username == "" || in.DrerriesTag == "" {
		return nil, fmt.Errorf("username and drerries_tag are required")
	}
	if len(in.Charges) == 0 {
		return nil, fmt.Errorf("at least one charge is required")
	}
	if in.Status == "" {
		in.Status = models.WantedStatusActive
	}
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}
	if !models.ValidWantedStatus(in.Status) {
		return nil, fmt.Errorf("invalid status %q", in.Status)
	}
	if !models.ValidSeverity(in.Severity) {
		return nil, fmt.Errorf("invalid severity %q", in.Severity)
	}
	if in.LastSeen == "" {
		in.LastSeen = DefaultLastSeen
	}
	if in.Reward == "" {
		in.Reward = DefaultReward
	}

	person := models.WantedPerson{
		Username:    in.Username,
		DrerriesTag: in.DrerriesTag,
		DiscordID:   in.DiscordID,
		Avatar:      in.Avatar,
		Status:      in.Status,
		Severity:    in.Severity,
		Charges:     in.Charges,
		Description: in.Description,
		LastSeen:    in.LastSeen,
		Reward:      in.Reward,
		DateIssued:  time.Now().UTC().Format("2006-01-02"),
		Evidence:    in.Evidence,
		Aliases:     in.Aliases,
		MediaURLs:   in.MediaURLs,
		MediaTypes:  in.MediaTypes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		person.ID = id
		return tx.Create(&person).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create wanted person: %w", err)
	}

	s.logger.Info().Str("id", person.ID).Str("tag", person.DrerriesTag).Msg("wanted person added")
	s.broker.Publish(events.EventWantedCreated, withActor(ctx, events.Payload{
		"id":       person.ID,
		"username": person.Username,
		"severity": person.Severity,
	}))

	return &person, nil
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

// nextID allocates max(numeric id)+1 within the caller's transaction.
func nextID(tx *gorm.DB) (string, error) {
	var persons []models.WantedPerson
	if err := tx.Select("id").Find(&persons).Error; err != nil {
		return "", err
	}
	max := 0
	for _, p := range persons {
		if n, err := strconv.Atoi(p.ID); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1), nil
}

// Get returns one wanted person by id.
func (s *Service) Get(ctx context.Context, id string) (*models.WantedPerson, error) {
	var person models.WantedPerson
	err := s.db.WithContext(ctx).First(&person, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wanted person: %w", err)
	}
	return &person, nil
}

// ListOptions narrow the registry listing.
type ListOptions struct {
	Status   string
	Severity string
	Search   string // case-insensitive substring over username, tag, discord id and aliases
}

// List returns wanted persons, newest poster first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.WantedPerson, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Severity != "" {
		query = query.Where("severity = ?", opts.Severity)
	}

	var persons []models.WantedPerson
	if err := query.Find(&persons).Error; err != nil {
		return nil, fmt.Errorf("list wanted persons: %w", err)
	}

	if opts.Search == "" {
		return persons, nil
	}

	// Alias matching needs the decoded JSON column, so search in memory.
	needle := strings.ToLower(opts.Search)
	matched := make([]models.WantedPerson, 0, len(persons))
	for _, p := range persons {
		if matchesSearch(&p, needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func matchesSearch(p *models.WantedPerson, needle string) bool {
	if strings.Contains(strings.ToLower(p.Username), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.DrerriesTag), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.DiscordID), needle) {
		return true
	}
	for _, alias := range p.Aliases {
		if strings.Contains(strings.ToLower(alias), needle) {
			return true
		}
	}
	return false
}

// UpdateInput carries partial updates; nil fields are left unchanged.
type UpdateInput struct {
	Username    *string   `json:"username"`
	DrerriesTag *string   `json:"drerries_tag"`
	Avatar      *string   `json:"avatar"`
	Status      *string   `json:"status"`
	Severity    *string   `json:"severity"`
	Charges     *[]string `json:"charges"`
	Description *string   `json:"description"`
	LastSeen    *string   `json:"last_seen"`
	Reward      *string   `json:"reward"`
	Evidence    *[]string `json:"evidence"`
	Aliases     *[]string `json:"aliases"`
	MediaURLs   *[]string `json:"media_urls"`
	MediaTypes  *[]string `json:"media_types"`
}

// Update applies a partial update to a wanted person.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.WantedPerson, error) {
	person, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !models.ValidWantedStatus(*in.Status) {
			return nil, fmt.Errorf("invalid status %q", *in.Status)
		}
		person.Status = *in.Status
	}
	if in.Severity != nil {
		if !models.ValidSeverity(*in.Severity) {
			return nil, fmt.Errorf("invalid severity %q", *in.Severity)
		}
		person.Severity = *in.Severity
	}
	if in.Username != nil {
		person.Username = strings.TrimSpace(*in.Username)
	}
	if in.DrerriesTag != nil {
		person.DrerriesTag = strings.TrimSpace(*in.DrerriesTag)
	}
	if in.Avatar != nil {
		person.Avatar = *in.Avatar
	}
	if in.Charges != nil {
		person.Charges = *in.Charges
	}
	if in.Description != nil {
		person.Description = strings.TrimSpace(*in.Description)
	}
	if in.LastSeen != nil {
		person.LastSeen = strings.TrimSpace(*in.LastSeen)
	}
	if in.Reward != nil {
		person.Reward = strings.TrimSpace(*in.Reward)
	}
	if in.Evidence != nil {
		person.Evidence = *in.Evidence
	}
	if in.Aliases != nil {
		person.Aliases = *in.Aliases
	}
	if in.MediaURLs != nil {
		person.MediaURLs = *in.MediaURLs
	}
	if in.MediaTypes != nil {
		person.MediaTypes = *in.MediaTypes
	}

	if err := s.db.WithContext(ctx).Save(person).Error; err != nil {
		return nil, fmt.Errorf("update wanted person: %w", err)
	}

	s.broker.Publish(events.EventWantedUpdated, withActor(ctx, events.Payload{
		"id":       person.ID,
		"username": person.Username,
		"status":   person.Status,
	}))

	return person, nil
}

// Delete removes a wanted person.
func (s *Service) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.WantedPerson{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete wanted person: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info().Str("id", id).Msg("wanted person removed")
	s.broker.Publish(events.EventWantedDeleted, withActor(ctx, events.Payload{"id": id}))
	return nil
}
