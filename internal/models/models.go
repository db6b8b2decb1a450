/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// Wanted person status values.
const (
	WantedStatusActive   = "ACTIVE"
	WantedStatusCaptured = "CAPTURED"
	WantedStatusCleared  = "CLEARED"
)

// Wanted person severity values.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// ValidWantedStatus reports whether s is a known status.
func ValidWantedStatus(s string) bool {
	return s == WantedStatusActive || s == WantedStatusCaptured || s == WantedStatusCleared
}

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s string) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// WantedPerson is one entry on the most-wanted registry.
// IDs are small sequential strings assigned by the registry service so
// posters keep their historical "#7" style numbering.
type WantedPerson struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	Username    string   `gorm:"not null" json:"username"`
	DrerriesTag string   `gorm:"not null;index" json:"drerries_tag"`
	DiscordID   string   `gorm:"index" json:"discord_id,omitempty"`
	Avatar      string   `json:"avatar"`
	Status      string   `gorm:"type:varchar(16);not null" json:"status"`
	Severity    string   `gorm:"type:varchar(16);not null" json:"severity"`
	Charges     []string `gorm:"serializer:json" json:"charges"`
	Description string   `json:"description"`
	LastSeen    string   `json:"last_seen"`
	Reward      string   `json:"reward"`
	DateIssued  string   `gorm:"type:varchar(10)" json:"date_issued"` // YYYY-MM-DD
	Evidence    []string `gorm:"serializer:json" json:"evidence"`
	Aliases     []string `gorm:"serializer:json" json:"aliases"`
	MediaURLs   []string `gorm:"serializer:json" json:"media_urls"`
	MediaTypes  []string `gorm:"serializer:json" json:"media_types"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (WantedPerson) TableName() string {
	return "wanted_persons"
}

// WhitelistedUser gates dashboard access: only Discord IDs present here may
// complete the OAuth login.
type WhitelistedUser struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string    `gorm:"uniqueIndex;not null" json:"user_id"`
	Username string    `json:"username"`
	AddedAt  time.Time `json:"added_at"`
	AddedBy  string    `json:"added_by"`
	Notes    string    `json:"notes,omitempty"`
}

// TableName returns the table name for GORM.
func (WhitelistedUser) TableName() string {
	return "whitelisted_users"
}

// APIKey authenticates the event-producer bot on the ingest endpoints.
// Only the sha256 hash is stored; the plaintext is shown once at creation.
type APIKey struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	KeyHash    string     `gorm:"uniqueIndex;not null" json:"-"`
	KeyPrefix  string     `json:"key_prefix"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// TableName returns the table name for GORM.
func (APIKey) TableName() string {
	return "api_keys"
}

// IsExpired reports whether the key is past its expiry.
func (k *APIKey) IsExpired() bool {
	return !k.ExpiresAt.IsZero() && time.Now().After(k.ExpiresAt)
}

// IsRevoked reports whether the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// AuditLog records administrative mutations for later review.
type AuditLog struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string         `gorm:"index;not null" json:"action"`
	ActorID   string         `gorm:"index" json:"actor_id"`
	ActorName string         `json:"actor_name"`
	TargetID  string         `json:"target_id,omitempty"`
	Detail    map[string]any `gorm:"serializer:json" json:"detail,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// TableName returns the table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}
