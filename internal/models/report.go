/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// Report status values.
const (
	ReportStatusPending   = "PENDING"
	ReportStatusReviewed  = "REVIEWED"
	ReportStatusDismissed = "DISMISSED"
)

// ValidReportStatus reports whether s is a known report status.
func ValidReportStatus(s string) bool {
	return s == ReportStatusPending || s == ReportStatusReviewed || s == ReportStatusDismissed
}

// Report is one user-submitted report awaiting moderator review.
type Report struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	ReportedUserID   string     `gorm:"index;not null" json:"reported_user_id"`
	ReportedUsername string     `gorm:"not null" json:"reported_username"`
	ReportedTag      string     `gorm:"not null" json:"reported_tag"`
	ReportedAvatar   string     `json:"reported_avatar"`
	ReporterID       string     `gorm:"index" json:"reporter_id,omitempty"`
	Reason           string     `gorm:"not null" json:"reason"`
	MediaURLs        []string   `gorm:"serializer:json" json:"media_urls"`
	Status           string     `gorm:"type:varchar(16);index;not null" json:"status"`
	ReviewedBy       string     `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

// TableName returns the table name for GORM.
func (Report) TableName() string {
	return "reports"
}
