/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/models"
)

// Migrate runs schema auto-migration for all application models.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.VoiceSession{},
		&models.WantedPerson{},
		&models.DeletedMessage{},
		&models.EditedMessage{},
		&models.UserHistoryEntry{},
		&models.Report{},
		&models.WhitelistedUser{},
		&models.APIKey{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}
	return nil
}
