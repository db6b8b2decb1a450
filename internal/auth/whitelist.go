/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/models"
)

// ErrAlreadyWhitelisted is returned when adding a Discord ID that is
// already on the whitelist.
var ErrAlreadyWhitelisted = errors.New("user already whitelisted")

// ErrWhitelistEntryNotFound is returned when removing an unknown Discord ID.
var ErrWhitelistEntryNotFound = errors.New("whitelist entry not found")

// AddToWhitelist grants dashboard access to a Discord user ID.
func AddToWhitelist(db *gorm.DB, userID, username, addedBy, notes string) (*models.WhitelistedUser, error) {
	var existing models.WhitelistedUser
	err := db.First(&existing, "user_id = ?", userID).Error
	if err == nil {
		return nil, ErrAlreadyWhitelisted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := models.WhitelistedUser{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		AddedAt:  time.Now().UTC(),
		AddedBy:  addedBy,
		Notes:    notes,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveFromWhitelist revokes dashboard access for a Discord user ID.
func RemoveFromWhitelist(db *gorm.DB, userID string) error {
	result := db.Where("user_id = ?", userID).Delete(&models.WhitelistedUser{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWhitelistEntryNotFound
	}
	return nil
}

// ListWhitelist returns every whitelisted user, newest first.
func ListWhitelist(db *gorm.DB) ([]models.WhitelistedUser, error) {
	var entries []models.WhitelistedUser
	err := db.Order("added_at DESC").Find(&entries).Error
	return entries, err
}
