/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/models"
)

// API key constants
const (
	APIKeyPrefix      = "dw_"
	APIKeyRandomBytes = 24
)

// ErrAPIKeyNotFound is returned when an API key doesn't exist.
var ErrAPIKeyNotFound = errors.New("api key not found")

// ErrAPIKeyExpired is returned when an API key has expired.
var ErrAPIKeyExpired = errors.New("api key expired")

// ErrAPIKeyRevoked is returned when an API key has been revoked.
var ErrAPIKeyRevoked = errors.New("api key revoked")

// GenerateAPIKey creates a new bot API key.
// Returns the plaintext key (to show once) and the model to store.
func GenerateAPIKey(createdBy, name string, expiresIn time.Duration) (string, *models.APIKey, error) {
	randomBytes := make([]byte, APIKeyRandomBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", nil, err
	}

	plaintextKey := APIKeyPrefix + hex.EncodeToString(randomBytes)

	hash := sha256.Sum256([]byte(plaintextKey))
	keyHash := hex.EncodeToString(hash[:])

	// "dw_" + first 8 hex chars, for display in key listings
	keyPrefix := plaintextKey[:11]

	apiKey := &models.APIKey{
		ID:        uuid.NewString(),
		Name:      name,
		KeyHash:   keyHash,
		KeyPrefix: keyPrefix,
		CreatedBy: createdBy,
		ExpiresAt: time.Now().Add(expiresIn),
	}

	return plaintextKey, apiKey, nil
}

// ValidateAPIKey validates a plaintext key and returns bot claims if valid.
// Also updates the LastUsedAt timestamp.
func ValidateAPIKey(db *gorm.DB, plaintextKey string) (*Claims, error) {
	hash := sha256.Sum256([]byte(plaintextKey))
	keyHash := hex.EncodeToString(hash[:])

	var apiKey models.APIKey
	result := db.Where("key_hash = ?", keyHash).First(&apiKey)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrAPIKeyNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	if apiKey.IsRevoked() {
		return nil, ErrAPIKeyRevoked
	}
	if apiKey.IsExpired() {
		return nil, ErrAPIKeyExpired
	}

	now := time.Now()
	go db.Model(&apiKey).Update("last_used_at", now)

	return &Claims{
		UserID:   apiKey.ID,
		Username: apiKey.Name,
		Role:     RoleBot,
	}, nil
}

// RevokeAPIKey revokes an API key.
func RevokeAPIKey(db *gorm.DB, keyID string) error {
	now := time.Now()
	result := db.Model(&models.APIKey{}).
		Where("id = ? AND revoked_at IS NULL", keyID).
		Update("revoked_at", now)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAPIKeyNotFound
	}

	return nil
}

// ListAPIKeys returns all API keys (without the hash).
func ListAPIKeys(db *gorm.DB) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := db.Order("created_at DESC").Find(&keys).Error
	return keys, err
}
