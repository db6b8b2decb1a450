/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnsupportedType is returned for uploads that are neither image nor
// video.
var ErrUnsupportedType = errors.New("unsupported media type")

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

// Upload is the result handed back to the dashboard after storing a file.
type Upload struct {
	URL  string `json:"url"`
	Type string `json:"type"` // "image" or "video"
	Key  string `json:"-"`
}

// Uploader validates and stores evidence uploads.
type Uploader struct {
	storage Storage
	logger  zerolog.Logger
}

// NewUploader creates an uploader over the given storage backend.
func NewUploader(storage Storage, logger zerolog.Logger) *Uploader {
	return &Uploader{
		storage: storage,
		logger:  logger.With().Str("component", "media").Logger(),
	}
}

// Upload stores one evidence file and returns its public URL. Size limits
// are enforced upstream by the HTTP layer.
func (u *Uploader) Upload(ctx context.Context, contentType string, file io.Reader) (*Upload, error) {
	kind, err := mediaKind(contentType)
	if err != nil {
		return nil, err
	}

	ext, ok := extensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	// Partition keys by month so buckets and directories stay browsable.
	key := fmt.Sprintf("evidence/%s/%s%s", time.Now().UTC().Format("2006-01"), uuid.NewString(), ext)

	stored, err := u.storage.Store(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	u.logger.Info().Str("key", stored).Str("type", kind).Msg("evidence stored")

	return &Upload{
		URL:  u.storage.URL(stored),
		Type: kind,
		Key:  stored,
	}, nil
}

// Delete removes a previously stored upload.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	return u.storage.Delete(ctx, key)
}

func mediaKind(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image", nil
	case strings.HasPrefix(contentType, "video/"):
		return "video", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
}
