/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package media stores uploaded evidence files (images and video clips)
// attached to wanted posters and reports.
package media

import (
	"context"
	"io"
)

// Storage abstracts where evidence bytes live.
type Storage interface {
	// Store writes the file under the given object key and content type,
	// returning the stored path/key.
	Store(ctx context.Context, key, contentType string, file io.Reader) (string, error)
	// Delete removes a stored object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for a stored object key.
	URL(key string) string
}
