/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FilesystemStorage implements Storage using the local filesystem, served
// back through the /media static route.
type FilesystemStorage struct {
	rootDir string
	baseURL string
	logger  zerolog.Logger
}

// NewFilesystemStorage creates a filesystem-based storage backend.
func NewFilesystemStorage(rootDir, baseURL string, logger zerolog.Logger) *FilesystemStorage {
	return &FilesystemStorage{
		rootDir: rootDir,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Store saves a file under the media root.
func (fs *FilesystemStorage) Store(ctx context.Context, key, contentType string, file io.Reader) (string, error) {
	fullPath := filepath.Join(fs.rootDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create directories: %w", err)
	}

	dest, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	fs.logger.Debug().
		Str("path", fullPath).
		Str("key", key).
		Str("content_type", contentType).
		Msg("filesystem storage: file stored")

	return key, nil
}

// Delete removes a file from the filesystem.
func (fs *FilesystemStorage) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(fs.rootDir, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}

	fs.logger.Debug().Str("path", fullPath).Msg("filesystem storage: file deleted")
	return nil
}

// URL returns the dashboard-relative URL for a stored file.
func (fs *FilesystemStorage) URL(key string) string {
	return fs.baseURL + "/media/" + key
}

// CheckAccess verifies the storage directory exists and is writable.
func (fs *FilesystemStorage) CheckAccess(ctx context.Context) error {
	info, err := os.Stat(fs.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(fs.rootDir, 0755)
		}
		return fmt.Errorf("cannot access media root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media root is not a directory: %s", fs.rootDir)
	}
	return nil
}

var _ Storage = (*FilesystemStorage)(nil)
