/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package voice implements the voice-activity core: the session lifecycle,
// the timeline filter and the statistics aggregation.
package voice

import (
	"errors"
	"time"

	"github.com/drerries/wantedboard/internal/models"
)

var (
	// ErrInvalidTransition is returned when closing an already-closed session.
	ErrInvalidTransition = errors.New("session already closed")
	// ErrInvalidTimestamp is returned when the leave time precedes the join time.
	ErrInvalidTimestamp = errors.New("leave time precedes join time")
)

// Close transitions a live session to closed, setting the leave time and the
// derived duration together. The session is left untouched on error.
func Close(session *models.VoiceSession, leftAt time.Time) error {
	if session.LeftAt != nil {
		return ErrInvalidTransition
	}
	if leftAt.Before(session.JoinedAt) {
		return ErrInvalidTimestamp
	}

	duration := int64(leftAt.Sub(session.JoinedAt) / time.Second)
	session.LeftAt = &leftAt
	session.DurationSeconds = &duration
	return nil
}
