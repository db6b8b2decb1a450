package voice

import (
	"errors"
	"testing"
	"time"

	"github.com/drerries/wantedboard/internal/models"
)

func TestCloseSetsLeaveAndDurationTogether(t *testing.T) {
	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session := models.VoiceSession{ID: "s1", UserID: "u1", JoinedAt: joined}

	left := joined.Add(30 * time.Minute)
	if err := Close(&session, left); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if session.LeftAt == nil || session.DurationSeconds == nil {
		t.Fatal("expected both left_at and duration_seconds set")
	}
	if !session.LeftAt.Equal(left) {
		t.Errorf("left_at = %v, want %v", session.LeftAt, left)
	}
	if *session.DurationSeconds != 1800 {
		t.Errorf("duration = %d, want 1800", *session.DurationSeconds)
	}
	if !session.Closed() {
		t.Error("session should report closed")
	}
}

func TestCloseFloorsSubSecondDuration(t *testing.T) {
	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session := models.VoiceSession{ID: "s1", JoinedAt: joined}

	if err := Close(&session, joined.Add(90*time.Second+900*time.Millisecond)); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if *session.DurationSeconds != 90 {
		t.Errorf("duration = %d, want 90 (floored)", *session.DurationSeconds)
	}
}

func TestCloseRejectsReopening(t *testing.T) {
	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session := models.VoiceSession{ID: "s1", JoinedAt: joined}
	first := joined.Add(time.Hour)
	if err := Close(&session, first); err != nil {
		t.Fatalf("first close failed: %v", err)
	}

	err := Close(&session, joined.Add(2*time.Hour))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if !session.LeftAt.Equal(first) || *session.DurationSeconds != 3600 {
		t.Error("failed close must leave the session unchanged")
	}
}

func TestCloseRejectsLeaveBeforeJoin(t *testing.T) {
	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session := models.VoiceSession{ID: "s1", JoinedAt: joined}

	err := Close(&session, joined.Add(-time.Second))
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("err = %v, want ErrInvalidTimestamp", err)
	}
	if session.LeftAt != nil || session.DurationSeconds != nil {
		t.Error("failed close must mutate nothing")
	}
}

func TestCloseAcceptsZeroDuration(t *testing.T) {
	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session := models.VoiceSession{ID: "s1", JoinedAt: joined}

	if err := Close(&session, joined); err != nil {
		t.Fatalf("close at join time failed: %v", err)
	}
	if *session.DurationSeconds != 0 {
		t.Errorf("duration = %d, want 0", *session.DurationSeconds)
	}
}
