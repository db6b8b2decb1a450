package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.VoiceSession{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (*Service, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	return NewService(openTestDB(t), bus, zerolog.Nop()), bus
}

func TestServiceJoinLeaveRoundTrip(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	leaves := bus.Subscribe(events.EventVoiceLeave)

	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session, err := svc.RecordJoin(ctx, JoinInput{
		UserID:      "u1",
		Username:    "alice",
		ChannelID:   "c1",
		ChannelName: "general",
		JoinedAt:    joined,
	})
	if err != nil {
		t.Fatalf("record join: %v", err)
	}
	if !session.Live() {
		t.Fatal("fresh session must be live")
	}

	closed, err := svc.RecordLeave(ctx, session.ID, joined.Add(45*time.Minute))
	if err != nil {
		t.Fatalf("record leave: %v", err)
	}
	if *closed.DurationSeconds != 2700 {
		t.Errorf("duration = %d, want 2700", *closed.DurationSeconds)
	}

	select {
	case payload := <-leaves:
		if payload["session_id"] != session.ID {
			t.Errorf("leave event for wrong session: %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a voice.leave event")
	}

	var stored models.VoiceSession
	if err := svc.db.First(&stored, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if !stored.Closed() {
		t.Error("stored session must be closed")
	}
}

func TestServiceLeaveTwiceFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session, err := svc.RecordJoin(ctx, JoinInput{
		UserID: "u1", Username: "alice", ChannelID: "c1", ChannelName: "general", JoinedAt: joined,
	})
	if err != nil {
		t.Fatalf("record join: %v", err)
	}

	if _, err := svc.RecordLeave(ctx, session.ID, joined.Add(time.Minute)); err != nil {
		t.Fatalf("first leave: %v", err)
	}
	_, err = svc.RecordLeave(ctx, session.ID, joined.Add(2*time.Minute))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	var stored models.VoiceSession
	if err := svc.db.First(&stored, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if *stored.DurationSeconds != 60 {
		t.Errorf("duration = %d, want 60 from the first close", *stored.DurationSeconds)
	}
}

func TestServiceLeaveUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecordLeave(context.Background(), "missing", time.Now())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestServiceTimelineNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.RecordJoin(ctx, JoinInput{
			UserID:      fmt.Sprintf("u%d", i),
			Username:    fmt.Sprintf("user%d", i),
			ChannelID:   "c1",
			ChannelName: "general",
			JoinedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("record join: %v", err)
		}
	}

	timeline, err := svc.Timeline(ctx, Criteria{}, 0)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("timeline length = %d, want 3", len(timeline))
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i].JoinedAt.After(timeline[i-1].JoinedAt) {
			t.Fatal("timeline must be ordered newest joined first")
		}
	}
}

func TestServiceStatsCountsOnlyClosed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	closedSess, err := svc.RecordJoin(ctx, JoinInput{
		UserID: "u1", Username: "alice", ChannelID: "c1", ChannelName: "general", JoinedAt: joined,
	})
	if err != nil {
		t.Fatalf("record join: %v", err)
	}
	if _, err := svc.RecordLeave(ctx, closedSess.ID, joined.Add(time.Hour)); err != nil {
		t.Fatalf("record leave: %v", err)
	}
	if _, err := svc.RecordJoin(ctx, JoinInput{
		UserID: "u2", Username: "bob", ChannelID: "c1", ChannelName: "general", JoinedAt: joined.Add(time.Hour),
	}); err != nil {
		t.Fatalf("record join: %v", err)
	}

	snap, err := svc.Stats(ctx, 0)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if snap.TotalHours != 1.0 {
		t.Errorf("total hours = %v, want 1.0", snap.TotalHours)
	}
	if len(snap.TopUsers) != 1 || snap.TopUsers[0].UserID != "u1" {
		t.Errorf("top users = %+v, want only u1", snap.TopUsers)
	}
}

func TestRefresherServesSnapshot(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	joined := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	session, err := svc.RecordJoin(ctx, JoinInput{
		UserID: "u1", Username: "alice", ChannelID: "c1", ChannelName: "general", JoinedAt: joined,
	})
	if err != nil {
		t.Fatalf("record join: %v", err)
	}
	if _, err := svc.RecordLeave(ctx, session.ID, joined.Add(30*time.Minute)); err != nil {
		t.Fatalf("record leave: %v", err)
	}

	refresher := NewRefresher(svc, bus, zerolog.Nop())
	snap, err := refresher.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TotalHours != 0.5 {
		t.Errorf("total hours = %v, want 0.5", snap.TotalHours)
	}
}
