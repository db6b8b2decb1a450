/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package messagelog

import (
	"context"
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
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.DeletedMessage{}, &models.EditedMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRecordDeletedPublishesEvent(t *testing.T) {
	db := openTestDB(t)
	bus := events.NewBus()
	svc := NewService(db, bus, zerolog.Nop())

	sub := bus.Subscribe(events.EventMessageDeleted)
	defer bus.Unsubscribe(events.EventMessageDeleted, sub)

	msg, err := svc.RecordDeleted(context.Background(), DeletedInput{
		MessageID:      "111",
		AuthorID:       "u1",
		AuthorUsername: "Piet",
		Content:        "verwijderd bericht",
		Attachments:    []string{"https://cdn.example/1.png"},
		ChannelID:      "c1",
		ChannelName:    "general",
	})
	if err != nil {
		t.Fatalf("RecordDeleted: %v", err)
	}
	if msg.DeletedAt.IsZero() {
		t.Fatal("DeletedAt was not defaulted")
	}

	select {
	case payload := <-sub:
		if payload["author_id"] != "u1" {
			t.Fatalf("payload author_id = %v, want u1", payload["author_id"])
		}
	case <-time.After(time.Second):
		t.Fatal("no message.deleted event published")
	}
}

func TestRecordDeletedRequiresIdentifiers(t *testing.T) {
	svc := NewService(openTestDB(t), events.NewBus(), zerolog.Nop())

	if _, err := svc.RecordDeleted(context.Background(), DeletedInput{AuthorID: "u1", ChannelID: "c1"}); err == nil {
		t.Fatal("expected error for missing message_id")
	}
}

func TestRecordEditedKeepsBothVersions(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, events.NewBus(), zerolog.Nop())

	if _, err := svc.RecordEdited(context.Background(), EditedInput{
		MessageID:  "222",
		AuthorID:   "u2",
		OldContent: "voor",
		NewContent: "na",
		ChannelID:  "c1",
	}); err != nil {
		t.Fatalf("RecordEdited: %v", err)
	}

	var stored models.EditedMessage
	if err := db.First(&stored, "message_id = ?", "222").Error; err != nil {
		t.Fatalf("load stored: %v", err)
	}
	if stored.OldContent != "voor" || stored.NewContent != "na" {
		t.Fatalf("stored contents = %q -> %q", stored.OldContent, stored.NewContent)
	}
}

func TestListDeletedFiltersAndOrders(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, events.NewBus(), zerolog.Nop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, authorID := range []string{"u1", "u2", "u1"} {
		if _, err := svc.RecordDeleted(ctx, DeletedInput{
			MessageID: string(rune('a' + i)),
			AuthorID:  authorID,
			ChannelID: "c1",
			DeletedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("RecordDeleted %d: %v", i, err)
		}
	}

	msgs, err := svc.ListDeleted(ctx, ListOptions{AuthorID: "u1"})
	if err != nil {
		t.Fatalf("ListDeleted: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].DeletedAt.Before(msgs[1].DeletedAt) {
		t.Fatal("expected newest deletion first")
	}
}
